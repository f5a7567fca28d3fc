package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/defense-portal-api/internal/dto"
	"github.com/noah-isme/defense-portal-api/internal/models"
	"github.com/noah-isme/defense-portal-api/internal/repository"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
)

type catalogReader interface {
	List(phase models.Phase, stage models.CatalogStage) ([]models.Requirement, error)
}

type studentNameReader interface {
	FindByNPM(ctx context.Context, npm string) (*models.Student, error)
}

// SubmissionService owns the document-review stage of the registration
// workflow: registering a phase, per-file staff validation, and the aggregate
// status derived from those decisions.
type SubmissionService struct {
	store        *repository.ProcessStore
	catalog      catalogReader
	students     studentNameReader
	mirror       MirrorSink
	validator    *validator.Validate
	logger       *zap.Logger
	clock        Clock
	academicYear string
}

// NewSubmissionService constructs SubmissionService. students may be nil when
// no directory is available.
func NewSubmissionService(store *repository.ProcessStore, catalog catalogReader, students studentNameReader, mirror MirrorSink, academicYear string, validate *validator.Validate, logger *zap.Logger, clock Clock) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = SystemClock()
	}
	if mirror == nil {
		mirror = NopMirror{}
	}
	return &SubmissionService{
		store:        store,
		catalog:      catalog,
		students:     students,
		mirror:       mirror,
		validator:    validate,
		logger:       logger,
		clock:        clock,
		academicYear: academicYear,
	}
}

// Register creates the submission for a (student, phase) pair, or overwrites
// the previous one wholesale. Re-registration restarts review from pending.
func (s *SubmissionService) Register(ctx context.Context, req dto.RegisterSubmissionRequest) (models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Submission{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	npm := strings.TrimSpace(req.StudentNPM)
	name := strings.TrimSpace(req.StudentName)
	if name == "" && s.students != nil {
		if student, err := s.students.FindByNPM(ctx, npm); err == nil {
			name = student.Name
		}
	}

	files := make(map[string]models.FileRecord, len(req.Files))
	for reqID, file := range req.Files {
		files[reqID] = file
	}

	sub := models.Submission{
		ID:           uuid.NewString(),
		StudentNPM:   npm,
		StudentName:  name,
		Phase:        req.Phase,
		Files:        files,
		Validations:  make(map[string]models.ValidationItem),
		Status:       models.StatusPending,
		SubmittedAt:  s.clock.Now().UTC(),
		AcademicYear: s.academicYear,
	}

	stored := s.store.UpsertSubmission(sub)
	s.mirror.SubmissionSaved(stored)
	s.logger.Info("submission registered",
		zap.String("submission_id", stored.ID),
		zap.String("npm", stored.StudentNPM),
		zap.String("phase", string(stored.Phase)))
	return stored, nil
}

// ValidateFile records a staff decision for one requirement. While the
// submission is still in document review the aggregate status is recomputed
// from the live registration catalog.
func (s *SubmissionService) ValidateFile(ctx context.Context, submissionID, requirementID string, req dto.ValidateFileRequest) (models.Submission, error) {
	sub, err := s.store.GetSubmission(submissionID)
	if err != nil {
		return models.Submission{}, mapStoreErr(err, "submission not found")
	}

	reqs, err := s.catalog.List(sub.Phase, models.StageRegistration)
	if err != nil {
		return models.Submission{}, err
	}

	state := models.ReviewRejected
	if req.Approved {
		state = models.ReviewApproved
	}

	updated, err := s.store.MutateSubmission(submissionID, func(sub *models.Submission) {
		sub.Validations[requirementID] = models.ValidationItem{State: state, Notes: req.Notes}
		if sub.Status.PreSchedule() {
			recomputeStatus(sub, reqs)
		}
	})
	if err != nil {
		return models.Submission{}, mapStoreErr(err, "submission not found")
	}

	s.mirror.SubmissionSaved(updated)
	s.logger.Info("file validated",
		zap.String("submission_id", submissionID),
		zap.String("requirement_id", requirementID),
		zap.String("state", string(state)),
		zap.String("status", string(updated.Status)))
	return updated, nil
}

// ResetFileValidation removes a recorded decision so the requirement reads as
// unreviewed again. A submission still in document review drops back to
// pending rather than keeping a stale aggregate.
func (s *SubmissionService) ResetFileValidation(ctx context.Context, submissionID, requirementID string) (models.Submission, error) {
	updated, err := s.store.MutateSubmission(submissionID, func(sub *models.Submission) {
		delete(sub.Validations, requirementID)
		if !sub.Status.InRevision() && !sub.Status.Completed() {
			sub.Status = models.StatusPending
		}
	})
	if err != nil {
		return models.Submission{}, mapStoreErr(err, "submission not found")
	}

	s.mirror.SubmissionSaved(updated)
	return updated, nil
}

// SubmitRevision merges corrected documents into the submission and clears
// every recorded decision so staff review the new versions from scratch.
// The workflow status is left untouched.
func (s *SubmissionService) SubmitRevision(ctx context.Context, submissionID string, req dto.SubmitRevisionRequest) (models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Submission{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid revision payload")
	}

	updated, err := s.store.MutateSubmission(submissionID, func(sub *models.Submission) {
		for reqID, file := range req.Files {
			sub.Files[reqID] = file
		}
		sub.Validations = make(map[string]models.ValidationItem)
	})
	if err != nil {
		return models.Submission{}, mapStoreErr(err, "submission not found")
	}

	s.mirror.SubmissionSaved(updated)
	s.logger.Info("revision files submitted",
		zap.String("submission_id", submissionID),
		zap.Int("file_count", len(req.Files)))
	return updated, nil
}

// Get returns the submission by id.
func (s *SubmissionService) Get(ctx context.Context, submissionID string) (models.Submission, error) {
	sub, err := s.store.GetSubmission(submissionID)
	if err != nil {
		return models.Submission{}, mapStoreErr(err, "submission not found")
	}
	return sub, nil
}

// Lookup returns the live submission for a (NPM, phase) pair.
func (s *SubmissionService) Lookup(ctx context.Context, npm string, phase models.Phase) (models.Submission, error) {
	if !phase.Valid() {
		return models.Submission{}, appErrors.Clone(appErrors.ErrValidation, "unknown phase")
	}
	sub, err := s.store.FindSubmission(npm, phase)
	if err != nil {
		return models.Submission{}, mapStoreErr(err, "no submission for student and phase")
	}
	return sub, nil
}

// List returns submissions matching the query, newest first.
func (s *SubmissionService) List(ctx context.Context, query dto.SubmissionQuery) ([]models.Submission, error) {
	filter := models.SubmissionFilter{NPM: strings.TrimSpace(query.NPM)}
	if query.Phase != "" {
		phase := models.Phase(query.Phase)
		if !phase.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown phase")
		}
		filter.Phase = phase
	}
	if query.Status != "" {
		filter.Status = []models.Status{models.Status(query.Status)}
	}
	return s.store.ListSubmissions(filter), nil
}

// recomputeStatus derives the aggregate review status: any rejected decision
// dominates, even one recorded under a requirement id no longer in the
// catalog; a full set of approvals on required catalog items validates,
// anything else stays pending. Off-catalog approvals are kept but never
// counted toward completeness.
func recomputeStatus(sub *models.Submission, reqs []models.Requirement) {
	anyRejected := false
	for _, item := range sub.Validations {
		if item.State == models.ReviewRejected {
			anyRejected = true
			break
		}
	}
	allRequiredApproved := true
	for _, r := range reqs {
		if r.Required && sub.ReviewOf(r.ID).State != models.ReviewApproved {
			allRequiredApproved = false
		}
	}
	switch {
	case anyRejected:
		sub.Status = models.StatusRejected
	case allRequiredApproved:
		sub.Status = models.StatusValidated
	default:
		sub.Status = models.StatusPending
	}
}

func mapStoreErr(err error, message string) error {
	if errors.Is(err, repository.ErrNoRecord) {
		return appErrors.Clone(appErrors.ErrNotFound, message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
}
