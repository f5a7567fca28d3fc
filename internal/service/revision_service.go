package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/defense-portal-api/internal/dto"
	"github.com/noah-isme/defense-portal-api/internal/models"
	"github.com/noah-isme/defense-portal-api/internal/repository"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
)

// RevisionService is the library-staff side of the workflow: checking the
// post-defense revision documents and the physical hardcopy, then finalizing
// the phase. Unlike document review, per-file decisions here never move the
// aggregate status on their own.
type RevisionService struct {
	store     *repository.ProcessStore
	catalog   catalogReader
	mirror    MirrorSink
	validator *validator.Validate
	logger    *zap.Logger
	clock     Clock
	dueDays   int
}

// NewRevisionService constructs RevisionService. dueDays controls overdue
// detection and defaults to 7.
func NewRevisionService(store *repository.ProcessStore, catalog catalogReader, mirror MirrorSink, dueDays int, validate *validator.Validate, logger *zap.Logger, clock Clock) *RevisionService {
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
	if dueDays <= 0 {
		dueDays = 7
	}
	return &RevisionService{
		store:     store,
		catalog:   catalog,
		mirror:    mirror,
		validator: validate,
		logger:    logger,
		clock:     clock,
		dueDays:   dueDays,
	}
}

// PendingQueue returns submissions awaiting revision clearance.
func (s *RevisionService) PendingQueue(ctx context.Context) []models.Submission {
	return s.store.ListSubmissions(models.SubmissionFilter{
		Status: []models.Status{
			models.StatusRevisionProposalPending,
			models.StatusRevisionSkripsiPending,
		},
	})
}

// ValidateFile records a decision on a revision document. The aggregate
// status only moves through Finalize.
func (s *RevisionService) ValidateFile(ctx context.Context, submissionID, requirementID string, req dto.ValidateFileRequest) (models.Submission, error) {
	state := models.ReviewRejected
	if req.Approved {
		state = models.ReviewApproved
	}

	updated, err := s.store.MutateSubmission(submissionID, func(sub *models.Submission) {
		sub.Validations[requirementID] = models.ValidationItem{State: state, Notes: req.Notes}
	})
	if err != nil {
		return models.Submission{}, mapStoreErr(err, "submission not found")
	}

	s.mirror.SubmissionSaved(updated)
	s.logger.Info("revision file reviewed",
		zap.String("submission_id", submissionID),
		zap.String("requirement_id", requirementID),
		zap.String("state", string(state)))
	return updated, nil
}

// SetHardcopy records the manual physical-document check.
func (s *RevisionService) SetHardcopy(ctx context.Context, submissionID string, req dto.HardcopyRequest) (models.Submission, error) {
	updated, err := s.store.MutateSubmission(submissionID, func(sub *models.Submission) {
		sub.HardcopyReceived = req.Received
	})
	if err != nil {
		return models.Submission{}, mapStoreErr(err, "submission not found")
	}

	s.mirror.SubmissionSaved(updated)
	return updated, nil
}

// Finalize clears the phase. It requires the submission to be in its revision
// stage, the hardcopy received, every required revision document approved and
// none rejected.
func (s *RevisionService) Finalize(ctx context.Context, submissionID string) (models.Submission, error) {
	sub, err := s.store.GetSubmission(submissionID)
	if err != nil {
		return models.Submission{}, mapStoreErr(err, "submission not found")
	}
	if !sub.Status.InRevision() {
		return models.Submission{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "submission is not awaiting revision clearance")
	}
	if !sub.HardcopyReceived {
		return models.Submission{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "hardcopy has not been received")
	}

	reqs, err := s.catalog.List(sub.Phase, models.StageRevision)
	if err != nil {
		return models.Submission{}, err
	}
	for _, item := range sub.Validations {
		if item.State == models.ReviewRejected {
			return models.Submission{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "a revision document was rejected, student must re-submit")
		}
	}
	for _, r := range reqs {
		if r.Required && sub.ReviewOf(r.ID).State != models.ReviewApproved {
			return models.Submission{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "not all required revision documents are approved")
		}
	}

	final := models.StatusProposalCompleted
	if sub.Phase == models.PhaseSkripsi {
		final = models.StatusSkripsiCompleted
	}
	updated, err := s.store.MutateSubmission(submissionID, func(sub *models.Submission) {
		sub.Status = final
	})
	if err != nil {
		return models.Submission{}, mapStoreErr(err, "submission not found")
	}

	s.mirror.SubmissionSaved(updated)
	s.logger.Info("revision finalized",
		zap.String("submission_id", submissionID),
		zap.String("status", string(final)))
	return updated, nil
}

// RepairStatus reports which revision documents were rejected so staff can
// ask the student for a re-submission. It changes no state.
func (s *RevisionService) RepairStatus(ctx context.Context, submissionID string) (dto.RepairStatus, error) {
	sub, err := s.store.GetSubmission(submissionID)
	if err != nil {
		return dto.RepairStatus{}, mapStoreErr(err, "submission not found")
	}

	var rejected []string
	for reqID, item := range sub.Validations {
		if item.State == models.ReviewRejected {
			rejected = append(rejected, reqID)
		}
	}
	sort.Strings(rejected)
	return dto.RepairStatus{
		HasRejection:           len(rejected) > 0,
		RejectedRequirementIDs: rejected,
	}, nil
}

// Overdue returns submissions stuck in revision whose defense happened more
// than the configured number of days ago.
func (s *RevisionService) Overdue(ctx context.Context) []models.Submission {
	now := s.clock.Now().UTC()
	deadline := time.Duration(s.dueDays) * 24 * time.Hour

	out := make([]models.Submission, 0)
	for _, sub := range s.PendingQueue(ctx) {
		sched, ok := s.store.CompletedScheduleFor(sub.ID)
		if !ok {
			continue
		}
		examDate, err := time.Parse(dateLayout, sched.Date)
		if err != nil {
			continue
		}
		if now.Sub(examDate) > deadline {
			out = append(out, sub)
		}
	}
	return out
}
