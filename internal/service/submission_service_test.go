package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/defense-portal-api/internal/dto"
	"github.com/noah-isme/defense-portal-api/internal/models"
	"github.com/noah-isme/defense-portal-api/internal/repository"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
)

type stubCatalog struct {
	registration []models.Requirement
	revision     []models.Requirement
}

func (c *stubCatalog) List(phase models.Phase, stage models.CatalogStage) ([]models.Requirement, error) {
	if stage == models.StageRevision {
		return c.revision, nil
	}
	return c.registration, nil
}

type stubDirectory struct {
	students map[string]models.Student
}

func (d *stubDirectory) FindByNPM(ctx context.Context, npm string) (*models.Student, error) {
	if s, ok := d.students[npm]; ok {
		return &s, nil
	}
	return nil, repository.ErrNoRecord
}

func fixedClock(value string) ClockFunc {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func threeRequirementCatalog() *stubCatalog {
	return &stubCatalog{
		registration: []models.Requirement{
			{ID: "draft", Label: "Draft", Required: true},
			{ID: "turnitin", Label: "Plagiarism Check", Required: true},
			{ID: "payment", Label: "Payment Proof", Required: false},
		},
	}
}

func newSubmissionFixture(t *testing.T) (*SubmissionService, *repository.ProcessStore) {
	t.Helper()
	store := repository.NewProcessStore()
	svc := NewSubmissionService(store, threeRequirementCatalog(), nil, nil, "2024/2025", nil, nil, fixedClock("2025-03-10T08:00:00Z"))
	return svc, store
}

func registerProposal(t *testing.T, svc *SubmissionService, npm string) models.Submission {
	t.Helper()
	sub, err := svc.Register(context.Background(), dto.RegisterSubmissionRequest{
		StudentNPM:  npm,
		StudentName: "Budi Santoso",
		Phase:       models.PhaseProposal,
		Files: map[string]models.FileRecord{
			"draft":    {ID: "f1", FileName: "draft.pdf"},
			"turnitin": {ID: "f2", FileName: "turnitin.pdf"},
		},
	})
	require.NoError(t, err)
	return sub
}

func TestRegisterStartsPending(t *testing.T) {
	svc, _ := newSubmissionFixture(t)

	sub := registerProposal(t, svc, "2011001")
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, models.StatusPending, sub.Status)
	assert.Equal(t, "2024/2025", sub.AcademicYear)
	assert.Empty(t, sub.Validations)
	assert.Equal(t, "2025-03-10T08:00:00Z", sub.SubmittedAt.Format(time.RFC3339))
}

func TestRegisterOverwritesPreviousRegistration(t *testing.T) {
	svc, _ := newSubmissionFixture(t)

	first := registerProposal(t, svc, "2011001")
	_, err := svc.ValidateFile(context.Background(), first.ID, "draft", dto.ValidateFileRequest{Approved: true})
	require.NoError(t, err)

	second := registerProposal(t, svc, "2011001")
	assert.Equal(t, first.ID, second.ID, "re-registration keeps the original id")
	assert.Equal(t, models.StatusPending, second.Status)
	assert.Empty(t, second.Validations)
}

func TestRegisterFillsNameFromDirectory(t *testing.T) {
	store := repository.NewProcessStore()
	dir := &stubDirectory{students: map[string]models.Student{
		"2011002": {NPM: "2011002", Name: "Siti Rahma"},
	}}
	svc := NewSubmissionService(store, threeRequirementCatalog(), dir, nil, "2024/2025", nil, nil, nil)

	sub, err := svc.Register(context.Background(), dto.RegisterSubmissionRequest{
		StudentNPM: "2011002",
		Phase:      models.PhaseProposal,
		Files:      map[string]models.FileRecord{"draft": {ID: "f1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Siti Rahma", sub.StudentName)
}

func TestValidateFileRejectionDominates(t *testing.T) {
	svc, _ := newSubmissionFixture(t)
	sub := registerProposal(t, svc, "2011001")

	_, err := svc.ValidateFile(context.Background(), sub.ID, "draft", dto.ValidateFileRequest{Approved: true})
	require.NoError(t, err)
	_, err = svc.ValidateFile(context.Background(), sub.ID, "payment", dto.ValidateFileRequest{Approved: true})
	require.NoError(t, err)

	updated, err := svc.ValidateFile(context.Background(), sub.ID, "turnitin", dto.ValidateFileRequest{Approved: false, Notes: "similarity above 30%"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, updated.Status)
}

func TestValidateFileAllRequiredApprovedValidates(t *testing.T) {
	svc, _ := newSubmissionFixture(t)
	sub := registerProposal(t, svc, "2011001")

	_, err := svc.ValidateFile(context.Background(), sub.ID, "draft", dto.ValidateFileRequest{Approved: true})
	require.NoError(t, err)
	updated, err := svc.ValidateFile(context.Background(), sub.ID, "turnitin", dto.ValidateFileRequest{Approved: true})
	require.NoError(t, err)

	// The optional payment requirement is still unreviewed.
	assert.Equal(t, models.StatusValidated, updated.Status)
}

func TestValidateFilePartialReviewStaysPending(t *testing.T) {
	svc, _ := newSubmissionFixture(t)
	sub := registerProposal(t, svc, "2011001")

	updated, err := svc.ValidateFile(context.Background(), sub.ID, "draft", dto.ValidateFileRequest{Approved: true})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)
}

func TestValidateFileRejectedThenApprovedRecovers(t *testing.T) {
	svc, _ := newSubmissionFixture(t)
	sub := registerProposal(t, svc, "2011001")

	_, err := svc.ValidateFile(context.Background(), sub.ID, "draft", dto.ValidateFileRequest{Approved: false})
	require.NoError(t, err)
	_, err = svc.ValidateFile(context.Background(), sub.ID, "turnitin", dto.ValidateFileRequest{Approved: true})
	require.NoError(t, err)

	updated, err := svc.ValidateFile(context.Background(), sub.ID, "draft", dto.ValidateFileRequest{Approved: true})
	require.NoError(t, err)
	assert.Equal(t, models.StatusValidated, updated.Status)
}

func TestValidateFileUnknownRequirementApprovalNotCounted(t *testing.T) {
	svc, _ := newSubmissionFixture(t)
	sub := registerProposal(t, svc, "2011001")

	updated, err := svc.ValidateFile(context.Background(), sub.ID, "not_in_catalog", dto.ValidateFileRequest{Approved: true})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewApproved, updated.Validations["not_in_catalog"].State)
	assert.Equal(t, models.StatusPending, updated.Status, "approvals outside the catalog never count toward completeness")
}

func TestValidateFileOffCatalogRejectionDominates(t *testing.T) {
	svc, _ := newSubmissionFixture(t)
	sub := registerProposal(t, svc, "2011001")

	_, err := svc.ValidateFile(context.Background(), sub.ID, "stale_req", dto.ValidateFileRequest{Approved: false})
	require.NoError(t, err)

	_, err = svc.ValidateFile(context.Background(), sub.ID, "draft", dto.ValidateFileRequest{Approved: true})
	require.NoError(t, err)
	updated, err := svc.ValidateFile(context.Background(), sub.ID, "turnitin", dto.ValidateFileRequest{Approved: true})
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, updated.Status, "a rejection keeps dominating even when its requirement leaves the catalog")
}

func TestValidateFileSkipsRecomputeAfterScheduling(t *testing.T) {
	svc, store := newSubmissionFixture(t)
	sub := registerProposal(t, svc, "2011001")
	_, err := store.MutateSubmission(sub.ID, func(s *models.Submission) { s.Status = models.StatusScheduled })
	require.NoError(t, err)

	updated, err := svc.ValidateFile(context.Background(), sub.ID, "draft", dto.ValidateFileRequest{Approved: false})
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, updated.Status)
}

func TestResetFileValidationDropsBackToPending(t *testing.T) {
	svc, _ := newSubmissionFixture(t)
	sub := registerProposal(t, svc, "2011001")

	_, err := svc.ValidateFile(context.Background(), sub.ID, "draft", dto.ValidateFileRequest{Approved: true})
	require.NoError(t, err)
	_, err = svc.ValidateFile(context.Background(), sub.ID, "turnitin", dto.ValidateFileRequest{Approved: true})
	require.NoError(t, err)

	updated, err := svc.ResetFileValidation(context.Background(), sub.ID, "turnitin")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Equal(t, models.ReviewUnreviewed, updated.ReviewOf("turnitin").State)
}

func TestSubmitRevisionClearsDecisions(t *testing.T) {
	svc, _ := newSubmissionFixture(t)
	sub := registerProposal(t, svc, "2011001")

	_, err := svc.ValidateFile(context.Background(), sub.ID, "draft", dto.ValidateFileRequest{Approved: false})
	require.NoError(t, err)

	updated, err := svc.SubmitRevision(context.Background(), sub.ID, dto.SubmitRevisionRequest{
		Files: map[string]models.FileRecord{"draft": {ID: "f9", FileName: "draft-v2.pdf"}},
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Validations)
	assert.Equal(t, "draft-v2.pdf", updated.Files["draft"].FileName)
	assert.Equal(t, "turnitin.pdf", updated.Files["turnitin"].FileName, "untouched files survive the merge")
}

func TestLookupUnknownStudent(t *testing.T) {
	svc, _ := newSubmissionFixture(t)

	_, err := svc.Lookup(context.Background(), "9999999", models.PhaseProposal)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestListFiltersByPhaseAndStatus(t *testing.T) {
	svc, store := newSubmissionFixture(t)
	registerProposal(t, svc, "2011001")
	second := registerProposal(t, svc, "2011002")
	_, err := store.MutateSubmission(second.ID, func(s *models.Submission) { s.Status = models.StatusValidated })
	require.NoError(t, err)

	out, err := svc.List(context.Background(), dto.SubmissionQuery{Phase: "proposal", Status: "validated"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "2011002", out[0].StudentNPM)

	_, err = svc.List(context.Background(), dto.SubmissionQuery{Phase: "doctorate"})
	require.Error(t, err)
}
