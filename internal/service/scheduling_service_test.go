package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/defense-portal-api/internal/dto"
	"github.com/noah-isme/defense-portal-api/internal/models"
	"github.com/noah-isme/defense-portal-api/internal/repository"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
)

func newSchedulingFixture(t *testing.T) (*SchedulingService, *SubmissionService, *repository.ProcessStore) {
	t.Helper()
	store := repository.NewProcessStore()
	subs := NewSubmissionService(store, threeRequirementCatalog(), nil, nil, "2024/2025", nil, nil, fixedClock("2025-03-10T08:00:00Z"))
	sched := NewSchedulingService(store, nil, []string{"Ruang Sidang 1", "Ruang Sidang 2"}, "2024/2025", nil, nil, fixedClock("2025-03-10T08:00:00Z"))
	return sched, subs, store
}

func validatedSubmission(t *testing.T, subs *SubmissionService, store *repository.ProcessStore, npm, name string) models.Submission {
	t.Helper()
	sub, err := subs.Register(context.Background(), dto.RegisterSubmissionRequest{
		StudentNPM:  npm,
		StudentName: name,
		Phase:       models.PhaseProposal,
		Files:       map[string]models.FileRecord{"draft": {ID: "f1", FileName: "draft.pdf"}},
	})
	require.NoError(t, err)
	updated, err := store.MutateSubmission(sub.ID, func(s *models.Submission) { s.Status = models.StatusValidated })
	require.NoError(t, err)
	return updated
}

func proposalFor(sub models.Submission, date, start, end, room string) dto.CreateScheduleRequest {
	return dto.CreateScheduleRequest{
		SubmissionID: sub.ID,
		Date:         date,
		StartTime:    start,
		EndTime:      end,
		Room:         room,
		Advisor1:     "Dr. Ahmad",
		Examiner1:    "Dr. Rina",
	}
}

func TestProposeRequiresValidatedSubmission(t *testing.T) {
	sched, subs, _ := newSchedulingFixture(t)
	sub, err := subs.Register(context.Background(), dto.RegisterSubmissionRequest{
		StudentNPM: "2011001",
		Phase:      models.PhaseProposal,
		Files:      map[string]models.FileRecord{"draft": {ID: "f1"}},
	})
	require.NoError(t, err)

	_, err = sched.Propose(context.Background(), proposalFor(sub, "2025-03-20", "09:00", "11:00", "Ruang Sidang 1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Contains(t, err.Error(), "pending")
}

func TestProposeMarksSubmissionScheduled(t *testing.T) {
	sched, subs, store := newSchedulingFixture(t)
	sub := validatedSubmission(t, subs, store, "2011001", "Budi Santoso")

	created, err := sched.Propose(context.Background(), proposalFor(sub, "2025-03-20", "09:00", "11:00", "Ruang Sidang 1"))
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleUpcoming, created.Status)
	assert.Equal(t, "Budi Santoso", created.StudentName)

	stored, err := store.GetSubmission(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, stored.Status)
}

func TestProposeRejectsSecondLiveSchedule(t *testing.T) {
	sched, subs, store := newSchedulingFixture(t)
	sub := validatedSubmission(t, subs, store, "2011001", "Budi Santoso")

	_, err := sched.Propose(context.Background(), proposalFor(sub, "2025-03-20", "09:00", "11:00", "Ruang Sidang 1"))
	require.NoError(t, err)

	_, err = sched.Propose(context.Background(), proposalFor(sub, "2025-03-21", "09:00", "11:00", "Ruang Sidang 1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has an upcoming schedule")
}

func TestProposeEndBeforeStart(t *testing.T) {
	sched, subs, store := newSchedulingFixture(t)
	sub := validatedSubmission(t, subs, store, "2011001", "Budi Santoso")

	_, err := sched.Propose(context.Background(), proposalFor(sub, "2025-03-20", "11:00", "09:00", "Ruang Sidang 1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProposeRoomConflict(t *testing.T) {
	sched, subs, store := newSchedulingFixture(t)
	first := validatedSubmission(t, subs, store, "2011001", "Budi Santoso")
	second := validatedSubmission(t, subs, store, "2011002", "Siti Rahma")

	_, err := sched.Propose(context.Background(), proposalFor(first, "2025-03-20", "09:00", "11:00", "Ruang Sidang 1"))
	require.NoError(t, err)

	_, err = sched.Propose(context.Background(), proposalFor(second, "2025-03-20", "10:00", "12:00", "Ruang Sidang 1"))
	require.Error(t, err)
	var conflict *models.ScheduleConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "room", conflict.Type)
	assert.Equal(t, "Budi Santoso", conflict.Conflict.StudentName)
	assert.Contains(t, conflict.Message, `room "Ruang Sidang 1" is occupied`)
}

func TestProposeBackToBackDoesNotConflict(t *testing.T) {
	sched, subs, store := newSchedulingFixture(t)
	first := validatedSubmission(t, subs, store, "2011001", "Budi Santoso")
	second := validatedSubmission(t, subs, store, "2011002", "Siti Rahma")

	_, err := sched.Propose(context.Background(), proposalFor(first, "2025-03-20", "09:00", "11:00", "Ruang Sidang 1"))
	require.NoError(t, err)

	// [09:00, 11:00) then [11:00, 13:00) in the same room, windows touch but
	// never overlap.
	req := proposalFor(second, "2025-03-20", "11:00", "13:00", "Ruang Sidang 1")
	req.Advisor1 = "Dr. Budi"
	req.Examiner1 = "Dr. Sari"
	_, err = sched.Propose(context.Background(), req)
	require.NoError(t, err)
}

func TestProposePersonConflict(t *testing.T) {
	sched, subs, store := newSchedulingFixture(t)
	first := validatedSubmission(t, subs, store, "2011001", "Budi Santoso")
	second := validatedSubmission(t, subs, store, "2011002", "Siti Rahma")

	_, err := sched.Propose(context.Background(), proposalFor(first, "2025-03-20", "09:00", "11:00", "Ruang Sidang 1"))
	require.NoError(t, err)

	// Different room, overlapping window, shared examiner.
	req := proposalFor(second, "2025-03-20", "10:00", "12:00", "Ruang Sidang 2")
	req.Advisor1 = "Dr. Budi"
	req.Examiner1 = "Dr. Rina"
	_, err = sched.Propose(context.Background(), req)
	require.Error(t, err)
	var conflict *models.ScheduleConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "person", conflict.Type)
	assert.Equal(t, "Dr. Rina", conflict.Conflict.Person)
	assert.Contains(t, conflict.Message, `committee member "Dr. Rina"`)
}

func TestProposeIgnoresPlaceholderCommittee(t *testing.T) {
	sched, subs, store := newSchedulingFixture(t)
	first := validatedSubmission(t, subs, store, "2011001", "Budi Santoso")
	second := validatedSubmission(t, subs, store, "2011002", "Siti Rahma")

	req1 := proposalFor(first, "2025-03-20", "09:00", "11:00", "Ruang Sidang 1")
	req1.Advisor1 = "Dosen P1"
	req1.Examiner1 = "-"
	_, err := sched.Propose(context.Background(), req1)
	require.NoError(t, err)

	req2 := proposalFor(second, "2025-03-20", "10:00", "12:00", "Ruang Sidang 2")
	req2.Advisor1 = "Dosen P1"
	req2.Examiner1 = "-"
	_, err = sched.Propose(context.Background(), req2)
	require.NoError(t, err, "template placeholder names never collide")
}

func TestProposeIgnoresCompletedSchedules(t *testing.T) {
	sched, subs, store := newSchedulingFixture(t)
	first := validatedSubmission(t, subs, store, "2011001", "Budi Santoso")
	second := validatedSubmission(t, subs, store, "2011002", "Siti Rahma")

	created, err := sched.Propose(context.Background(), proposalFor(first, "2025-03-20", "09:00", "11:00", "Ruang Sidang 1"))
	require.NoError(t, err)
	_, err = sched.Complete(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = sched.Propose(context.Background(), proposalFor(second, "2025-03-20", "09:00", "11:00", "Ruang Sidang 1"))
	require.NoError(t, err, "a held session frees its room and committee")
}

func TestCompleteMovesSubmissionToRevision(t *testing.T) {
	sched, subs, store := newSchedulingFixture(t)
	sub := validatedSubmission(t, subs, store, "2011001", "Budi Santoso")
	created, err := sched.Propose(context.Background(), proposalFor(sub, "2025-03-20", "09:00", "11:00", "Ruang Sidang 1"))
	require.NoError(t, err)

	completed, err := sched.Complete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleCompleted, completed.Status)

	stored, err := store.GetSubmission(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRevisionProposalPending, stored.Status)

	_, err = sched.Complete(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestResetStampsReasonOnFirstFile(t *testing.T) {
	sched, subs, store := newSchedulingFixture(t)
	sub := validatedSubmission(t, subs, store, "2011001", "Budi Santoso")
	created, err := sched.Propose(context.Background(), proposalFor(sub, "2025-03-20", "09:00", "11:00", "Ruang Sidang 1"))
	require.NoError(t, err)

	err = sched.Reset(context.Background(), created.ID, dto.ResetScheduleRequest{Reason: "examiner unavailable"})
	require.NoError(t, err)

	_, err = store.GetSchedule(created.ID)
	require.Error(t, err)

	stored, err := store.GetSubmission(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, stored.Status)
	item := stored.Validations["draft"]
	assert.Equal(t, models.ReviewRejected, item.State)
	assert.Equal(t, "reset: examiner unavailable", item.Notes)
}

func TestUpcomingWindow(t *testing.T) {
	sched, subs, store := newSchedulingFixture(t)
	inWindow := validatedSubmission(t, subs, store, "2011001", "Budi Santoso")
	beyond := validatedSubmission(t, subs, store, "2011002", "Siti Rahma")

	_, err := sched.Propose(context.Background(), proposalFor(inWindow, "2025-03-12", "09:00", "11:00", "Ruang Sidang 1"))
	require.NoError(t, err)
	req := proposalFor(beyond, "2025-03-25", "09:00", "11:00", "Ruang Sidang 2")
	req.Advisor1 = "Dr. Budi"
	req.Examiner1 = "Dr. Sari"
	_, err = sched.Propose(context.Background(), req)
	require.NoError(t, err)

	// Clock is fixed at 2025-03-10; the default window covers three days.
	out := sched.Upcoming(context.Background(), 0)
	require.Len(t, out, 1)
	assert.Equal(t, "2025-03-12", out[0].Date)

	out = sched.Upcoming(context.Background(), 30)
	assert.Len(t, out, 2)
}

func TestRoomDirectory(t *testing.T) {
	sched, _, _ := newSchedulingFixture(t)

	require.NoError(t, sched.AddRoom("Aula Fakultas"))
	err := sched.AddRoom("aula fakultas")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	rooms := sched.Rooms()
	assert.Equal(t, []string{"Aula Fakultas", "Ruang Sidang 1", "Ruang Sidang 2"}, rooms)

	require.NoError(t, sched.RemoveRoom("Aula Fakultas"))
	err = sched.RemoveRoom("Aula Fakultas")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
