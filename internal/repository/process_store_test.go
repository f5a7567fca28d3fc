package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/defense-portal-api/internal/models"
)

func newSubmission(id, npm string, phase models.Phase) models.Submission {
	return models.Submission{
		ID:          id,
		StudentNPM:  npm,
		Phase:       phase,
		Files:       map[string]models.FileRecord{},
		Validations: map[string]models.ValidationItem{},
		Status:      models.StatusPending,
	}
}

func TestUpsertSubmissionKeepsIDForSamePair(t *testing.T) {
	store := NewProcessStore()

	first := store.UpsertSubmission(newSubmission("id-1", "2011001", models.PhaseProposal))
	second := store.UpsertSubmission(newSubmission("id-2", "2011001", models.PhaseProposal))
	assert.Equal(t, first.ID, second.ID)

	// A different phase for the same student is a separate record.
	third := store.UpsertSubmission(newSubmission("id-3", "2011001", models.PhaseSkripsi))
	assert.Equal(t, "id-3", third.ID)
	assert.Len(t, store.ListSubmissions(models.SubmissionFilter{}), 2)
}

func TestGetSubmissionReturnsCopy(t *testing.T) {
	store := NewProcessStore()
	store.UpsertSubmission(newSubmission("id-1", "2011001", models.PhaseProposal))

	got, err := store.GetSubmission("id-1")
	require.NoError(t, err)
	got.Validations["draft"] = models.ValidationItem{State: models.ReviewApproved}

	fresh, err := store.GetSubmission("id-1")
	require.NoError(t, err)
	assert.Empty(t, fresh.Validations)
}

func TestMutateSubmissionPreservesID(t *testing.T) {
	store := NewProcessStore()
	store.UpsertSubmission(newSubmission("id-1", "2011001", models.PhaseProposal))

	updated, err := store.MutateSubmission("id-1", func(sub *models.Submission) {
		sub.ID = "tampered"
		sub.Status = models.StatusValidated
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", updated.ID)
	assert.Equal(t, models.StatusValidated, updated.Status)

	_, err = store.MutateSubmission("missing", func(*models.Submission) {})
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestListSubmissionsNewestFirst(t *testing.T) {
	store := NewProcessStore()
	older := newSubmission("id-1", "2011001", models.PhaseProposal)
	older.SubmittedAt = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	newer := newSubmission("id-2", "2011002", models.PhaseProposal)
	newer.SubmittedAt = time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC)
	store.UpsertSubmission(older)
	store.UpsertSubmission(newer)

	out := store.ListSubmissions(models.SubmissionFilter{})
	require.Len(t, out, 2)
	assert.Equal(t, "id-2", out[0].ID)
}

func TestLiveAndCompletedScheduleLookups(t *testing.T) {
	store := NewProcessStore()
	store.AddSchedule(models.Schedule{ID: "sch-1", SubmissionID: "sub-1", Status: models.ScheduleUpcoming})
	store.AddSchedule(models.Schedule{ID: "sch-2", SubmissionID: "sub-2", Status: models.ScheduleCompleted})

	live, ok := store.LiveScheduleFor("sub-1")
	require.True(t, ok)
	assert.Equal(t, "sch-1", live.ID)

	_, ok = store.LiveScheduleFor("sub-2")
	assert.False(t, ok)

	done, ok := store.CompletedScheduleFor("sub-2")
	require.True(t, ok)
	assert.Equal(t, "sch-2", done.ID)
}

func TestListSchedulesSortedByDateAndTime(t *testing.T) {
	store := NewProcessStore()
	store.AddSchedule(models.Schedule{ID: "b", Date: "2025-03-20", StartTime: "13:00"})
	store.AddSchedule(models.Schedule{ID: "a", Date: "2025-03-20", StartTime: "09:00"})
	store.AddSchedule(models.Schedule{ID: "c", Date: "2025-03-19", StartTime: "15:00"})

	out := store.ListSchedules()
	require.Len(t, out, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{out[0].ID, out[1].ID, out[2].ID})
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	store := NewProcessStore()
	store.UpsertSubmission(newSubmission("id-1", "2011001", models.PhaseProposal))
	store.AddSchedule(models.Schedule{ID: "sch-1", SubmissionID: "id-1", Date: "2025-03-20"})

	snap := store.Snapshot(time.Now())
	store.Wipe()
	assert.Empty(t, store.ListSubmissions(models.SubmissionFilter{}))

	store.RestoreFull(snap)
	restored, err := store.FindSubmission("2011001", models.PhaseProposal)
	require.NoError(t, err)
	assert.Equal(t, "id-1", restored.ID)
	assert.Len(t, store.ListSchedules(), 1)
}

func TestDeleteScheduleReturnsCopy(t *testing.T) {
	store := NewProcessStore()
	store.AddSchedule(models.Schedule{ID: "sch-1", Room: "Ruang Sidang 1"})

	deleted, err := store.DeleteSchedule("sch-1")
	require.NoError(t, err)
	assert.Equal(t, "Ruang Sidang 1", deleted.Room)

	_, err = store.DeleteSchedule("sch-1")
	assert.ErrorIs(t, err, ErrNoRecord)
}
