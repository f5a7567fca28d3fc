package repository

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/defense-portal-api/internal/models"
)

// ErrNoRecord is returned when a submission or schedule id is unknown.
var ErrNoRecord = errors.New("record not found")

// ProcessStore is the in-memory authority for the registration workflow:
// all submissions and defense schedules for the current session. Durable
// persistence is a best-effort mirror layered on top; reads here are always
// fresh because every access goes through the lock.
type ProcessStore struct {
	mu          sync.RWMutex
	submissions map[string]models.Submission
	keyIndex    map[string]string
	schedules   map[string]models.Schedule
}

// NewProcessStore builds an empty store.
func NewProcessStore() *ProcessStore {
	return &ProcessStore{
		submissions: make(map[string]models.Submission),
		keyIndex:    make(map[string]string),
		schedules:   make(map[string]models.Schedule),
	}
}

func submissionKey(npm string, phase models.Phase) string {
	return strings.TrimSpace(npm) + "|" + string(phase)
}

// UpsertSubmission inserts or replaces the submission for its
// (student NPM, phase) pair. A re-registration overwrites the previous record
// wholesale but keeps the original id so schedule back-references stay valid.
func (s *ProcessStore) UpsertSubmission(sub models.Submission) models.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := submissionKey(sub.StudentNPM, sub.Phase)
	if existingID, ok := s.keyIndex[key]; ok {
		sub.ID = existingID
	}
	stored := sub.Clone()
	s.submissions[stored.ID] = stored
	s.keyIndex[key] = stored.ID
	return stored.Clone()
}

// GetSubmission returns a copy of the submission by id.
func (s *ProcessStore) GetSubmission(id string) (models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.submissions[id]
	if !ok {
		return models.Submission{}, ErrNoRecord
	}
	return sub.Clone(), nil
}

// FindSubmission returns the live submission for a (NPM, phase) pair.
func (s *ProcessStore) FindSubmission(npm string, phase models.Phase) (models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.keyIndex[submissionKey(npm, phase)]
	if !ok {
		return models.Submission{}, ErrNoRecord
	}
	return s.submissions[id].Clone(), nil
}

// MutateSubmission applies fn to the stored submission under the write lock
// and returns the updated copy.
func (s *ProcessStore) MutateSubmission(id string, fn func(*models.Submission)) (models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.submissions[id]
	if !ok {
		return models.Submission{}, ErrNoRecord
	}
	working := sub.Clone()
	fn(&working)
	working.ID = sub.ID
	s.submissions[id] = working
	return working.Clone(), nil
}

// ListSubmissions returns copies of submissions matching the filter, ordered
// by submission time (newest first) with id as tie-break.
func (s *ProcessStore) ListSubmissions(filter models.SubmissionFilter) []models.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Submission, 0, len(s.submissions))
	for _, sub := range s.submissions {
		if filter.Phase != "" && sub.Phase != filter.Phase {
			continue
		}
		if filter.NPM != "" && sub.StudentNPM != filter.NPM {
			continue
		}
		if len(filter.Status) > 0 && !containsStatus(filter.Status, sub.Status) {
			continue
		}
		out = append(out, sub.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func containsStatus(haystack []models.Status, needle models.Status) bool {
	for _, st := range haystack {
		if st == needle {
			return true
		}
	}
	return false
}

// AddSchedule stores a new schedule.
func (s *ProcessStore) AddSchedule(sched models.Schedule) models.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.schedules[sched.ID] = sched
	return sched
}

// GetSchedule returns a copy of the schedule by id.
func (s *ProcessStore) GetSchedule(id string) (models.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sched, ok := s.schedules[id]
	if !ok {
		return models.Schedule{}, ErrNoRecord
	}
	return sched, nil
}

// MutateSchedule applies fn to the stored schedule under the write lock.
func (s *ProcessStore) MutateSchedule(id string, fn func(*models.Schedule)) (models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.schedules[id]
	if !ok {
		return models.Schedule{}, ErrNoRecord
	}
	fn(&sched)
	sched.ID = id
	s.schedules[id] = sched
	return sched, nil
}

// DeleteSchedule removes a schedule and returns the deleted copy.
func (s *ProcessStore) DeleteSchedule(id string) (models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.schedules[id]
	if !ok {
		return models.Schedule{}, ErrNoRecord
	}
	delete(s.schedules, id)
	return sched, nil
}

// ListSchedules returns copies of all schedules sorted by date and start time.
func (s *ProcessStore) ListSchedules() []models.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Schedule, 0, len(s.schedules))
	for _, sched := range s.schedules {
		out = append(out, sched)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// LiveScheduleFor returns the non-completed schedule owned by a submission,
// if any. At most one exists.
func (s *ProcessStore) LiveScheduleFor(submissionID string) (models.Schedule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sched := range s.schedules {
		if sched.SubmissionID == submissionID && sched.Status != models.ScheduleCompleted {
			return sched, true
		}
	}
	return models.Schedule{}, false
}

// CompletedScheduleFor returns the completed schedule owned by a submission.
func (s *ProcessStore) CompletedScheduleFor(submissionID string) (models.Schedule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sched := range s.schedules {
		if sched.SubmissionID == submissionID && sched.Status == models.ScheduleCompleted {
			return sched, true
		}
	}
	return models.Schedule{}, false
}

// Snapshot captures a deep copy of the full process state.
func (s *ProcessStore) Snapshot(takenAt time.Time) models.ProcessSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := models.ProcessSnapshot{TakenAt: takenAt}
	for _, sub := range s.submissions {
		snap.Submissions = append(snap.Submissions, sub.Clone())
	}
	for _, sched := range s.schedules {
		snap.Schedules = append(snap.Schedules, sched)
	}
	sort.Slice(snap.Submissions, func(i, j int) bool { return snap.Submissions[i].ID < snap.Submissions[j].ID })
	sort.Slice(snap.Schedules, func(i, j int) bool { return snap.Schedules[i].ID < snap.Schedules[j].ID })
	return snap
}

// RestoreFull replaces the live collections wholesale with the snapshot
// contents. Used to undo a full process reset.
func (s *ProcessStore) RestoreFull(snap models.ProcessSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.submissions = make(map[string]models.Submission, len(snap.Submissions))
	s.keyIndex = make(map[string]string, len(snap.Submissions))
	s.schedules = make(map[string]models.Schedule, len(snap.Schedules))
	for _, sub := range snap.Submissions {
		stored := sub.Clone()
		s.submissions[stored.ID] = stored
		s.keyIndex[submissionKey(stored.StudentNPM, stored.Phase)] = stored.ID
	}
	for _, sched := range snap.Schedules {
		s.schedules[sched.ID] = sched
	}
}

// Wipe clears all submissions and schedules. The student directory is a
// separate collaborator and is untouched.
func (s *ProcessStore) Wipe() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.submissions = make(map[string]models.Submission)
	s.keyIndex = make(map[string]string)
	s.schedules = make(map[string]models.Schedule)
}
