package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/defense-portal-api/internal/dto"
	"github.com/noah-isme/defense-portal-api/internal/models"
	"github.com/noah-isme/defense-portal-api/internal/repository"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// SchedulingService allocates defense sessions over rooms, time windows and
// committee members. Conflict checks always read the live store so two staff
// members cannot double-book against stale data.
type SchedulingService struct {
	store        *repository.ProcessStore
	mirror       MirrorSink
	validator    *validator.Validate
	logger       *zap.Logger
	clock        Clock
	academicYear string

	roomsMu sync.RWMutex
	rooms   []string
}

// NewSchedulingService constructs SchedulingService with the configured room
// directory.
func NewSchedulingService(store *repository.ProcessStore, mirror MirrorSink, rooms []string, academicYear string, validate *validator.Validate, logger *zap.Logger, clock Clock) *SchedulingService {
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
	return &SchedulingService{
		store:        store,
		mirror:       mirror,
		validator:    validate,
		logger:       logger,
		clock:        clock,
		academicYear: academicYear,
		rooms:        append([]string(nil), rooms...),
	}
}

// Propose allocates a session for a validated submission. Room collisions are
// reported before committee collisions; the first blocking session found wins.
func (s *SchedulingService) Propose(ctx context.Context, req dto.CreateScheduleRequest) (models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Schedule{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	newStart := timeToMinutes(req.StartTime)
	newEnd := timeToMinutes(req.EndTime)
	if newEnd <= newStart {
		return models.Schedule{}, appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}

	sub, err := s.store.GetSubmission(req.SubmissionID)
	if err != nil {
		return models.Schedule{}, mapStoreErr(err, "submission not found")
	}
	if sub.Status == models.StatusScheduled {
		if _, ok := s.store.LiveScheduleFor(sub.ID); ok {
			return models.Schedule{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "submission already has an upcoming schedule")
		}
	}
	if sub.Status != models.StatusValidated {
		return models.Schedule{}, appErrors.Clone(appErrors.ErrPreconditionFailed,
			fmt.Sprintf("submission must be validated before scheduling, current status is %s", sub.Status))
	}

	candidate := models.Schedule{
		ID:           uuid.NewString(),
		SubmissionID: sub.ID,
		Phase:        sub.Phase,
		Date:         req.Date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Room:         strings.TrimSpace(req.Room),
		StudentName:  sub.StudentName,
		Title:        strings.TrimSpace(req.Title),
		Advisor1:     strings.TrimSpace(req.Advisor1),
		Advisor2:     strings.TrimSpace(req.Advisor2),
		Examiner1:    strings.TrimSpace(req.Examiner1),
		Examiner2:    strings.TrimSpace(req.Examiner2),
		Status:       models.ScheduleUpcoming,
		AcademicYear: s.academicYear,
	}

	if conflictErr := s.findConflict(candidate, newStart, newEnd); conflictErr != nil {
		return models.Schedule{}, conflictErr
	}

	stored := s.store.AddSchedule(candidate)
	updatedSub, err := s.store.MutateSubmission(sub.ID, func(sub *models.Submission) {
		sub.Status = models.StatusScheduled
	})
	if err != nil {
		return models.Schedule{}, mapStoreErr(err, "submission not found")
	}

	s.mirror.ScheduleSaved(stored)
	s.mirror.SubmissionSaved(updatedSub)
	s.logger.Info("defense scheduled",
		zap.String("schedule_id", stored.ID),
		zap.String("submission_id", sub.ID),
		zap.String("date", stored.Date),
		zap.String("room", stored.Room))
	return stored, nil
}

// findConflict scans every other non-completed session on the same date with
// the half-open overlap rule: [start, end) windows touch without colliding.
func (s *SchedulingService) findConflict(candidate models.Schedule, newStart, newEnd int) error {
	newPeople := candidate.Committee()

	for _, existing := range s.store.ListSchedules() {
		if existing.ID == candidate.ID || existing.Status == models.ScheduleCompleted {
			continue
		}
		if existing.Date != candidate.Date {
			continue
		}
		existStart := timeToMinutes(existing.StartTime)
		existEnd := timeToMinutes(existing.EndTime)
		if !(newStart < existEnd && newEnd > existStart) {
			continue
		}

		if existing.Room == candidate.Room {
			return &models.ScheduleConflictError{
				Type: "room",
				Message: fmt.Sprintf("room %q is occupied by %s (%s) from %s to %s",
					existing.Room, existing.StudentName, existing.Phase, existing.StartTime, existing.EndTime),
				Conflict: conflictDetail(existing, "room", ""),
			}
		}

		for _, person := range existing.Committee() {
			if containsName(newPeople, person) {
				return &models.ScheduleConflictError{
					Type: "person",
					Message: fmt.Sprintf("committee member %q is assigned to %s (%s) from %s to %s",
						person, existing.StudentName, existing.Phase, existing.StartTime, existing.EndTime),
					Conflict: conflictDetail(existing, "person", person),
				}
			}
		}
	}
	return nil
}

// Complete marks the session as held and moves the submission into the
// post-defense revision stage for its phase.
func (s *SchedulingService) Complete(ctx context.Context, scheduleID string) (models.Schedule, error) {
	sched, err := s.store.GetSchedule(scheduleID)
	if err != nil {
		return models.Schedule{}, mapStoreErr(err, "schedule not found")
	}
	if sched.Status == models.ScheduleCompleted {
		return models.Schedule{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "schedule already completed")
	}

	updated, err := s.store.MutateSchedule(scheduleID, func(sched *models.Schedule) {
		sched.Status = models.ScheduleCompleted
	})
	if err != nil {
		return models.Schedule{}, mapStoreErr(err, "schedule not found")
	}

	next := models.StatusRevisionProposalPending
	if updated.Phase == models.PhaseSkripsi {
		next = models.StatusRevisionSkripsiPending
	}
	updatedSub, err := s.store.MutateSubmission(updated.SubmissionID, func(sub *models.Submission) {
		sub.Status = next
	})
	if err != nil {
		return models.Schedule{}, mapStoreErr(err, "submission not found")
	}

	s.mirror.ScheduleSaved(updated)
	s.mirror.SubmissionSaved(updatedSub)
	s.logger.Info("defense completed",
		zap.String("schedule_id", scheduleID),
		zap.String("submission_id", updated.SubmissionID),
		zap.String("next_status", string(next)))
	return updated, nil
}

// Reset removes the schedule and pushes the owning submission back to
// rejected, stamping one stored file with the reason so the student sees why.
func (s *SchedulingService) Reset(ctx context.Context, scheduleID string, req dto.ResetScheduleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "reset reason is required")
	}

	deleted, err := s.store.DeleteSchedule(scheduleID)
	if err != nil {
		return mapStoreErr(err, "schedule not found")
	}

	updatedSub, err := s.store.MutateSubmission(deleted.SubmissionID, func(sub *models.Submission) {
		sub.Status = models.StatusRejected
		if reqID := sub.FirstFileRequirementID(); reqID != "" {
			sub.Validations[reqID] = models.ValidationItem{
				State: models.ReviewRejected,
				Notes: fmt.Sprintf("reset: %s", req.Reason),
			}
		}
	})
	if err == nil {
		s.mirror.SubmissionSaved(updatedSub)
	}

	s.mirror.ScheduleRemoved(scheduleID)
	s.logger.Info("schedule reset",
		zap.String("schedule_id", scheduleID),
		zap.String("submission_id", deleted.SubmissionID),
		zap.String("reason", req.Reason))
	return nil
}

// List returns all schedules sorted by date and start time.
func (s *SchedulingService) List(ctx context.Context) []models.Schedule {
	return s.store.ListSchedules()
}

// Upcoming returns non-completed schedules within the next N days, today
// included.
func (s *SchedulingService) Upcoming(ctx context.Context, days int) []models.Schedule {
	if days <= 0 {
		days = 3
	}
	today := s.clock.Now().UTC().Truncate(24 * time.Hour)
	limit := today.AddDate(0, 0, days)

	out := make([]models.Schedule, 0)
	for _, sched := range s.store.ListSchedules() {
		if sched.Status == models.ScheduleCompleted {
			continue
		}
		date, err := time.Parse(dateLayout, sched.Date)
		if err != nil {
			continue
		}
		if date.Before(today) || date.After(limit) {
			continue
		}
		out = append(out, sched)
	}
	return out
}

// Rooms returns the room directory sorted by name.
func (s *SchedulingService) Rooms() []string {
	s.roomsMu.RLock()
	defer s.roomsMu.RUnlock()

	out := append([]string(nil), s.rooms...)
	sort.Strings(out)
	return out
}

// AddRoom registers a new defense room.
func (s *SchedulingService) AddRoom(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return appErrors.Clone(appErrors.ErrValidation, "room name is required")
	}

	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()

	for _, room := range s.rooms {
		if strings.EqualFold(room, name) {
			return appErrors.Clone(appErrors.ErrConflict, "room already exists")
		}
	}
	s.rooms = append(s.rooms, name)
	return nil
}

// RemoveRoom deletes a room from the directory. Existing schedules keep the
// room name they were created with.
func (s *SchedulingService) RemoveRoom(name string) error {
	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()

	for i, room := range s.rooms {
		if strings.EqualFold(room, name) {
			s.rooms = append(s.rooms[:i:i], s.rooms[i+1:]...)
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "room not found")
}

func conflictDetail(existing models.Schedule, dimension, person string) models.ScheduleConflict {
	return models.ScheduleConflict{
		ScheduleID:  existing.ID,
		StudentName: existing.StudentName,
		Phase:       existing.Phase,
		Date:        existing.Date,
		StartTime:   existing.StartTime,
		EndTime:     existing.EndTime,
		Room:        existing.Room,
		Dimension:   dimension,
		Person:      person,
	}
}

func containsName(names []string, target string) bool {
	for _, name := range names {
		if name == target {
			return true
		}
	}
	return false
}

// timeToMinutes converts an HH:MM string to minutes since midnight. Inputs
// are validated upstream with the datetime tag.
func timeToMinutes(value string) int {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}
