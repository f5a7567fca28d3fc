package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/defense-portal-api/internal/models"
	"github.com/noah-isme/defense-portal-api/pkg/config"
	"github.com/noah-isme/defense-portal-api/pkg/jobs"
)

// ProcessMirror is the durable-store collaborator contract. All calls are
// best effort: the in-memory state is the authority for the session.
type ProcessMirror interface {
	UpsertSubmission(ctx context.Context, sub models.Submission) error
	DeleteSubmission(ctx context.Context, id string) error
	UpsertSchedule(ctx context.Context, sched models.Schedule) error
	DeleteSchedule(ctx context.Context, id string) error
	Wipe(ctx context.Context) error
	ReplaceAll(ctx context.Context, snap models.ProcessSnapshot) error
}

// MirrorSink receives change notifications from the workflow services.
// Implementations must never block or fail the calling mutation.
type MirrorSink interface {
	SubmissionSaved(sub models.Submission)
	ScheduleSaved(sched models.Schedule)
	ScheduleRemoved(id string)
	ProcessWiped()
	ProcessRestored(snap models.ProcessSnapshot)
}

// NopMirror is used when no durable store is configured.
type NopMirror struct{}

func (NopMirror) SubmissionSaved(models.Submission)      {}
func (NopMirror) ScheduleSaved(models.Schedule)          {}
func (NopMirror) ScheduleRemoved(string)                 {}
func (NopMirror) ProcessWiped()                          {}
func (NopMirror) ProcessRestored(models.ProcessSnapshot) {}

const (
	jobSubmissionUpsert = "mirror.submission.upsert"
	jobScheduleUpsert   = "mirror.schedule.upsert"
	jobScheduleDelete   = "mirror.schedule.delete"
	jobProcessWipe      = "mirror.process.wipe"
	jobProcessRestore   = "mirror.process.restore"
)

// MirrorService pushes process mutations onto a worker queue that writes them
// to the durable store with retries. Writes that exhaust their retries are
// logged and dropped; they never affect in-memory state.
type MirrorService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewMirrorService wires the mirror queue around the given durable store.
func NewMirrorService(mirror ProcessMirror, cfg config.MirrorConfig, logger *zap.Logger) *MirrorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &MirrorService{logger: logger}
	s.queue = jobs.NewQueue("mirror", func(ctx context.Context, job jobs.Job) error {
		return dispatch(ctx, mirror, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

func dispatch(ctx context.Context, mirror ProcessMirror, job jobs.Job) error {
	switch job.Type {
	case jobSubmissionUpsert:
		sub, ok := job.Payload.(models.Submission)
		if !ok {
			return fmt.Errorf("unexpected payload for %s", job.Type)
		}
		return mirror.UpsertSubmission(ctx, sub)
	case jobScheduleUpsert:
		sched, ok := job.Payload.(models.Schedule)
		if !ok {
			return fmt.Errorf("unexpected payload for %s", job.Type)
		}
		return mirror.UpsertSchedule(ctx, sched)
	case jobScheduleDelete:
		id, ok := job.Payload.(string)
		if !ok {
			return fmt.Errorf("unexpected payload for %s", job.Type)
		}
		return mirror.DeleteSchedule(ctx, id)
	case jobProcessWipe:
		return mirror.Wipe(ctx)
	case jobProcessRestore:
		snap, ok := job.Payload.(models.ProcessSnapshot)
		if !ok {
			return fmt.Errorf("unexpected payload for %s", job.Type)
		}
		return mirror.ReplaceAll(ctx, snap)
	default:
		return fmt.Errorf("unknown mirror job type %s", job.Type)
	}
}

// Start launches the mirror workers.
func (s *MirrorService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the mirror workers.
func (s *MirrorService) Stop() {
	s.queue.Stop()
}

func (s *MirrorService) enqueue(jobType string, payload interface{}) {
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobType,
		Payload: payload,
	})
	if err != nil {
		s.logger.Warn("mirror enqueue failed", zap.String("type", jobType), zap.Error(err))
	}
}

// SubmissionSaved mirrors a submission upsert.
func (s *MirrorService) SubmissionSaved(sub models.Submission) {
	s.enqueue(jobSubmissionUpsert, sub)
}

// ScheduleSaved mirrors a schedule upsert.
func (s *MirrorService) ScheduleSaved(sched models.Schedule) {
	s.enqueue(jobScheduleUpsert, sched)
}

// ScheduleRemoved mirrors a schedule deletion.
func (s *MirrorService) ScheduleRemoved(id string) {
	s.enqueue(jobScheduleDelete, id)
}

// ProcessWiped mirrors a full process reset.
func (s *MirrorService) ProcessWiped() {
	s.enqueue(jobProcessWipe, nil)
}

// ProcessRestored mirrors an undo-reset restore.
func (s *MirrorService) ProcessRestored(snap models.ProcessSnapshot) {
	s.enqueue(jobProcessRestore, snap)
}
