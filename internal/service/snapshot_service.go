package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/defense-portal-api/internal/models"
	"github.com/noah-isme/defense-portal-api/internal/repository"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
)

// SnapshotService guards the destructive staff actions: wiping the process
// data for a new academic cycle and bulk-deleting students. Each action kind
// keeps exactly one undo stash; a new action of the same kind overwrites it.
type SnapshotService struct {
	store  *repository.ProcessStore
	mirror MirrorSink
	cache  *CacheService
	logger *zap.Logger
	clock  Clock

	mu           sync.Mutex
	processStash *models.ProcessSnapshot
	studentStash []models.Student
}

// NewSnapshotService constructs SnapshotService. cache may be nil.
func NewSnapshotService(store *repository.ProcessStore, mirror MirrorSink, cache *CacheService, logger *zap.Logger, clock Clock) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = SystemClock()
	}
	if mirror == nil {
		mirror = NopMirror{}
	}
	return &SnapshotService{
		store:  store,
		mirror: mirror,
		cache:  cache,
		logger: logger,
		clock:  clock,
	}
}

// Snapshot returns a deep copy of the current process state.
func (s *SnapshotService) Snapshot(ctx context.Context) models.ProcessSnapshot {
	return s.store.Snapshot(s.clock.Now().UTC())
}

// ResetProcessData wipes all submissions and schedules after stashing a full
// snapshot for undo. The student directory is untouched.
func (s *SnapshotService) ResetProcessData(ctx context.Context) error {
	snap := s.store.Snapshot(s.clock.Now().UTC())

	s.mu.Lock()
	s.processStash = &snap
	s.mu.Unlock()

	s.store.Wipe()
	s.mirror.ProcessWiped()
	s.invalidateDashboard(ctx)
	s.logger.Warn("process data reset",
		zap.Int("submissions", len(snap.Submissions)),
		zap.Int("schedules", len(snap.Schedules)))
	return nil
}

// UndoReset restores the process state wholesale from the retained stash.
func (s *SnapshotService) UndoReset(ctx context.Context) error {
	s.mu.Lock()
	snap := s.processStash
	s.processStash = nil
	s.mu.Unlock()

	if snap == nil {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "no process reset to undo")
	}

	s.store.RestoreFull(*snap)
	s.mirror.ProcessRestored(*snap)
	s.invalidateDashboard(ctx)
	s.logger.Info("process data restored",
		zap.Int("submissions", len(snap.Submissions)),
		zap.Int("schedules", len(snap.Schedules)),
		zap.Time("taken_at", snap.TakenAt))
	return nil
}

// StashDeletedStudents retains the records removed by a bulk delete so the
// action can be undone. A later bulk delete overwrites the stash.
func (s *SnapshotService) StashDeletedStudents(students []models.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.studentStash = append([]models.Student(nil), students...)
}

// TakeStudentStash claims and clears the retained student records.
func (s *SnapshotService) TakeStudentStash() []models.Student {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.studentStash
	s.studentStash = nil
	return out
}

func (s *SnapshotService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
