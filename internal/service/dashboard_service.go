package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/defense-portal-api/internal/models"
	"github.com/noah-isme/defense-portal-api/internal/repository"
)

const (
	dashboardCachePattern = "dashboard:*"
	dashboardStatsKey     = "dashboard:stats"
)

// DashboardService aggregates workflow progress for the admin landing page.
// Stats are cheap to compute but hit on every page load, so they are cached.
type DashboardService struct {
	store    *repository.ProcessStore
	cache    *CacheService
	metrics  *MetricsService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDashboardService constructs DashboardService. cache and metrics may be nil.
func NewDashboardService(store *repository.ProcessStore, cache *CacheService, metrics *MetricsService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &DashboardService{
		store:    store,
		cache:    cache,
		metrics:  metrics,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Stats returns the workflow counters, served from cache when fresh.
func (s *DashboardService) Stats(ctx context.Context) (models.ProcessStats, error) {
	var cached models.ProcessStats
	if hit, err := s.cache.Get(ctx, dashboardStatsKey, &cached); err == nil && hit {
		return cached, nil
	}

	stats, byStatus := s.compute()
	if s.metrics != nil {
		s.metrics.UpdateWorkflowStats(stats, byStatus)
	}
	if err := s.cache.Set(ctx, dashboardStatsKey, stats, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache dashboard stats", zap.Error(err))
	}
	return stats, nil
}

func (s *DashboardService) compute() (models.ProcessStats, map[models.Status]int) {
	subs := s.store.ListSubmissions(models.SubmissionFilter{})
	byStatus := make(map[models.Status]int)
	stats := models.ProcessStats{Total: len(subs)}
	for _, sub := range subs {
		byStatus[sub.Status]++
		switch {
		case sub.Status == models.StatusProposalCompleted:
			stats.ProposalPassed++
		case sub.Status == models.StatusSkripsiCompleted:
			stats.SkripsiPassed++
		case sub.Status.InRevision():
			stats.PendingRevision++
		}
	}
	for _, sched := range s.store.ListSchedules() {
		if sched.Status == models.ScheduleUpcoming {
			stats.UpcomingExams++
		}
	}
	return stats, byStatus
}
