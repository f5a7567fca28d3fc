package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/defense-portal-api/internal/models"
)

// MirrorRepository persists best-effort copies of process state into
// PostgreSQL. The in-memory store stays authoritative for the session;
// failures here are retried by the job queue, never rolled back into memory.
type MirrorRepository struct {
	db *sqlx.DB
}

// NewMirrorRepository constructs a MirrorRepository.
func NewMirrorRepository(db *sqlx.DB) *MirrorRepository {
	return &MirrorRepository{db: db}
}

// UpsertSubmission writes the submission document.
func (r *MirrorRepository) UpsertSubmission(ctx context.Context, sub models.Submission) error {
	doc, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("marshal submission %s: %w", sub.ID, err)
	}
	query := `INSERT INTO submission_mirror (id, student_npm, phase, status, doc, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        ON CONFLICT (id) DO UPDATE SET student_npm = EXCLUDED.student_npm, phase = EXCLUDED.phase,
            status = EXCLUDED.status, doc = EXCLUDED.doc, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, sub.ID, sub.StudentNPM, sub.Phase, sub.Status, doc); err != nil {
		return fmt.Errorf("mirror submission %s: %w", sub.ID, err)
	}
	return nil
}

// DeleteSubmission removes a mirrored submission.
func (r *MirrorRepository) DeleteSubmission(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM submission_mirror WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete mirrored submission %s: %w", id, err)
	}
	return nil
}

// UpsertSchedule writes the schedule document.
func (r *MirrorRepository) UpsertSchedule(ctx context.Context, sched models.Schedule) error {
	doc, err := json.Marshal(sched)
	if err != nil {
		return fmt.Errorf("marshal schedule %s: %w", sched.ID, err)
	}
	query := `INSERT INTO schedule_mirror (id, submission_id, phase, status, doc, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        ON CONFLICT (id) DO UPDATE SET submission_id = EXCLUDED.submission_id, phase = EXCLUDED.phase,
            status = EXCLUDED.status, doc = EXCLUDED.doc, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, sched.ID, sched.SubmissionID, sched.Phase, sched.Status, doc); err != nil {
		return fmt.Errorf("mirror schedule %s: %w", sched.ID, err)
	}
	return nil
}

// DeleteSchedule removes a mirrored schedule.
func (r *MirrorRepository) DeleteSchedule(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM schedule_mirror WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete mirrored schedule %s: %w", id, err)
	}
	return nil
}

// Wipe clears both mirror tables. Used by the process reset.
func (r *MirrorRepository) Wipe(ctx context.Context) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mirror wipe: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck
	if _, err := tx.ExecContext(ctx, "DELETE FROM schedule_mirror"); err != nil {
		return fmt.Errorf("wipe schedule mirror: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM submission_mirror"); err != nil {
		return fmt.Errorf("wipe submission mirror: %w", err)
	}
	return tx.Commit()
}

// ReplaceAll wipes the mirror tables and rewrites them from a snapshot.
// Used by the undo-reset restore.
func (r *MirrorRepository) ReplaceAll(ctx context.Context, snap models.ProcessSnapshot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mirror replace: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM schedule_mirror"); err != nil {
		return fmt.Errorf("clear schedule mirror: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM submission_mirror"); err != nil {
		return fmt.Errorf("clear submission mirror: %w", err)
	}

	for _, sub := range snap.Submissions {
		doc, err := json.Marshal(sub)
		if err != nil {
			return fmt.Errorf("marshal submission %s: %w", sub.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO submission_mirror (id, student_npm, phase, status, doc, updated_at) VALUES ($1, $2, $3, $4, $5, NOW())`,
			sub.ID, sub.StudentNPM, sub.Phase, sub.Status, doc); err != nil {
			return fmt.Errorf("restore mirrored submission %s: %w", sub.ID, err)
		}
	}
	for _, sched := range snap.Schedules {
		doc, err := json.Marshal(sched)
		if err != nil {
			return fmt.Errorf("marshal schedule %s: %w", sched.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schedule_mirror (id, submission_id, phase, status, doc, updated_at) VALUES ($1, $2, $3, $4, $5, NOW())`,
			sched.ID, sched.SubmissionID, sched.Phase, sched.Status, doc); err != nil {
			return fmt.Errorf("restore mirrored schedule %s: %w", sched.ID, err)
		}
	}

	return tx.Commit()
}
