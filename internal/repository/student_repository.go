package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/defense-portal-api/internal/models"
)

// StudentRepository manages the student master directory.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the filter with a total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(npm) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT npm, name, study_program, thesis_title, advisor1, advisor2, examiner1, examiner2
        FROM students WHERE %s ORDER BY name ASC LIMIT %d OFFSET %d`, where, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// All returns the whole directory. The master data is small (one faculty),
// so imports match against it in memory.
func (r *StudentRepository) All(ctx context.Context) ([]models.Student, error) {
	query := `SELECT npm, name, study_program, thesis_title, advisor1, advisor2, examiner1, examiner2
        FROM students ORDER BY name ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("load students: %w", err)
	}
	return students, nil
}

// FindByNPM fetches a single student.
func (r *StudentRepository) FindByNPM(ctx context.Context, npm string) (*models.Student, error) {
	query := `SELECT npm, name, study_program, thesis_title, advisor1, advisor2, examiner1, examiner2
        FROM students WHERE npm = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, npm); err != nil {
		return nil, err
	}
	return &student, nil
}

// SearchByName returns students whose name starts with the given prefix.
func (r *StudentRepository) SearchByName(ctx context.Context, prefix string) ([]models.Student, error) {
	query := `SELECT npm, name, study_program, thesis_title, advisor1, advisor2, examiner1, examiner2
        FROM students WHERE LOWER(name) LIKE $1 ORDER BY name ASC LIMIT 50`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, strings.ToLower(prefix)+"%"); err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	return students, nil
}

// Upsert inserts or updates a student keyed by NPM.
func (r *StudentRepository) Upsert(ctx context.Context, student *models.Student) error {
	query := `INSERT INTO students (npm, name, study_program, thesis_title, advisor1, advisor2, examiner1, examiner2)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (npm) DO UPDATE SET name = EXCLUDED.name, study_program = EXCLUDED.study_program,
            thesis_title = EXCLUDED.thesis_title, advisor1 = EXCLUDED.advisor1, advisor2 = EXCLUDED.advisor2,
            examiner1 = EXCLUDED.examiner1, examiner2 = EXCLUDED.examiner2`
	if _, err := r.db.ExecContext(ctx, query,
		student.NPM, student.Name, student.StudyProgram, student.ThesisTitle,
		student.Advisor1, student.Advisor2, student.Examiner1, student.Examiner2); err != nil {
		return fmt.Errorf("upsert student %s: %w", student.NPM, err)
	}
	return nil
}

// UpdateByNPM rewrites the row currently keyed by currentNPM. The new record
// may carry a different NPM, which covers imports that correct a student id.
func (r *StudentRepository) UpdateByNPM(ctx context.Context, currentNPM string, student *models.Student) error {
	query := `UPDATE students SET npm = $1, name = $2, study_program = $3, thesis_title = $4,
            advisor1 = $5, advisor2 = $6, examiner1 = $7, examiner2 = $8
        WHERE npm = $9`
	res, err := r.db.ExecContext(ctx, query,
		student.NPM, student.Name, student.StudyProgram, student.ThesisTitle,
		student.Advisor1, student.Advisor2, student.Examiner1, student.Examiner2, currentNPM)
	if err != nil {
		return fmt.Errorf("update student %s: %w", currentNPM, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ExistsByNPM reports whether a student exists.
func (r *StudentRepository) ExistsByNPM(ctx context.Context, npm string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM students WHERE npm = $1 LIMIT 1", npm); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check npm: %w", err)
	}
	return true, nil
}

// BulkDelete removes the given students and returns the deleted rows so the
// caller can stash them for undo.
func (r *StudentRepository) BulkDelete(ctx context.Context, npms []string) ([]models.Student, error) {
	if len(npms) == 0 {
		return nil, nil
	}
	query := `DELETE FROM students WHERE npm = ANY($1)
        RETURNING npm, name, study_program, thesis_title, advisor1, advisor2, examiner1, examiner2`
	var deleted []models.Student
	if err := r.db.SelectContext(ctx, &deleted, query, pq.Array(npms)); err != nil {
		return nil, fmt.Errorf("bulk delete students: %w", err)
	}
	return deleted, nil
}

// InsertMissing re-inserts only students whose NPM is currently absent and
// returns how many were added. Records re-created independently since the
// delete are left untouched.
func (r *StudentRepository) InsertMissing(ctx context.Context, students []models.Student) (int, error) {
	added := 0
	query := `INSERT INTO students (npm, name, study_program, thesis_title, advisor1, advisor2, examiner1, examiner2)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (npm) DO NOTHING`
	for i := range students {
		st := &students[i]
		res, err := r.db.ExecContext(ctx, query,
			st.NPM, st.Name, st.StudyProgram, st.ThesisTitle,
			st.Advisor1, st.Advisor2, st.Examiner1, st.Examiner2)
		if err != nil {
			return added, fmt.Errorf("restore student %s: %w", st.NPM, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}
	return added, nil
}
