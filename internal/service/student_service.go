package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/defense-portal-api/internal/dto"
	"github.com/noah-isme/defense-portal-api/internal/models"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
)

type studentRepo interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	All(ctx context.Context) ([]models.Student, error)
	FindByNPM(ctx context.Context, npm string) (*models.Student, error)
	SearchByName(ctx context.Context, prefix string) ([]models.Student, error)
	Upsert(ctx context.Context, student *models.Student) error
	UpdateByNPM(ctx context.Context, currentNPM string, student *models.Student) error
	BulkDelete(ctx context.Context, npms []string) ([]models.Student, error)
	InsertMissing(ctx context.Context, students []models.Student) (int, error)
}

type deletedStudentStash interface {
	StashDeletedStudents(students []models.Student)
	TakeStudentStash() []models.Student
}

// StudentService manages the student master directory: lookups used by the
// registration flow and the staff-facing import, delete and undo actions.
type StudentService struct {
	repo      studentRepo
	stash     deletedStudentStash
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(repo studentRepo, stash deletedStudentStash, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, stash: stash, validator: validate, logger: logger}
}

// List returns a page of the directory.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Find fetches a single student by NPM.
func (s *StudentService) Find(ctx context.Context, npm string) (*models.Student, error) {
	student, err := s.repo.FindByNPM(ctx, strings.TrimSpace(npm))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	return student, nil
}

// Search returns students whose name starts with the given prefix.
func (s *StudentService) Search(ctx context.Context, prefix string) ([]models.Student, error) {
	students, err := s.repo.SearchByName(ctx, strings.TrimSpace(prefix))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search students")
	}
	return students, nil
}

// Upsert creates or updates a single directory record.
func (s *StudentService) Upsert(ctx context.Context, student models.Student) error {
	student.NPM = strings.TrimSpace(student.NPM)
	student.Name = strings.TrimSpace(student.Name)
	if student.NPM == "" || student.Name == "" {
		return appErrors.Clone(appErrors.ErrValidation, "npm and name are required")
	}
	if err := s.repo.Upsert(ctx, &student); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student")
	}
	return nil
}

// Import merges a CSV export of the faculty master list into the directory.
// Rows are matched by normalized name first so an import can correct a wrong
// NPM, then by NPM. Unmatched rows are inserted.
func (s *StudentService) Import(ctx context.Context, r io.Reader) (dto.ImportStudentsResult, error) {
	rows, err := parseStudentCSV(r)
	if err != nil {
		return dto.ImportStudentsResult{}, err
	}

	existing, err := s.repo.All(ctx)
	if err != nil {
		return dto.ImportStudentsResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load directory")
	}

	byName := make(map[string]*models.Student, len(existing))
	byNPM := make(map[string]*models.Student, len(existing))
	for i := range existing {
		byName[normalizeName(existing[i].Name)] = &existing[i]
		byNPM[strings.ToLower(existing[i].NPM)] = &existing[i]
	}

	var result dto.ImportStudentsResult
	for _, row := range rows {
		if row.NPM == "" && row.Name == "" {
			result.Skipped++
			continue
		}

		var match *models.Student
		if row.Name != "" {
			match = byName[normalizeName(row.Name)]
		}
		if match == nil && row.NPM != "" {
			match = byNPM[strings.ToLower(row.NPM)]
		}

		if match != nil {
			record := row
			if err := s.repo.UpdateByNPM(ctx, match.NPM, &record); err != nil {
				s.logger.Warn("student import update failed", zap.String("npm", match.NPM), zap.Error(err))
				result.Skipped++
				continue
			}
			match.NPM = record.NPM
			result.Updated++
			continue
		}

		record := row
		if err := s.repo.Upsert(ctx, &record); err != nil {
			s.logger.Warn("student import insert failed", zap.String("npm", record.NPM), zap.Error(err))
			result.Skipped++
			continue
		}
		result.Added++
	}

	s.logger.Info("student master imported",
		zap.Int("added", result.Added),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// BulkDelete removes students and stashes the deleted rows for undo.
func (s *StudentService) BulkDelete(ctx context.Context, req dto.BulkDeleteStudentsRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "at least one npm is required")
	}

	deleted, err := s.repo.BulkDelete(ctx, req.NPMs)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete students")
	}
	if s.stash != nil && len(deleted) > 0 {
		s.stash.StashDeletedStudents(deleted)
	}
	s.logger.Warn("students bulk deleted", zap.Int("count", len(deleted)))
	return len(deleted), nil
}

// UndoDelete re-inserts the stashed records whose NPM is currently absent.
// Students re-created since the delete keep their newer data.
func (s *StudentService) UndoDelete(ctx context.Context) (dto.UndoDeleteResult, error) {
	if s.stash == nil {
		return dto.UndoDeleteResult{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "no deletion to undo")
	}
	stashed := s.stash.TakeStudentStash()
	if len(stashed) == 0 {
		return dto.UndoDeleteResult{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "no deletion to undo")
	}

	restored, err := s.repo.InsertMissing(ctx, stashed)
	if err != nil {
		return dto.UndoDeleteResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore students")
	}
	s.logger.Info("deleted students restored", zap.Int("restored", restored))
	return dto.UndoDeleteResult{Restored: restored}, nil
}

// normalizeName lowercases and strips everything but letters and digits so
// "M. Rizki" and "m rizki" compare equal.
func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var csvHeaderAliases = map[string]string{
	"nama":         "name",
	"name":         "name",
	"npm":          "npm",
	"nim":          "npm",
	"prodi":        "study_program",
	"jurusan":      "study_program",
	"judul":        "thesis_title",
	"judulskripsi": "thesis_title",
	"pembimbing1":  "advisor1",
	"p1":           "advisor1",
	"pembimbing2":  "advisor2",
	"p2":           "advisor2",
	"penguji1":     "examiner1",
	"u1":           "examiner1",
	"penguji2":     "examiner2",
	"u2":           "examiner2",
}

func parseStudentCSV(r io.Reader) ([]models.Student, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "empty or unreadable csv")
	}
	fields := make(map[int]string, len(header))
	for i, col := range header {
		if field, ok := csvHeaderAliases[normalizeName(col)]; ok {
			fields[i] = field
		}
	}
	if len(fields) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "csv header has no recognized columns")
	}

	var out []models.Student
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "malformed csv row")
		}

		var st models.Student
		for i, value := range record {
			value = strings.TrimSpace(value)
			switch fields[i] {
			case "name":
				st.Name = value
			case "npm":
				st.NPM = value
			case "study_program":
				st.StudyProgram = value
			case "thesis_title":
				st.ThesisTitle = value
			case "advisor1":
				st.Advisor1 = value
			case "advisor2":
				st.Advisor2 = value
			case "examiner1":
				st.Examiner1 = value
			case "examiner2":
				st.Examiner2 = value
			}
		}
		out = append(out, st)
	}
	return out, nil
}
