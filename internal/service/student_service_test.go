package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/defense-portal-api/internal/dto"
	"github.com/noah-isme/defense-portal-api/internal/models"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
)

type mockStudentRepo struct {
	students map[string]models.Student
	updates  []string
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, len(m.students), nil
}

func (m *mockStudentRepo) All(ctx context.Context) ([]models.Student, error) {
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockStudentRepo) FindByNPM(ctx context.Context, npm string) (*models.Student, error) {
	if s, ok := m.students[npm]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) SearchByName(ctx context.Context, prefix string) ([]models.Student, error) {
	var out []models.Student
	for _, s := range m.students {
		if strings.HasPrefix(strings.ToLower(s.Name), strings.ToLower(prefix)) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStudentRepo) Upsert(ctx context.Context, student *models.Student) error {
	if m.students == nil {
		m.students = make(map[string]models.Student)
	}
	m.students[student.NPM] = *student
	return nil
}

func (m *mockStudentRepo) UpdateByNPM(ctx context.Context, currentNPM string, student *models.Student) error {
	if _, ok := m.students[currentNPM]; !ok {
		return sql.ErrNoRows
	}
	delete(m.students, currentNPM)
	m.students[student.NPM] = *student
	m.updates = append(m.updates, currentNPM)
	return nil
}

func (m *mockStudentRepo) BulkDelete(ctx context.Context, npms []string) ([]models.Student, error) {
	var deleted []models.Student
	for _, npm := range npms {
		if s, ok := m.students[npm]; ok {
			deleted = append(deleted, s)
			delete(m.students, npm)
		}
	}
	return deleted, nil
}

func (m *mockStudentRepo) InsertMissing(ctx context.Context, students []models.Student) (int, error) {
	added := 0
	for _, s := range students {
		if _, ok := m.students[s.NPM]; ok {
			continue
		}
		if m.students == nil {
			m.students = make(map[string]models.Student)
		}
		m.students[s.NPM] = s
		added++
	}
	return added, nil
}

func TestStudentFindNotFound(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, nil, nil, nil)

	_, err := svc.Find(context.Background(), "9999999")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestImportMatchesByNameBeforeNPM(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"2011001": {NPM: "2011001", Name: "Budi Santoso", StudyProgram: "Informatika"},
	}}
	svc := NewStudentService(repo, nil, nil, nil)

	// Same student under a corrected NPM; names differ only in case and
	// punctuation.
	csv := "Nama,NPM,Prodi\nBUDI SANTOSO,2011099,Informatika\n"
	result, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, dto.ImportStudentsResult{Updated: 1}, result)
	assert.Equal(t, []string{"2011001"}, repo.updates, "update is keyed by the old NPM")

	_, ok := repo.students["2011099"]
	assert.True(t, ok)
	_, ok = repo.students["2011001"]
	assert.False(t, ok)
}

func TestImportFallsBackToNPMThenInserts(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"2011001": {NPM: "2011001", Name: "Budi Santoso"},
	}}
	svc := NewStudentService(repo, nil, nil, nil)

	csv := "Nama,NPM\nB. Santoso Jr,2011001\nSiti Rahma,2011002\n"
	result, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Added)

	assert.Equal(t, "B. Santoso Jr", repo.students["2011001"].Name)
	assert.Equal(t, "Siti Rahma", repo.students["2011002"].Name)
}

func TestImportHeaderAliases(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, nil, nil)

	csv := "NIM,Nama,Jurusan,Judul Skripsi,P1,U1\n2011003,Andi Wijaya,Sistem Informasi,Sistem Pakar,Dr. Ahmad,Dr. Rina\n"
	result, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)

	st := repo.students["2011003"]
	assert.Equal(t, "Andi Wijaya", st.Name)
	assert.Equal(t, "Sistem Informasi", st.StudyProgram)
	assert.Equal(t, "Sistem Pakar", st.ThesisTitle)
	assert.Equal(t, "Dr. Ahmad", st.Advisor1)
	assert.Equal(t, "Dr. Rina", st.Examiner1)
}

func TestImportRejectsUnknownHeader(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, nil, nil, nil)

	_, err := svc.Import(context.Background(), strings.NewReader("foo,bar\n1,2\n"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestImportSkipsEmptyRows(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, nil, nil, nil)

	result, err := svc.Import(context.Background(), strings.NewReader("Nama,NPM\n,\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
}

func TestBulkDeleteStashesForUndo(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"2011001": {NPM: "2011001", Name: "Budi Santoso"},
		"2011002": {NPM: "2011002", Name: "Siti Rahma"},
	}}
	stash := NewSnapshotService(nil, nil, nil, nil, nil)
	svc := NewStudentService(repo, stash, nil, nil)

	count, err := svc.BulkDelete(context.Background(), dto.BulkDeleteStudentsRequest{NPMs: []string{"2011001", "2011002"}})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Empty(t, repo.students)

	// One student was re-created manually before the undo; the restore must
	// not overwrite the newer record.
	require.NoError(t, repo.Upsert(context.Background(), &models.Student{NPM: "2011001", Name: "Budi S. (baru)"}))

	result, err := svc.UndoDelete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Restored)
	assert.Equal(t, "Budi S. (baru)", repo.students["2011001"].Name)
	assert.Equal(t, "Siti Rahma", repo.students["2011002"].Name)
}

func TestUndoDeleteWithoutStash(t *testing.T) {
	stash := NewSnapshotService(nil, nil, nil, nil, nil)
	svc := NewStudentService(&mockStudentRepo{}, stash, nil, nil)

	_, err := svc.UndoDelete(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, normalizeName("M. Rizki"), normalizeName("m rizki"))
	assert.Equal(t, "budisantoso", normalizeName("BUDI SANTOSO"))
	assert.NotEqual(t, normalizeName("Budi"), normalizeName("Budi2"))
}
