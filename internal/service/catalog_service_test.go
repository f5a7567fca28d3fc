package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/defense-portal-api/internal/models"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
)

func TestCatalogSeedsFacultyDefaults(t *testing.T) {
	svc := NewCatalogService(nil)

	proposal, err := svc.List(models.PhaseProposal, models.StageRegistration)
	require.NoError(t, err)
	assert.Len(t, proposal, 8)
	assert.Equal(t, "sk_pembimbing", proposal[0].ID)

	skripsi, err := svc.List(models.PhaseSkripsi, models.StageRegistration)
	require.NoError(t, err)
	assert.Len(t, skripsi, 14)

	revision, err := svc.List(models.PhaseProposal, models.StageRevision)
	require.NoError(t, err)
	assert.Len(t, revision, 3)
}

func TestCatalogListRejectsUnknownPhase(t *testing.T) {
	svc := NewCatalogService(nil)

	_, err := svc.List("doctorate", models.StageRegistration)
	require.Error(t, err)
	_, err = svc.List(models.PhaseProposal, "grading")
	require.Error(t, err)
}

func TestCatalogUpsertReplacesById(t *testing.T) {
	svc := NewCatalogService(nil)

	err := svc.Upsert(models.PhaseProposal, models.StageRegistration, models.Requirement{
		ID: "turnitin", Label: "Plagiarism Check (Max 25%)", Required: true,
	})
	require.NoError(t, err)

	list, err := svc.List(models.PhaseProposal, models.StageRegistration)
	require.NoError(t, err)
	assert.Len(t, list, 8, "replacement keeps the list size")
	for _, r := range list {
		if r.ID == "turnitin" {
			assert.Equal(t, "Plagiarism Check (Max 25%)", r.Label)
		}
	}
}

func TestCatalogUpsertAppendsNewEntry(t *testing.T) {
	svc := NewCatalogService(nil)

	err := svc.Upsert(models.PhaseProposal, models.StageRegistration, models.Requirement{
		ID: "cv", Label: "Curriculum Vitae",
	})
	require.NoError(t, err)

	list, err := svc.List(models.PhaseProposal, models.StageRegistration)
	require.NoError(t, err)
	require.Len(t, list, 9)
	assert.Equal(t, "cv", list[8].ID, "new entries append at the end")
}

func TestCatalogUpsertValidatesInput(t *testing.T) {
	svc := NewCatalogService(nil)

	err := svc.Upsert(models.PhaseProposal, models.StageRegistration, models.Requirement{Label: "No ID"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCatalogRemove(t *testing.T) {
	svc := NewCatalogService(nil)

	require.NoError(t, svc.Remove(models.PhaseProposal, models.StageRegistration, "payment"))
	list, err := svc.List(models.PhaseProposal, models.StageRegistration)
	require.NoError(t, err)
	assert.Len(t, list, 7)

	err = svc.Remove(models.PhaseProposal, models.StageRegistration, "payment")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCatalogListReturnsCopy(t *testing.T) {
	svc := NewCatalogService(nil)

	list, err := svc.List(models.PhaseProposal, models.StageRegistration)
	require.NoError(t, err)
	list[0].Label = "mutated"

	fresh, err := svc.List(models.PhaseProposal, models.StageRegistration)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", fresh[0].Label)
}
