package service

import (
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/defense-portal-api/internal/models"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
)

type catalogKey struct {
	Phase models.Phase
	Stage models.CatalogStage
}

// CatalogService keeps the editable per-phase requirement lists. Lists are
// seeded with the faculty defaults and mutated in place by staff; workflow
// recomputation always reads the live list.
type CatalogService struct {
	mu    sync.RWMutex
	lists map[catalogKey][]models.Requirement

	logger *zap.Logger
}

// NewCatalogService builds a catalog pre-seeded with the default lists.
func NewCatalogService(logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CatalogService{
		lists:  make(map[catalogKey][]models.Requirement),
		logger: logger,
	}
	s.lists[catalogKey{models.PhaseProposal, models.StageRegistration}] = defaultProposalRequirements()
	s.lists[catalogKey{models.PhaseSkripsi, models.StageRegistration}] = defaultSkripsiRequirements()
	s.lists[catalogKey{models.PhaseProposal, models.StageRevision}] = defaultProposalRevisionRequirements()
	s.lists[catalogKey{models.PhaseSkripsi, models.StageRevision}] = defaultSkripsiRevisionRequirements()
	return s
}

// List returns a copy of the requirement list for the phase and stage, in
// insertion order.
func (s *CatalogService) List(phase models.Phase, stage models.CatalogStage) ([]models.Requirement, error) {
	if !phase.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown phase")
	}
	if !stage.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown catalog stage")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.lists[catalogKey{phase, stage}]
	out := make([]models.Requirement, len(list))
	copy(out, list)
	return out, nil
}

// Upsert replaces the requirement with the same id, or appends it.
func (s *CatalogService) Upsert(phase models.Phase, stage models.CatalogStage, req models.Requirement) error {
	if !phase.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown phase")
	}
	if !stage.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown catalog stage")
	}
	if req.ID == "" || req.Label == "" {
		return appErrors.Clone(appErrors.ErrValidation, "requirement id and label are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := catalogKey{phase, stage}
	list := s.lists[key]
	for i := range list {
		if list[i].ID == req.ID {
			list[i] = req
			s.lists[key] = list
			s.logger.Info("requirement updated",
				zap.String("phase", string(phase)),
				zap.String("stage", string(stage)),
				zap.String("requirement_id", req.ID))
			return nil
		}
	}
	s.lists[key] = append(list, req)
	s.logger.Info("requirement added",
		zap.String("phase", string(phase)),
		zap.String("stage", string(stage)),
		zap.String("requirement_id", req.ID))
	return nil
}

// Remove deletes the requirement with the given id.
func (s *CatalogService) Remove(phase models.Phase, stage models.CatalogStage, id string) error {
	if !phase.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown phase")
	}
	if !stage.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown catalog stage")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := catalogKey{phase, stage}
	list := s.lists[key]
	for i := range list {
		if list[i].ID == id {
			s.lists[key] = append(list[:i:i], list[i+1:]...)
			s.logger.Info("requirement removed",
				zap.String("phase", string(phase)),
				zap.String("stage", string(stage)),
				zap.String("requirement_id", id))
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "requirement not found")
}

func defaultProposalRequirements() []models.Requirement {
	return []models.Requirement{
		{ID: "sk_pembimbing", Label: "Upload SK Pembimbing", Required: true, Description: "Surat Keputusan penetapan dosen pembimbing."},
		{ID: "draft_proposal", Label: "Draft Proposal", Required: true, AcceptedTypes: ".pdf,.doc,.docx"},
		{ID: "turnitin", Label: "Hasil Cek Plagiat", Required: true, Description: "Maksimal 30%, dicek menggunakan TURNITIN."},
		{ID: "logbook", Label: "Bukti Logbook Konsultasi", Required: true, Description: "Min. 4x bimbingan masing-masing pembimbing 1 & 2."},
		{ID: "seminar_proof", Label: "Bukti Mengikuti Seminar", Required: true, Description: "Bukti sudah mengikuti minimal 2x seminar."},
		{ID: "opponent_proof", Label: "Bukti Sebagai Penyanggah", Required: true},
		{ID: "references", Label: "Jurnal Referensi", Required: true, Description: "Jurnal utama yang digunakan dalam proposal."},
		{ID: "payment", Label: "Bukti Lunas Pembayaran", Required: true},
	}
}

func defaultSkripsiRequirements() []models.Requirement {
	return []models.Requirement{
		{ID: "draft_skripsi", Label: "Draft Skripsi", Required: true, AcceptedTypes: ".pdf,.doc,.docx"},
		{ID: "sk_pembimbing", Label: "Upload SK Pembimbing", Required: true},
		{ID: "sk_penguji", Label: "Upload SK Penguji", Required: true},
		{ID: "logbook_bimbingan", Label: "Logbook Bimbingan", Required: true, Description: "4x Pembimbing 1 dan 4x Pembimbing 2."},
		{ID: "logbook_penelitian", Label: "Logbook Pelaksanaan Penelitian", Required: true},
		{ID: "transkrip", Label: "Transkrip Sementara", Required: true},
		{ID: "izin_penelitian", Label: "Surat Ijin Penelitian", Required: true},
		{ID: "balasan_penelitian", Label: "Surat Balasan Penelitian", Required: true, Description: "Dari instansi/tempat sampel/lab."},
		{ID: "bebas_admin", Label: "Keterangan Bebas Administrasi", Required: true, Description: "Akademik, Keuangan, dan Laboratorium."},
		{ID: "payment_seminar", Label: "Bukti Lunas Pembayaran Seminar", Required: true},
		{ID: "cert_ospek", Label: "Scan Sertifikat OSPEK", Required: true},
		{ID: "cert_toefl", Label: "Scan Sertifikat TOEFL", Required: true},
		{ID: "cert_esq", Label: "Scan Sertifikat ESQ", Required: true},
		{ID: "turnitin_final", Label: "Hasil Cek Plagiat Final", Required: true, Description: "Maksimal 30%."},
	}
}

func defaultProposalRevisionRequirements() []models.Requirement {
	return []models.Requirement{
		{ID: "ppt_sempro", Label: "File Presentasi (PPT)", Required: true, AcceptedTypes: ".ppt,.pptx,.pdf", Description: "Materi presentasi saat seminar."},
		{ID: "lembar_pengesahan", Label: "Scan Lembar Pengesahan", Required: true, AcceptedTypes: ".pdf,.jpg", Description: "Yang telah ditandatangani pembimbing & penguji."},
		{ID: "abstrak", Label: "File Abstrak", Required: true, AcceptedTypes: ".doc,.docx,.pdf", Description: "Abstrak hasil perbaikan."},
	}
}

func defaultSkripsiRevisionRequirements() []models.Requirement {
	return []models.Requirement{
		{ID: "ppt_sidang", Label: "File Presentasi (PPT) Sidang", Required: true, AcceptedTypes: ".ppt,.pptx,.pdf"},
		{ID: "lembar_pengesahan_skripsi", Label: "Scan Lembar Pengesahan Skripsi", Required: true, AcceptedTypes: ".pdf,.jpg", Description: "Full tanda tangan basah/digital."},
		{ID: "abstrak_final", Label: "File Abstrak Final", Required: true, AcceptedTypes: ".doc,.docx,.pdf"},
	}
}
