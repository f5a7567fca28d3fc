package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/defense-portal-api/internal/models"
	"github.com/noah-isme/defense-portal-api/pkg/config"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
	"github.com/noah-isme/defense-portal-api/pkg/storage"
)

// UploadService stores submitted documents on the file storage collaborator
// and hands back records with a signed download URL. A storage failure is
// surfaced to the caller; no workflow state is touched here.
type UploadService struct {
	storage *storage.LocalStorage
	signer  *storage.SignedURLSigner
	cfg     config.UploadsConfig
	logger  *zap.Logger
	clock   Clock
}

// NewUploadService constructs UploadService.
func NewUploadService(store *storage.LocalStorage, signer *storage.SignedURLSigner, cfg config.UploadsConfig, logger *zap.Logger, clock Clock) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &UploadService{storage: store, signer: signer, cfg: cfg, logger: logger, clock: clock}
}

// Store writes the uploaded document and returns its file record.
func (s *UploadService) Store(ctx context.Context, fileName, mimeType string, size int64, r io.Reader) (models.FileRecord, error) {
	if size > s.cfg.MaxFileSizeBytes {
		return models.FileRecord{}, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("file exceeds the %d byte limit", s.cfg.MaxFileSizeBytes))
	}
	if !s.mimeAllowed(mimeType) {
		return models.FileRecord{}, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("file type %s is not accepted", mimeType))
	}

	fileID := uuid.NewString()
	relPath := filepath.Join(s.clock.Now().UTC().Format("2006/01"), fileID+sanitizeExt(fileName))

	stored, err := s.storage.SaveStream(relPath, io.LimitReader(r, s.cfg.MaxFileSizeBytes))
	if err != nil {
		s.logger.Error("document storage failed", zap.String("file", fileName), zap.Error(err))
		return models.FileRecord{}, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	}

	record := models.FileRecord{
		ID:       fileID,
		FileName: fileName,
		Path:     stored,
		MimeType: mimeType,
	}
	if token, _, err := s.signer.Generate(fileID, stored); err == nil {
		record.URL = "/api/v1/uploads/" + token
	} else {
		s.logger.Warn("failed to sign download url", zap.String("file_id", fileID), zap.Error(err))
	}

	s.logger.Info("document stored",
		zap.String("file_id", fileID),
		zap.String("file", fileName),
		zap.Int64("size", size))
	return record, nil
}

// Resolve validates a signed download token and returns the absolute path of
// the stored document.
func (s *UploadService) Resolve(token string) (string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download link")
	}
	return s.storage.Path(relPath), nil
}

func (s *UploadService) mimeAllowed(mimeType string) bool {
	if len(s.cfg.AllowedMIMEs) == 0 {
		return true
	}
	for _, allowed := range s.cfg.AllowedMIMEs {
		if strings.EqualFold(allowed, mimeType) {
			return true
		}
	}
	return false
}

// sanitizeExt keeps the original extension but never path fragments.
func sanitizeExt(fileName string) string {
	ext := filepath.Ext(filepath.Base(fileName))
	if len(ext) > 10 {
		return ""
	}
	return strings.ToLower(ext)
}
