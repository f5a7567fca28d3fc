package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/defense-portal-api/internal/models"
	"github.com/noah-isme/defense-portal-api/internal/repository"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
	"github.com/noah-isme/defense-portal-api/pkg/export"
)

// ReportService renders staff exports: the submission register as CSV and
// the defense calendar as PDF.
type ReportService struct {
	store  *repository.ProcessStore
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewReportService constructs ReportService.
func NewReportService(store *repository.ProcessStore, csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{store: store, csv: csv, pdf: pdf, logger: logger}
}

// SubmissionsCSV renders all submissions, optionally filtered by phase.
func (s *ReportService) SubmissionsCSV(ctx context.Context, phase string) ([]byte, error) {
	filter := models.SubmissionFilter{}
	if phase != "" {
		p := models.Phase(phase)
		if !p.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown phase")
		}
		filter.Phase = p
	}

	data := export.Dataset{
		Headers: []string{"NPM", "Name", "Phase", "Status", "Hardcopy", "Submitted At", "Academic Year"},
	}
	for _, sub := range s.store.ListSubmissions(filter) {
		hardcopy := "no"
		if sub.HardcopyReceived {
			hardcopy = "yes"
		}
		data.Rows = append(data.Rows, map[string]string{
			"NPM":           sub.StudentNPM,
			"Name":          sub.StudentName,
			"Phase":         string(sub.Phase),
			"Status":        string(sub.Status),
			"Hardcopy":      hardcopy,
			"Submitted At":  sub.SubmittedAt.Format("2006-01-02 15:04"),
			"Academic Year": sub.AcademicYear,
		})
	}

	out, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
	}
	return out, nil
}

// SchedulesPDF renders the defense calendar.
func (s *ReportService) SchedulesPDF(ctx context.Context) ([]byte, error) {
	data := export.Dataset{
		Headers: []string{"Date", "Time", "Room", "Student", "Phase", "Committee", "Status"},
	}
	for _, sched := range s.store.ListSchedules() {
		data.Rows = append(data.Rows, map[string]string{
			"Date":      sched.Date,
			"Time":      fmt.Sprintf("%s-%s", sched.StartTime, sched.EndTime),
			"Room":      sched.Room,
			"Student":   sched.StudentName,
			"Phase":     string(sched.Phase),
			"Committee": strings.Join(sched.Committee(), ", "),
			"Status":    string(sched.Status),
		})
	}

	out, err := s.pdf.Render(data, "Defense Schedule")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
	}
	return out, nil
}
