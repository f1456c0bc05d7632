package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/uniplan/timetable-api/internal/dto"
	"github.com/uniplan/timetable-api/internal/models"
	"github.com/uniplan/timetable-api/pkg/export"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type scheduleLister interface {
	List(ctx context.Context, query dto.ScheduleQuery) ([]models.LessonDetail, bool, error)
}

// ExportResult is a rendered schedule file ready to stream to the client.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders the composed schedule as CSV or PDF.
type ExportService struct {
	schedule scheduleLister
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(schedule scheduleLister, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{schedule: schedule, csv: csv, pdf: pdf, logger: logger}
}

// Export renders the schedule selected by the query in the requested format.
// CSV is the default.
func (s *ExportService) Export(ctx context.Context, query dto.ExportScheduleQuery) (*ExportResult, error) {
	lessons, _, err := s.schedule.List(ctx, query.ScheduleQuery)
	if err != nil {
		return nil, err
	}

	dataset := buildScheduleDataset(lessons)

	format := strings.ToLower(query.Format)
	if format == "" {
		format = "csv"
	}

	switch format {
	case "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Filename: "schedule.csv", ContentType: "text/csv", Payload: payload}, nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Weekly Schedule")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Filename: "schedule.pdf", ContentType: "application/pdf", Payload: payload}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", query.Format))
	}
}

func buildScheduleDataset(lessons []models.LessonDetail) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Day", "Start", "End", "Subject", "Group", "Teacher", "Audience"},
	}
	for _, lesson := range lessons {
		teacher := strings.TrimSpace(lesson.Teacher.LastName + " " + lesson.Teacher.FirstName)
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Day":      lesson.StartAt.Format("Monday"),
			"Start":    lesson.StartAt.Format("15:04"),
			"End":      lesson.EndAt.Format("15:04"),
			"Subject":  lesson.Subject.Name,
			"Group":    lesson.Group.Name,
			"Teacher":  teacher,
			"Audience": lesson.Audience.Name,
		})
	}
	return dataset
}
