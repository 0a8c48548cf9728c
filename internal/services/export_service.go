package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
	"github.com/SAP-F-2025/logic-quiz-service/internal/repositories"
)

const (
	resultsSheet = "Results"
	answersSheet = "Answers"
	exportPage   = 100
)

var (
	resultsHeader = []interface{}{"Result ID", "User ID", "Full name", "Email", "Level", "Score", "Total questions", "Percentage", "Color level", "Completed at"}
	answersHeader = []interface{}{"Result ID", "User ID", "Level", "Question ID", "Question type", "Question (ru)", "Question (kg)", "Given answer", "Correct answer", "Is correct"}
)

type exportService struct {
	results ResultService
	logger  *slog.Logger
}

func NewExportService(results ResultService, logger *slog.Logger) ExportService {
	return &exportService{
		results: results,
		logger:  logger,
	}
}

// ExportResults renders every result matching filters into an xlsx workbook
func (s *exportService) ExportResults(ctx context.Context, filters repositories.ResultFilters) ([]byte, error) {
	results, err := s.collect(ctx, filters)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return nil, fmt.Errorf("failed to name results sheet: %w", err)
	}
	if _, err := f.NewSheet(answersSheet); err != nil {
		return nil, fmt.Errorf("failed to create answers sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRow(f, resultsSheet, 1, resultsHeader); err != nil {
		return nil, err
	}
	if err := writeRow(f, answersSheet, 1, answersHeader); err != nil {
		return nil, err
	}
	for _, sheet := range []string{resultsSheet, answersSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to style header: %w", err)
		}
	}

	answerRow := 2
	for i, r := range results {
		if err := writeRow(f, resultsSheet, i+2, resultRow(r)); err != nil {
			return nil, err
		}
		for _, entry := range r.Answers {
			if err := writeRow(f, answersSheet, answerRow, trailRow(r, entry)); err != nil {
				return nil, err
			}
			answerRow++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("Results exported", "results", len(results), "answers", answerRow-2)
	return buf.Bytes(), nil
}

func (s *exportService) collect(ctx context.Context, filters repositories.ResultFilters) ([]*models.Result, error) {
	filters.Limit = exportPage
	filters.Offset = 0

	var all []*models.Result
	for {
		page, err := s.results.ListAll(ctx, filters)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Results...)
		if len(page.Results) < exportPage || int64(len(all)) >= page.Total {
			return all, nil
		}
		filters.Offset += exportPage
	}
}

func resultRow(r *models.Result) []interface{} {
	var fullName, email string
	if r.User != nil {
		fullName = r.User.FullName
		email = r.User.Email
	}
	return []interface{}{
		r.ID,
		r.UserID,
		fullName,
		email,
		string(r.Level),
		r.Score,
		r.TotalQuestions,
		r.Percentage,
		string(r.ColorLevel),
		r.CompletedAt.UTC().Format(time.RFC3339),
	}
}

func trailRow(r *models.Result, entry models.AnswerTrailEntry) []interface{} {
	return []interface{}{
		r.ID,
		r.UserID,
		string(r.Level),
		entry.QuestionID,
		string(entry.QuestionType),
		entry.QuestionTextRu,
		entry.QuestionTextKg,
		entry.GivenAnswer,
		entry.CorrectAnswer,
		entry.IsCorrect,
	}
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
