package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/text-answer-service/internal/auth"
	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"github.com/SAP-F-2025/text-answer-service/internal/repositories"
	"github.com/SAP-F-2025/text-answer-service/internal/validator"
	"github.com/xuri/excelize/v2"
)

// MaxExportRows caps a single queue export
const MaxExportRows = 10000

type gradingQueueService struct {
	stores      AnswerStores
	permissions auth.PermissionChecker
	validator   *validator.Validator
	logger      *slog.Logger
}

func NewGradingQueueService(stores AnswerStores, permissions auth.PermissionChecker, v *validator.Validator, logger *slog.Logger) GradingQueueService {
	return &gradingQueueService{
		stores:      stores,
		permissions: permissions,
		validator:   v,
		logger:      logger,
	}
}

func (s *gradingQueueService) ListUnscored(ctx context.Context, grader *models.UserContext, req *UnscoredRequest) (*UnscoredResponse, error) {
	store, filters, err := s.prepare(grader, req)
	if err != nil {
		return nil, err
	}

	items, err := store.ListUnscored(ctx, nil, filters)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.AnswerSummary{}
	}

	return &UnscoredResponse{
		Variant: req.Variant,
		Items:   items,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	}, nil
}

// ExportUnscored writes the queue, starting at req.Offset, to an xlsx workbook.
// Pages are fetched independently, so answers graded during the export may be
// skipped or repeated.
func (s *gradingQueueService) ExportUnscored(ctx context.Context, grader *models.UserContext, req *UnscoredRequest) ([]byte, error) {
	store, filters, err := s.prepare(grader, req)
	if err != nil {
		return nil, err
	}
	filters.Limit = repositories.MaxUnscoredLimit

	var rows []*models.AnswerSummary
	for len(rows) < MaxExportRows {
		page, err := store.ListUnscored(ctx, nil, filters)
		if err != nil {
			return nil, err
		}
		rows = append(rows, page...)
		if len(page) < filters.Limit {
			break
		}
		filters.Offset += len(page)
	}
	if len(rows) > MaxExportRows {
		rows = rows[:MaxExportRows]
	}

	f := excelize.NewFile()
	defer f.Close()
	sheetName := "Unscored"

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []string{"Answer ID", "Result ID", "Question ID", "Revision ID", "Question", "User", "Submitted At"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, item := range rows {
		values := []interface{}{
			item.AnswerID,
			item.ResultID,
			item.QuestionQID,
			item.QuestionVID,
			item.QuestionTitle,
			item.UserID,
			item.SubmittedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		for colIndex, value := range values {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.InfoContext(ctx, "Exported grading queue",
		"variant", req.Variant,
		"rows", len(rows),
		"grader", userIDOf(grader))
	return buf.Bytes(), nil
}

func (s *gradingQueueService) prepare(grader *models.UserContext, req *UnscoredRequest) (repositories.AnswerRepository, repositories.UnscoredFilters, error) {
	scope, ok := s.permissions.ScopeFilterForGrader(grader)
	if !ok {
		return nil, repositories.UnscoredFilters{}, NewPermissionError(userIDOf(grader), 0, "grading_queue", "view", ErrGradingPermissionDenied)
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, repositories.UnscoredFilters{}, err
	}

	store, err := s.stores.For(req.Variant)
	if err != nil {
		return nil, repositories.UnscoredFilters{}, fieldError(&ValidationError{
			Field:   "variant",
			Message: "must be long_answer or short_answer",
			Value:   req.Variant,
			Rule:    "answer_variant",
		})
	}

	filters := repositories.UnscoredFilters{
		QuestionQID: req.QuestionID,
		QuestionVID: req.RevisionID,
		Scope:       scope,
		Limit:       req.Limit,
		Offset:      req.Offset,
	}
	return store, filters.Normalize(), nil
}
