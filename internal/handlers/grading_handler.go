package handlers

import (
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"github.com/SAP-F-2025/text-answer-service/internal/services"
	"github.com/SAP-F-2025/text-answer-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type GradingHandler struct {
	BaseHandler
	evaluator services.ResponseEvaluator
	queue     services.GradingQueueService
}

// GradeAnswerBody is the payload of a manual grade; ids come from the route
type GradeAnswerBody struct {
	Score          *float64 `json:"score"`
	Feedback       string   `json:"feedback"`
	FeedbackFormat string   `json:"feedback_format"`
}

func NewGradingHandler(
	evaluator services.ResponseEvaluator,
	queue services.GradingQueueService,
	logger utils.Logger,
) *GradingHandler {
	return &GradingHandler{
		BaseHandler: NewBaseHandler(logger),
		evaluator:   evaluator,
		queue:       queue,
	}
}

// GradeAnswer records a grader's score and feedback for one answer
// @Summary Grade answer
// @Tags grading
// @Accept json
// @Produce json
// @Success 200 {object} services.GradeAnswerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /grading/questions/{question_id}/revisions/{revision_id}/results/{result_id} [post]
func (h *GradingHandler) GradeAnswer(c *gin.Context) {
	key, ok := parseAnswerKey(c)
	if !ok {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var body GradeAnswerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}
	if body.Score == nil {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", nil, services.ValidationErrors{
			{Field: "score", Message: "is required", Rule: "required"},
		})
		return
	}

	h.LogRequest(c, "Grading answer", "question_id", key.QuestionQID, "revision_id", key.QuestionVID, "result_id", key.ResultID)

	result, err := h.evaluator.GradeManually(c.Request.Context(), user, &services.GradeAnswerRequest{
		QuestionID:     key.QuestionQID,
		RevisionID:     key.QuestionVID,
		ResultID:       key.ResultID,
		Score:          *body.Score,
		Feedback:       body.Feedback,
		FeedbackFormat: body.FeedbackFormat,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListUnscored returns one page of the grading queue for a variant
// @Router /grading/queue/{variant} [get]
func (h *GradingHandler) ListUnscored(c *gin.Context) {
	req, user, ok := h.bindQueueRequest(c)
	if !ok {
		return
	}

	resp, err := h.queue.ListUnscored(c.Request.Context(), user, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ExportUnscored streams the grading queue as an xlsx workbook
// @Router /grading/queue/{variant}/export [get]
func (h *GradingHandler) ExportUnscored(c *gin.Context) {
	req, user, ok := h.bindQueueRequest(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting grading queue", "variant", req.Variant)

	data, err := h.queue.ExportUnscored(c.Request.Context(), user, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=unscored_%s.xlsx", req.Variant))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *GradingHandler) bindQueueRequest(c *gin.Context) (*services.UnscoredRequest, *models.UserContext, bool) {
	user, ok := h.currentUser(c)
	if !ok {
		return nil, nil, false
	}

	var req services.UnscoredRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return nil, nil, false
	}
	req.Variant = models.QuestionType(c.Param("variant"))
	return &req, user, true
}
