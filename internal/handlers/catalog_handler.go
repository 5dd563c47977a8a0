package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/text-answer-service/internal/services"
	"github.com/SAP-F-2025/text-answer-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// CatalogHandler accepts question revisions, quiz weights and results pushed by
// the quiz platform
type CatalogHandler struct {
	BaseHandler
	catalog services.CatalogService
}

type SetQuizWeightBody struct {
	MaxScore float64 `json:"max_score"`
}

func NewCatalogHandler(catalog services.CatalogService, logger utils.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: NewBaseHandler(logger),
		catalog:     catalog,
	}
}

// RegisterQuestion stores an immutable question revision
// @Router /questions/{question_id}/revisions/{revision_id} [put]
func (h *CatalogHandler) RegisterQuestion(c *gin.Context) {
	questionID, ok := ParseUintParam(c, "question_id")
	if !ok {
		return
	}
	revisionID, ok := ParseUintParam(c, "revision_id")
	if !ok {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.RegisterQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}
	req.QuestionID = questionID
	req.RevisionID = revisionID

	question, err := h.catalog.RegisterQuestion(c.Request.Context(), user, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Question revision registered", question)
}

// SetQuizWeight sets the maximum score a question revision carries in a quiz revision
// @Router /quizzes/{quiz_revision_id}/questions/{revision_id}/weight [put]
func (h *CatalogHandler) SetQuizWeight(c *gin.Context) {
	quizRevisionID, ok := ParseUintParam(c, "quiz_revision_id")
	if !ok {
		return
	}
	revisionID, ok := ParseUintParam(c, "revision_id")
	if !ok {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var body SetQuizWeightBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	rel, err := h.catalog.SetQuizWeight(c.Request.Context(), user, &services.SetQuizWeightRequest{
		QuizRevisionID:     quizRevisionID,
		QuestionRevisionID: revisionID,
		MaxScore:           body.MaxScore,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Quiz weight set", rel)
}

// OpenResult creates an attempt for a user
// @Router /results [post]
func (h *CatalogHandler) OpenResult(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.OpenResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	result, err := h.catalog.OpenResult(c.Request.Context(), user, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Result opened", result)
}
