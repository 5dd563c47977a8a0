package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/text-answer-service/internal/services"
	"github.com/SAP-F-2025/text-answer-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AnswerHandler struct {
	BaseHandler
	evaluator services.ResponseEvaluator
}

// SubmitAnswerBody is the payload of a submission; ids come from the route
type SubmitAnswerBody struct {
	Text string `json:"text"`
}

func NewAnswerHandler(evaluator services.ResponseEvaluator, logger utils.Logger) *AnswerHandler {
	return &AnswerHandler{
		BaseHandler: NewBaseHandler(logger),
		evaluator:   evaluator,
	}
}

// SubmitAnswer stores (or replaces) the caller's answer and scores it when the
// question is evaluated automatically
// @Router /questions/{question_id}/revisions/{revision_id}/results/{result_id}/answer [post]
func (h *AnswerHandler) SubmitAnswer(c *gin.Context) {
	key, ok := parseAnswerKey(c)
	if !ok {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var body SubmitAnswerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	h.LogRequest(c, "Submitting answer", "question_id", key.QuestionQID, "revision_id", key.QuestionVID, "result_id", key.ResultID)

	resp, err := h.evaluator.Submit(c.Request.Context(), user, &services.SubmitAnswerRequest{
		QuestionID: key.QuestionQID,
		RevisionID: key.QuestionVID,
		ResultID:   key.ResultID,
		Text:       body.Text,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// LoadAnswer returns the stored answer for prefilling
// @Router /questions/{question_id}/revisions/{revision_id}/results/{result_id}/answer [get]
func (h *AnswerHandler) LoadAnswer(c *gin.Context) {
	key, ok := parseAnswerKey(c)
	if !ok {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	answer, err := h.evaluator.LoadExisting(c.Request.Context(), user, key)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

// GetFeedback renders the review view of one answer
// @Router /questions/{question_id}/revisions/{revision_id}/results/{result_id}/feedback [get]
func (h *AnswerHandler) GetFeedback(c *gin.Context) {
	key, ok := parseAnswerKey(c)
	if !ok {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	view, err := h.evaluator.GetFeedback(c.Request.Context(), user, key)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// DeleteRevision removes a question revision with every answer given to it
// @Router /questions/{question_id}/revisions/{revision_id} [delete]
func (h *AnswerHandler) DeleteRevision(c *gin.Context) {
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

	removed, err := h.evaluator.DeleteForRevision(c.Request.Context(), user, questionID, revisionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Question revision deleted", gin.H{"answers_removed": removed})
}

// DeleteQuestion removes every revision of a question with all their answers
// @Router /questions/{question_id} [delete]
func (h *AnswerHandler) DeleteQuestion(c *gin.Context) {
	questionID, ok := ParseUintParam(c, "question_id")
	if !ok {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	removed, err := h.evaluator.DeleteForAllRevisions(c.Request.Context(), user, questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Question deleted", gin.H{"answers_removed": removed})
}

// DeleteResult removes an attempt with its answers
// @Router /results/{result_id} [delete]
func (h *AnswerHandler) DeleteResult(c *gin.Context) {
	resultID, ok := ParseUintParam(c, "result_id")
	if !ok {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	removed, err := h.evaluator.DeleteResult(c.Request.Context(), user, resultID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Result deleted", gin.H{"answers_removed": removed})
}
