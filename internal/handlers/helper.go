package handlers

import (
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"github.com/gin-gonic/gin"
)

// ParseUintParam reads a positive id from the route. On failure it writes a 400
// and returns false.
func ParseUintParam(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

// parseAnswerKey reads the question, revision and result ids that address one answer
func parseAnswerKey(c *gin.Context) (models.AnswerKey, bool) {
	var key models.AnswerKey
	var ok bool
	if key.QuestionQID, ok = ParseUintParam(c, "question_id"); !ok {
		return key, false
	}
	if key.QuestionVID, ok = ParseUintParam(c, "revision_id"); !ok {
		return key, false
	}
	if key.ResultID, ok = ParseUintParam(c, "result_id"); !ok {
		return key, false
	}
	return key, true
}
