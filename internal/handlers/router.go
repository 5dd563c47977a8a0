package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/text-answer-service/internal/services"
	"github.com/SAP-F-2025/text-answer-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	answerHandler  *AnswerHandler
	gradingHandler *GradingHandler
	catalogHandler *CatalogHandler
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		answerHandler:  NewAnswerHandler(serviceManager.Evaluator(), logger),
		gradingHandler: NewGradingHandler(serviceManager.Evaluator(), serviceManager.GradingQueue(), logger),
		catalogHandler: NewCatalogHandler(serviceManager.Catalog(), logger),
	}
}

// SetupRoutes sets up all API routes. authenticate guards everything under /api/v1.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, authenticate gin.HandlerFunc) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1", authenticate)
	{
		questions := v1.Group("/questions/:question_id")
		{
			questions.DELETE("", hm.answerHandler.DeleteQuestion)

			revision := questions.Group("/revisions/:revision_id")
			revision.PUT("", hm.catalogHandler.RegisterQuestion)
			revision.DELETE("", hm.answerHandler.DeleteRevision)

			attempt := revision.Group("/results/:result_id")
			attempt.POST("/answer", hm.answerHandler.SubmitAnswer)
			attempt.GET("/answer", hm.answerHandler.LoadAnswer)
			attempt.GET("/feedback", hm.answerHandler.GetFeedback)
		}

		grading := v1.Group("/grading")
		{
			grading.POST("/questions/:question_id/revisions/:revision_id/results/:result_id", hm.gradingHandler.GradeAnswer)
			grading.GET("/queue/:variant", hm.gradingHandler.ListUnscored)
			grading.GET("/queue/:variant/export", hm.gradingHandler.ExportUnscored)
		}

		v1.PUT("/quizzes/:quiz_revision_id/questions/:revision_id/weight", hm.catalogHandler.SetQuizWeight)

		results := v1.Group("/results")
		{
			results.POST("", hm.catalogHandler.OpenResult)
			results.DELETE("/:result_id", hm.answerHandler.DeleteResult)
		}
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "text-answer-service",
	})
}
