package services

import (
	"log/slog"

	"github.com/SAP-F-2025/text-answer-service/internal/auth"
	"github.com/SAP-F-2025/text-answer-service/internal/events"
	"github.com/SAP-F-2025/text-answer-service/internal/markup"
	"github.com/SAP-F-2025/text-answer-service/internal/metrics"
	"github.com/SAP-F-2025/text-answer-service/internal/repositories"
	"github.com/SAP-F-2025/text-answer-service/internal/validator"
)

// ServiceManager exposes every service to the transport layer
type ServiceManager interface {
	Evaluator() ResponseEvaluator
	Aggregator() ResultAggregator
	GradingQueue() GradingQueueService
	Catalog() CatalogService
	Permissions() auth.PermissionChecker
}

type serviceManager struct {
	evaluator    ResponseEvaluator
	aggregator   ResultAggregator
	gradingQueue GradingQueueService
	catalog      CatalogService
	permissions  auth.PermissionChecker
}

type Dependencies struct {
	Stores     AnswerStores
	Questions  repositories.QuestionRepository
	Weights    repositories.QuizRelationshipRepository
	Results    repositories.ResultRepository
	Transactor repositories.Transactor
	Publisher  events.EventPublisher
	Metrics    *metrics.Metrics
	Validator  *validator.Validator
	Logger     *slog.Logger
	Config     EvaluatorConfig
}

func NewServiceManager(deps Dependencies) ServiceManager {
	permissions := auth.NewPermissionChecker()
	aggregator := NewResultAggregator(deps.Stores, deps.Results, deps.Metrics, deps.Logger)

	evaluator := NewResponseEvaluator(ResponseEvaluatorDeps{
		Stores:      deps.Stores,
		Questions:   deps.Questions,
		Weights:     deps.Weights,
		Results:     deps.Results,
		Transactor:  deps.Transactor,
		Aggregator:  aggregator,
		Permissions: permissions,
		Sanitizer:   markup.NewSanitizer(),
		Publisher:   deps.Publisher,
		Metrics:     deps.Metrics,
		Validator:   deps.Validator,
		Logger:      deps.Logger,
		Config:      deps.Config,
	})

	return &serviceManager{
		evaluator:    evaluator,
		aggregator:   aggregator,
		gradingQueue: NewGradingQueueService(deps.Stores, permissions, deps.Validator, deps.Logger),
		catalog:      NewCatalogService(deps.Questions, deps.Weights, deps.Results, deps.Transactor, deps.Validator, deps.Logger),
		permissions:  permissions,
	}
}

func (m *serviceManager) Evaluator() ResponseEvaluator        { return m.evaluator }
func (m *serviceManager) Aggregator() ResultAggregator        { return m.aggregator }
func (m *serviceManager) GradingQueue() GradingQueueService   { return m.gradingQueue }
func (m *serviceManager) Catalog() CatalogService             { return m.catalog }
func (m *serviceManager) Permissions() auth.PermissionChecker { return m.permissions }
