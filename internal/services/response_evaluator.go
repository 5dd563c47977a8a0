package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/text-answer-service/internal/auth"
	apperrors "github.com/SAP-F-2025/text-answer-service/internal/errors"
	"github.com/SAP-F-2025/text-answer-service/internal/events"
	"github.com/SAP-F-2025/text-answer-service/internal/markup"
	"github.com/SAP-F-2025/text-answer-service/internal/metrics"
	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"github.com/SAP-F-2025/text-answer-service/internal/repositories"
	"github.com/SAP-F-2025/text-answer-service/internal/scoring"
	"github.com/SAP-F-2025/text-answer-service/internal/validator"
	"gorm.io/gorm"
)

const (
	PendingEvaluationMessage = "This answer has not yet been scored."
	HiddenAnswerPlaceholder  = "Answer hidden"
	DefaultFeedbackFormat    = markup.FormatFilteredHTML
)

type EvaluatorConfig struct {
	LongAnswerDefaultMaxScore float64
}

type responseEvaluator struct {
	stores      AnswerStores
	questions   repositories.QuestionRepository
	weights     repositories.QuizRelationshipRepository
	results     repositories.ResultRepository
	tx          repositories.Transactor
	aggregator  ResultAggregator
	permissions auth.PermissionChecker
	sanitizer   markup.Sanitizer
	publisher   events.EventPublisher
	metrics     *metrics.Metrics
	validator   *validator.Validator
	log         *ServiceLogger
	config      EvaluatorConfig
}

type ResponseEvaluatorDeps struct {
	Stores      AnswerStores
	Questions   repositories.QuestionRepository
	Weights     repositories.QuizRelationshipRepository
	Results     repositories.ResultRepository
	Transactor  repositories.Transactor
	Aggregator  ResultAggregator
	Permissions auth.PermissionChecker
	Sanitizer   markup.Sanitizer
	Publisher   events.EventPublisher
	Metrics     *metrics.Metrics
	Validator   *validator.Validator
	Logger      *slog.Logger
	Config      EvaluatorConfig
}

func NewResponseEvaluator(deps ResponseEvaluatorDeps) ResponseEvaluator {
	return &responseEvaluator{
		stores:      deps.Stores,
		questions:   deps.Questions,
		weights:     deps.Weights,
		results:     deps.Results,
		tx:          deps.Transactor,
		aggregator:  deps.Aggregator,
		permissions: deps.Permissions,
		sanitizer:   deps.Sanitizer,
		publisher:   deps.Publisher,
		metrics:     deps.Metrics,
		validator:   deps.Validator,
		log:         NewServiceLogger(deps.Logger, "response_evaluator"),
		config:      deps.Config,
	}
}

// ===== SUBMISSION =====

func (s *responseEvaluator) Submit(ctx context.Context, user *models.UserContext, req *SubmitAnswerRequest) (resp *SubmitAnswerResponse, err error) {
	op := s.log.WithOperation(ctx, "submit_answer", userIDOf(user))
	defer func() { op.LogResult(req.ResultID, "result", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question, policy, store, err := s.resolveQuestion(ctx, req.QuestionID, req.RevisionID)
	if err != nil {
		return nil, err
	}

	result, err := s.resolveResult(ctx, req.ResultID)
	if err != nil {
		return nil, err
	}
	if !ownsResult(user, result) {
		return nil, NewPermissionError(userIDOf(user), result.ID, "result", "submit answers to", ErrAnswerAccessDenied)
	}
	if result.Archived {
		return nil, ErrResultArchived
	}

	outcome, err := policy.Evaluate(question, req.Text)
	if err != nil {
		return nil, s.configurationError("question", "grading data cannot be read", err, req.QuestionID, req.RevisionID)
	}

	// Resolve everything that can fail before the first write
	var normalized *models.NormalizedScore
	if policy.Classify(question) == models.EvaluationAutomatic && outcome.Evaluated {
		quizMax, err := s.resolveQuizMaxScore(ctx, result.QuizVID, question.VID)
		if err != nil {
			return nil, err
		}
		n := scoring.Normalize(outcome.RawScore, policy.MaxScore(question), quizMax)
		normalized = &n
	}

	var (
		answer  *models.TextAnswer
		changed bool
		total   float64
	)
	err = s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		answer, err = store.Save(ctx, tx, req.Key(), req.Text)
		if err != nil {
			return err
		}
		if normalized == nil {
			return nil
		}

		changed, err = store.SetScore(ctx, tx, answer.ID, models.ScoreUpdate{
			Score:          normalized.FinalScore,
			IsEvaluated:    true,
			IsCorrect:      normalized.IsCorrect,
			FeedbackText:   answer.FeedbackText,
			FeedbackFormat: answer.FeedbackFormat,
		})
		if err != nil {
			return err
		}
		if changed {
			total, err = s.aggregator.UpdateTotal(ctx, tx, result.ID)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store answer: %w", err)
	}

	resp = &SubmitAnswerResponse{
		AnswerID:             answer.ID,
		EvaluatedImmediately: normalized != nil,
	}
	if normalized != nil {
		resp.Score = &normalized.FinalScore
		resp.IsCorrect = &normalized.IsCorrect
		s.metrics.ObserveSubmission(string(question.Type), "evaluated")
	} else {
		s.metrics.ObserveSubmission(string(question.Type), "pending")
	}

	s.publish(ctx, events.EventAnswerSubmitted, events.AnswerSubmittedEvent{
		AnswerID:             answer.ID,
		QuestionID:           question.QID,
		RevisionID:           question.VID,
		ResultID:             result.ID,
		QuestionType:         string(question.Type),
		EvaluatedImmediately: normalized != nil,
	})
	switch {
	case normalized != nil && changed:
		s.publishGraded(ctx, answer, *normalized, "")
		s.publishTotal(ctx, result, total)
	case outcome.RequiresManualReview && !answer.IsEvaluated:
		s.publish(ctx, events.EventManualGradingRequired, events.ManualGradingRequiredEvent{
			AnswerID:   answer.ID,
			QuestionID: question.QID,
			RevisionID: question.VID,
			ResultID:   result.ID,
			QuizOwner:  result.QuizOwnerID,
		})
	}

	return resp, nil
}

// ===== MANUAL GRADING =====

func (s *responseEvaluator) GradeManually(ctx context.Context, grader *models.UserContext, req *GradeAnswerRequest) (resp *GradeAnswerResponse, err error) {
	op := s.log.WithOperation(ctx, "grade_answer", userIDOf(grader))
	defer func() { op.LogResult(req.ResultID, "result", err) }()

	if !s.permissions.CanGrade(grader) {
		return nil, NewPermissionError(userIDOf(grader), req.ResultID, "result", "grade", ErrGradingPermissionDenied)
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question, policy, store, err := s.resolveQuestion(ctx, req.QuestionID, req.RevisionID)
	if err != nil {
		return nil, err
	}

	maxScore := policy.MaxScore(question)
	if !scoring.InRange(req.Score, maxScore) {
		return nil, fieldError(apperrors.NewScoreRangeError(req.Score, maxScore))
	}

	answer, err := store.Load(ctx, nil, req.Key())
	if err != nil {
		return nil, fmt.Errorf("failed to load answer: %w", err)
	}
	if answer == nil {
		return nil, ErrAnswerNotFound
	}

	result, err := s.resolveResult(ctx, req.ResultID)
	if err != nil {
		return nil, err
	}
	if !s.permissions.CanGradeResult(grader, result) {
		return nil, NewPermissionError(userIDOf(grader), result.ID, "result", "grade", ErrGradingPermissionDenied)
	}
	if result.Archived {
		return nil, ErrResultArchived
	}

	quizMax, err := s.resolveQuizMaxScore(ctx, result.QuizVID, question.VID)
	if err != nil {
		return nil, err
	}
	normalized := scoring.Normalize(req.Score, maxScore, quizMax)

	format := req.FeedbackFormat
	if format == "" {
		format = DefaultFeedbackFormat
	}

	var (
		changed bool
		total   float64
	)
	err = s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		changed, err = store.SetScore(ctx, tx, answer.ID, models.ScoreUpdate{
			Score:          normalized.FinalScore,
			IsEvaluated:    true,
			IsCorrect:      normalized.IsCorrect,
			FeedbackText:   req.Feedback,
			FeedbackFormat: format,
		})
		if err != nil {
			return err
		}
		if changed {
			total, err = s.aggregator.UpdateTotal(ctx, tx, result.ID)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store grade: %w", err)
	}

	s.metrics.ObserveGrade(string(question.Type), changed)

	resp = &GradeAnswerResponse{
		AnswerID:   answer.ID,
		Success:    true,
		FinalScore: normalized.FinalScore,
		IsCorrect:  normalized.IsCorrect,
		Changed:    changed,
	}
	if changed {
		resp.ResultTotal = &total
		s.publishGraded(ctx, answer, normalized, userIDOf(grader))
		s.publishTotal(ctx, result, total)
	}

	s.log.Logger().InfoContext(ctx, "Answer graded",
		"answer_id", answer.ID,
		"question_id", question.QID,
		"revision_id", question.VID,
		"result_id", result.ID,
		"final_score", normalized.FinalScore,
		"changed", changed)

	return resp, nil
}

// ===== REVIEW =====

func (s *responseEvaluator) GetFeedback(ctx context.Context, viewer *models.UserContext, key models.AnswerKey) (*models.FeedbackView, error) {
	question, store, err := s.readAccess(ctx, viewer, key)
	if err != nil {
		return nil, err
	}

	answer, err := store.Load(ctx, nil, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer: %w", err)
	}
	if answer == nil {
		return nil, ErrAnswerNotFound
	}

	view := &models.FeedbackView{
		AttemptText: s.sanitizer.Sanitize(answer.RawText, markup.FormatPlainText),
	}
	if answer.State() == models.StateEvaluated {
		view.Score = answer.Score
	} else {
		view.EvaluationPendingMessage = PendingEvaluationMessage
	}
	if answer.FeedbackText != "" {
		view.FeedbackText = s.sanitizer.Sanitize(answer.FeedbackText, answer.FeedbackFormat)
	}

	if s.permissions.CanViewCorrectAnswer(viewer) {
		data, err := question.Grading()
		if err != nil {
			return nil, fmt.Errorf("failed to decode grading data: %w", err)
		}
		solution := data.Rubric
		if question.Type == models.QuestionShortAnswer && solution == "" {
			solution = data.CorrectAnswer
		}
		view.Rubric = s.sanitizer.Sanitize(solution, markup.FormatFilteredHTML)
	} else {
		view.Rubric = HiddenAnswerPlaceholder
	}

	return view, nil
}

// LoadExisting returns the caller's stored answer so a form can be prefilled.
func (s *responseEvaluator) LoadExisting(ctx context.Context, viewer *models.UserContext, key models.AnswerKey) (*models.TextAnswer, error) {
	_, store, err := s.readAccess(ctx, viewer, key)
	if err != nil {
		return nil, err
	}

	answer, err := store.Load(ctx, nil, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer: %w", err)
	}
	if answer == nil {
		return nil, ErrAnswerNotFound
	}
	return answer, nil
}

// readAccess resolves the question and result behind key for a read path and
// checks that viewer owns the result or may grade it.
func (s *responseEvaluator) readAccess(ctx context.Context, viewer *models.UserContext, key models.AnswerKey) (*models.Question, repositories.AnswerRepository, error) {
	question, err := s.questions.GetRevision(ctx, nil, key.QuestionQID, key.QuestionVID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrQuestionNotFound
		}
		return nil, nil, fmt.Errorf("failed to get question: %w", err)
	}
	store, err := s.stores.For(question.Type)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.results.GetByID(ctx, nil, key.ResultID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrResultNotFound
		}
		return nil, nil, fmt.Errorf("failed to get result: %w", err)
	}
	if !ownsResult(viewer, result) && !s.permissions.CanGradeResult(viewer, result) {
		return nil, nil, NewPermissionError(userIDOf(viewer), result.ID, "result", "view answers in", ErrAnswerAccessDenied)
	}
	return question, store, nil
}

// ===== CASCADE DELETION =====

func (s *responseEvaluator) DeleteForRevision(ctx context.Context, user *models.UserContext, questionQID, questionVID uint) (removed int64, err error) {
	op := s.log.WithOperation(ctx, "delete_revision_answers", userIDOf(user))
	defer func() { op.LogResult(questionVID, "question_revision", err) }()

	if !s.permissions.CanDeleteResponses(user) {
		return 0, NewPermissionError(userIDOf(user), questionVID, "question_revision", "delete answers for", ErrDeletePermissionDenied)
	}

	err = s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		for _, store := range s.stores.All() {
			n, err := store.DeleteForRevision(ctx, tx, questionQID, questionVID)
			if err != nil {
				return fmt.Errorf("failed to delete %s rows: %w", store.Table(), err)
			}
			removed += n
		}
		return s.questions.DeleteRevision(ctx, tx, questionQID, questionVID)
	})
	if err != nil {
		return 0, err
	}
	if err := s.questions.InvalidateRevision(ctx, questionQID, questionVID); err != nil {
		s.log.Logger().WarnContext(ctx, "Failed to evict deleted question revision", "question_id", questionQID, "revision_id", questionVID, "error", err)
	}
	return removed, nil
}

func (s *responseEvaluator) DeleteForAllRevisions(ctx context.Context, user *models.UserContext, questionQID uint) (removed int64, err error) {
	op := s.log.WithOperation(ctx, "delete_question_answers", userIDOf(user))
	defer func() { op.LogResult(questionQID, "question", err) }()

	if !s.permissions.CanDeleteResponses(user) {
		return 0, NewPermissionError(userIDOf(user), questionQID, "question", "delete answers for", ErrDeletePermissionDenied)
	}

	err = s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		for _, store := range s.stores.All() {
			n, err := store.DeleteForAllRevisions(ctx, tx, questionQID)
			if err != nil {
				return fmt.Errorf("failed to delete %s rows: %w", store.Table(), err)
			}
			removed += n
		}
		return s.questions.DeleteAllRevisions(ctx, tx, questionQID)
	})
	if err != nil {
		return 0, err
	}
	if err := s.questions.InvalidateAllRevisions(ctx, questionQID); err != nil {
		s.log.Logger().WarnContext(ctx, "Failed to evict deleted question", "question_id", questionQID, "error", err)
	}
	return removed, nil
}

func (s *responseEvaluator) DeleteResult(ctx context.Context, user *models.UserContext, resultID uint) (removed int64, err error) {
	op := s.log.WithOperation(ctx, "delete_result", userIDOf(user))
	defer func() { op.LogResult(resultID, "result", err) }()

	if !s.permissions.CanDeleteResponses(user) {
		return 0, NewPermissionError(userIDOf(user), resultID, "result", "delete", ErrDeletePermissionDenied)
	}

	err = s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.results.GetByID(ctx, tx, resultID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrResultNotFound
			}
			return err
		}
		for _, store := range s.stores.All() {
			n, err := store.DeleteForResult(ctx, tx, resultID)
			if err != nil {
				return fmt.Errorf("failed to delete %s rows: %w", store.Table(), err)
			}
			removed += n
		}
		return s.results.Delete(ctx, tx, resultID)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// ===== HELPERS =====

// resolveQuestion loads a revision for a write path, where a miss is a
// configuration problem rather than a plain lookup failure.
func (s *responseEvaluator) resolveQuestion(ctx context.Context, qid, vid uint) (*models.Question, scoring.EvaluationPolicy, repositories.AnswerRepository, error) {
	question, err := s.questions.GetRevision(ctx, nil, qid, vid)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, nil, s.configurationError("question", "question revision does not exist", ErrQuestionNotFound, qid, vid)
		}
		return nil, nil, nil, fmt.Errorf("failed to get question: %w", err)
	}

	policy, err := scoring.PolicyFor(question, s.config.LongAnswerDefaultMaxScore)
	if err != nil {
		return nil, nil, nil, s.configurationError("question", err.Error(), ErrUnsupportedQuestionType, qid, vid)
	}
	store, err := s.stores.For(question.Type)
	if err != nil {
		return nil, nil, nil, s.configurationError("question", "no answer store for question type", err, qid, vid)
	}
	return question, policy, store, nil
}

func (s *responseEvaluator) resolveResult(ctx context.Context, resultID uint) (*models.Result, error) {
	result, err := s.results.GetByID(ctx, nil, resultID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.metrics.ObserveConfigurationError("result")
			return nil, newConfigurationError("result", "result does not exist", ErrResultNotFound,
				map[string]interface{}{"result_id": resultID})
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return result, nil
}

func (s *responseEvaluator) resolveQuizMaxScore(ctx context.Context, quizVID, questionVID uint) (float64, error) {
	quizMax, err := s.weights.GetQuizMaxScore(ctx, nil, quizVID, questionVID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.metrics.ObserveConfigurationError("quiz_relationship")
			return 0, newConfigurationError("quiz_relationship", "question has no weight in this quiz revision", ErrRelationshipNotFound,
				map[string]interface{}{"quiz_revision_id": quizVID, "question_revision_id": questionVID})
		}
		return 0, fmt.Errorf("failed to get quiz weight: %w", err)
	}
	return quizMax, nil
}

func (s *responseEvaluator) configurationError(resource, reason string, cause error, qid, vid uint) error {
	s.metrics.ObserveConfigurationError(resource)
	return newConfigurationError(resource, reason, cause,
		map[string]interface{}{"question_id": qid, "revision_id": vid})
}

func (s *responseEvaluator) publishGraded(ctx context.Context, answer *models.TextAnswer, score models.NormalizedScore, gradedBy string) {
	s.publish(ctx, events.EventAnswerGraded, events.AnswerGradedEvent{
		AnswerID:   answer.ID,
		QuestionID: answer.QuestionQID,
		RevisionID: answer.QuestionVID,
		ResultID:   answer.ResultID,
		FinalScore: score.FinalScore,
		IsCorrect:  score.IsCorrect,
		GradedBy:   gradedBy,
	})
}

func (s *responseEvaluator) publishTotal(ctx context.Context, result *models.Result, total float64) {
	s.publish(ctx, events.EventResultTotalUpdated, events.ResultTotalUpdatedEvent{
		ResultID: result.ID,
		UserID:   result.UserID,
		Total:    total,
	})
}

// publish runs after commit; a failed publish never undoes stored state.
func (s *responseEvaluator) publish(ctx context.Context, eventType events.EventType, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewGradingEvent(eventType, data)); err != nil {
		s.log.Logger().WarnContext(ctx, "Failed to publish grading event", "event_type", eventType, "error", err)
	}
}

func ownsResult(user *models.UserContext, result *models.Result) bool {
	if user == nil {
		return false
	}
	return user.IsAdmin || user.UserID == result.UserID
}

func userIDOf(user *models.UserContext) string {
	if user == nil {
		return ""
	}
	return user.UserID
}
