package auth

import "github.com/SAP-F-2025/text-answer-service/internal/models"

// PermissionChecker answers capability questions about a caller
type PermissionChecker interface {
	CanViewCorrectAnswer(user *models.UserContext) bool
	CanGrade(user *models.UserContext) bool
	CanDeleteResponses(user *models.UserContext) bool
	// ScopeFilterForGrader restricts grading queues to what the grader may score.
	// ok is false when the user may not grade at all.
	ScopeFilterForGrader(user *models.UserContext) (scope models.GraderScope, ok bool)
	// CanGradeResult reports whether the grader may score answers in result.
	CanGradeResult(user *models.UserContext, result *models.Result) bool
}

type capabilityChecker struct{}

func NewPermissionChecker() PermissionChecker {
	return capabilityChecker{}
}

func (capabilityChecker) CanViewCorrectAnswer(user *models.UserContext) bool {
	return user != nil && user.Has(models.CapabilityViewCorrect)
}

func (capabilityChecker) CanGrade(user *models.UserContext) bool {
	if user == nil {
		return false
	}
	return user.Has(models.CapabilityScoreAny) ||
		user.Has(models.CapabilityScoreOwn) ||
		user.Has(models.CapabilityScoreTaken)
}

func (capabilityChecker) CanDeleteResponses(user *models.UserContext) bool {
	return user != nil && user.Has(models.CapabilityDeleteResponses)
}

func (c capabilityChecker) ScopeFilterForGrader(user *models.UserContext) (models.GraderScope, bool) {
	if !c.CanGrade(user) {
		return models.GraderScope{}, false
	}
	if user.Has(models.CapabilityScoreAny) {
		return models.GraderScope{}, true
	}

	var scope models.GraderScope
	userID := user.UserID
	if user.Has(models.CapabilityScoreOwn) {
		scope.QuizOwner = &userID
	}
	if user.Has(models.CapabilityScoreTaken) {
		scope.TakenByUser = &userID
	}
	return scope, true
}

func (c capabilityChecker) CanGradeResult(user *models.UserContext, result *models.Result) bool {
	scope, ok := c.ScopeFilterForGrader(user)
	if !ok {
		return false
	}
	if scope.Unrestricted() {
		return true
	}
	if scope.QuizOwner != nil && result.QuizOwnerID == *scope.QuizOwner {
		return true
	}
	return scope.TakenByUser != nil && result.UserID == *scope.TakenByUser
}
