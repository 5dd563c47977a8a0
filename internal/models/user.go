package models

// Capability names a grading or review permission held by a user.
type Capability string

const (
	CapabilityScoreAny        Capability = "score_any_quiz"
	CapabilityScoreOwn        Capability = "score_own_quiz"
	CapabilityScoreTaken      Capability = "score_taken_quiz_answer"
	CapabilityViewCorrect     Capability = "view_quiz_question_correct"
	CapabilityDeleteResponses Capability = "delete_quiz_responses"
)

// UserContext carries the caller identity into every operation that needs it.
type UserContext struct {
	UserID       string       `json:"user_id"`
	Name         string       `json:"name"`
	IsAdmin      bool         `json:"is_admin"`
	Capabilities []Capability `json:"capabilities"`
}

func (u UserContext) Has(c Capability) bool {
	if u.IsAdmin {
		return true
	}
	for _, have := range u.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// GraderScope restricts grading queues to answers a grader may score. Nil fields
// do not filter; when both are set they combine with OR.
type GraderScope struct {
	TakenByUser *string `json:"taken_by_user,omitempty"`
	QuizOwner   *string `json:"quiz_owner,omitempty"`
}

// Unrestricted reports whether the scope applies no filter.
func (s GraderScope) Unrestricted() bool {
	return s.TakenByUser == nil && s.QuizOwner == nil
}
