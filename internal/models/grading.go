package models

// EvaluationOutcome is produced by an evaluation policy and fed to normalization.
// It is never persisted.
type EvaluationOutcome struct {
	RawScore             float64 `json:"raw_score"`
	Evaluated            bool    `json:"evaluated"`
	RequiresManualReview bool    `json:"requires_manual_review"`
}

// NormalizedScore is a raw score rescaled onto a quiz's weight for a question.
type NormalizedScore struct {
	FinalScore float64 `json:"final_score"`
	IsCorrect  bool    `json:"is_correct"`
}

// Feedback is grader-supplied commentary together with its markup format.
type Feedback struct {
	Text   string `json:"text"`
	Format string `json:"format"`
}

// FeedbackView is what a viewer sees about one answer.
type FeedbackView struct {
	AttemptText              string   `json:"attempt"`
	Score                    *float64 `json:"score,omitempty"`
	EvaluationPendingMessage string   `json:"correct,omitempty"`
	FeedbackText             string   `json:"answer_feedback"`
	Rubric                   string   `json:"solution"`
}
