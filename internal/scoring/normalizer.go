package scoring

import "github.com/SAP-F-2025/text-answer-service/internal/models"

// Normalize rescales a raw score given on the question's own scale onto the weight
// the question carries in a quiz. Correctness is judged on the final score against
// the question maximum.
func Normalize(rawScore, questionMaxScore, quizMaxScore float64) models.NormalizedScore {
	if questionMaxScore <= 0 {
		return models.NormalizedScore{FinalScore: 0, IsCorrect: false}
	}

	finalScore := rawScore * quizMaxScore / questionMaxScore
	return models.NormalizedScore{
		FinalScore: finalScore,
		IsCorrect:  finalScore/questionMaxScore > 0.5,
	}
}

// InRange reports whether a grader-supplied raw score lies in [0, max].
func InRange(rawScore, maxScore float64) bool {
	return rawScore >= 0 && rawScore <= maxScore
}
