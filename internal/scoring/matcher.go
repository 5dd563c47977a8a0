package scoring

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/SAP-F-2025/text-answer-service/internal/models"
)

// fuzzyTolerance is the largest edit distance a fuzzy match accepts.
const fuzzyTolerance = 1

// Matches reports whether rawText satisfies the canonical answer in data. An empty
// match mode is treated as case-insensitive.
func Matches(rawText string, data models.GradingData) bool {
	answer := strings.TrimSpace(rawText)
	expected := strings.TrimSpace(data.CorrectAnswer)

	switch data.MatchMode {
	case models.MatchManual:
		return false
	case models.MatchCaseSensitive:
		return answer == expected
	case models.MatchRegex:
		re, err := regexp.Compile(data.CorrectAnswer)
		if err != nil {
			return false
		}
		return re.MatchString(answer)
	case models.MatchFuzzy:
		return levenshtein(normalizeText(answer), normalizeText(expected)) <= fuzzyTolerance
	default:
		return strings.EqualFold(answer, expected)
	}
}

// normalizeText lowercases s, drops punctuation and collapses whitespace.
func normalizeText(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsPunct(r):
		default:
			if space && len(out) > 0 {
				out = append(out, ' ')
			}
			space = false
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}

func levenshtein(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}

	row := make([]int, len(br)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(br); j++ {
			above := row[j]
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			row[j] = min(row[j]+1, row[j-1]+1, diag+cost)
			diag = above
		}
	}
	return row[len(br)]
}
