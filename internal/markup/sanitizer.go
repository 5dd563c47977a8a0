package markup

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	FormatPlainText    = "plain_text"
	FormatFilteredHTML = "filtered_html"
	FormatFullHTML     = "full_html"
)

// Sanitizer turns stored feedback into markup that is safe to display
type Sanitizer interface {
	Sanitize(text, format string) string
}

type bluemondaySanitizer struct {
	filtered *bluemonday.Policy
	full     *bluemonday.Policy
}

func NewSanitizer() Sanitizer {
	filtered := bluemonday.NewPolicy()
	filtered.AllowStandardURLs()
	filtered.AllowAttrs("href").OnElements("a")
	filtered.AllowElements("p", "br", "em", "strong", "cite", "code", "ul", "ol", "li", "dl", "dt", "dd", "blockquote")
	filtered.RequireNoFollowOnLinks(true)

	return &bluemondaySanitizer{
		filtered: filtered,
		full:     bluemonday.UGCPolicy(),
	}
}

// Sanitize applies the policy for format. Unknown formats get the most
// restrictive HTML policy.
func (s *bluemondaySanitizer) Sanitize(text, format string) string {
	switch format {
	case FormatPlainText:
		escaped := html.EscapeString(text)
		return strings.ReplaceAll(escaped, "\n", "<br>\n")
	case FormatFullHTML:
		return s.full.Sanitize(text)
	default:
		return s.filtered.Sanitize(text)
	}
}
