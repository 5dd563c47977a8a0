package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		name   string
		text   string
		format string
		want   string
	}{
		{"plain text escapes markup", "<b>good</b>\nwork", FormatPlainText, "&lt;b&gt;good&lt;/b&gt;<br>\nwork"},
		{"filtered keeps emphasis", "<em>close</em>", FormatFilteredHTML, "<em>close</em>"},
		{"filtered drops script", "ok<script>alert(1)</script>", FormatFilteredHTML, "ok"},
		{"filtered drops tables", "<table><tr><td>x</td></tr></table>", FormatFilteredHTML, "x"},
		{"full keeps tables", "<table><tr><td>x</td></tr></table>", FormatFullHTML, "<table><tr><td>x</td></tr></table>"},
		{"full drops handlers", `<p onclick="steal()">hi</p>`, FormatFullHTML, "<p>hi</p>"},
		{"unknown format is filtered", "<script>x</script>hi", "", "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Sanitize(tt.text, tt.format))
		})
	}
}
