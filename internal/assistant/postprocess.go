package assistant

import (
	"regexp"
	"strings"
)

var (
	boldPattern    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern  = regexp.MustCompile(`\*(.*?)\*`)
	codePattern    = regexp.MustCompile("`(.*?)`")
	newlinePattern = regexp.MustCompile(`\n{3,}`)
)

// PostProcess strips inline markdown that reads badly when spoken and
// collapses runs of blank lines.
func PostProcess(text string) string {
	text = strings.TrimSpace(text)
	text = boldPattern.ReplaceAllString(text, "$1")
	text = italicPattern.ReplaceAllString(text, "$1")
	text = codePattern.ReplaceAllString(text, "$1")
	return newlinePattern.ReplaceAllString(text, "\n\n")
}

// NormalizeInput cleans a line of user input: invalid UTF-8 is dropped and
// surrounding whitespace trimmed.
func NormalizeInput(s string) string {
	return strings.TrimSpace(strings.ToValidUTF8(s, ""))
}
