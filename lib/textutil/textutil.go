package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// CollapseSpace replaces every run of whitespace (newlines included)
// with a single space and trims the ends.
func CollapseSpace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// NormalizeLabel turns a field label into its canonical key form:
// collapsed whitespace, lowercase, trailing colons stripped.
func NormalizeLabel(label string) string {
	label = strings.ToLower(CollapseSpace(label))
	return strings.TrimRight(label, ":")
}

// JoinParagraphs normalizes each paragraph with CollapseSpace, drops the
// ones that end up empty and joins the rest with a blank line, keeping
// document order.
func JoinParagraphs(paragraphs []string) string {
	kept := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		p = CollapseSpace(p)
		if p == "" {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "\n\n")
}
