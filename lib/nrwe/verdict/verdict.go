// Package verdict classifies the body text of a court decision into one
// of two known layouts and pulls out the labeled sections.
package verdict

import (
	"regexp"
	"strings"

	"nrwe-scraper/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

type Format int

const (
	FormatInvalid Format = iota
	Format1              // "Tatbestand" / "Entscheidungsgründe" layout
	Format2              // "Gründe" with roman-numeral sections
)

func (f Format) String() string {
	switch f {
	case Format1:
		return "format_1"
	case Format2:
		return "format_2"
	}
	return "invalid"
}

// Verdict is the result of matching a decision's body text. SectionA and
// SectionB are only populated for a recognized format.
type Verdict struct {
	Format   Format
	SectionA string
	SectionB string
}

// spaced builds a pattern matching the word with arbitrary whitespace
// injected between its letters, as seen in scanned decision headers
// ("T a t b e s t a n d").
func spaced(word string) string {
	letters := strings.Split(word, "")
	for i, l := range letters {
		letters[i] = regexp.QuoteMeta(l)
	}
	return strings.Join(letters, `\s*`)
}

// Header keywords tolerate an optional trailing colon and must sit on
// their own line. Sections span newlines.
var pattern1 = regexp.MustCompile(
	`(?is)\A\s*` + spaced("Tatbestand") + `\s*:?` +
		`\s*\n(.*?)\n` +
		`\s*` + spaced("Entscheidungsgründe") + `\s*:?` +
		`\s*\n(.*?)\z`,
)

var pattern2 = regexp.MustCompile(
	`(?is)\A\s*` + spaced("Gründe") + `\s*:?\s*\n` +
		`\s*I\s*\.\s*\n(.*?)\n` +
		`\s*II\s*\.\s*\n(.*?)` +
		`(?:\n\s*III\s*\.\s*\n|\z)`,
)

// Match tries the two known layouts in order. Format 1 wins whenever it
// matches from the very start of the text; Format 2 is only consulted
// afterwards. Text matching neither yields FormatInvalid, which is data,
// not an error.
func Match(text string) Verdict {
	if m := pattern1.FindStringSubmatch(text); m != nil {
		return Verdict{Format: Format1, SectionA: m[1], SectionB: m[2]}
	}
	if m := pattern2.FindStringSubmatch(text); m != nil {
		return Verdict{Format: Format2, SectionA: m[1], SectionB: m[2]}
	}
	return Verdict{Format: FormatInvalid}
}

// Extract joins the normalized text of the division's body paragraphs
// and matches it against the known layouts.
func Extract(div *goquery.Selection) Verdict {
	var paragraphs []string
	div.Find("p.absatzLinks").Each(func(_ int, p *goquery.Selection) {
		paragraphs = append(paragraphs, p.Text())
	})
	return Match(textutil.JoinParagraphs(paragraphs))
}

// Fields flattens the verdict into output record keys.
func (v Verdict) Fields() map[string]string {
	switch v.Format {
	case Format1:
		return map[string]string{
			"format":              v.Format.String(),
			"tatbestand":          v.SectionA,
			"entscheidungsgründe": v.SectionB,
		}
	case Format2:
		return map[string]string{
			"format":      v.Format.String(),
			"bezugnahme":  v.SectionA,
			"begruendung": v.SectionB,
		}
	}
	return map[string]string{"format": FormatInvalid.String()}
}
