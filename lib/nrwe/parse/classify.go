package parse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type category int

const (
	categoryMeta category = iota
	categoryLeitsaetze
	categoryTenor
	categoryVerdict
)

func (c category) String() string {
	switch c {
	case categoryMeta:
		return "meta"
	case categoryLeitsaetze:
		return "leitsaetze"
	case categoryTenor:
		return "tenor"
	case categoryVerdict:
		return "verdict"
	}
	return "unknown"
}

var metaLabels = map[string]bool{
	"Datum":            true,
	"Gericht":          true,
	"Spruchkörper":     true,
	"Entscheidungsart": true,
	"Aktenzeichen":     true,
	"ECLI":             true,
}

var leitsaetzeLabels = map[string]bool{
	"Vorinstanz":  true,
	"Nachinstanz": true,
	"Schlagworte": true,
	"Normen":      true,
	"Leitsätze":   true,
	"Rechtskraft": true,
	"Sachgebiet":  true,
}

// divisionLabels returns the trimmed, colon-stripped text of the
// division's direct label sub-elements, in document order.
func divisionLabels(div *goquery.Selection) []string {
	var labels []string
	div.ChildrenFiltered("div.feldbezeichnung").Each(func(_ int, sub *goquery.Selection) {
		labels = append(labels, strings.TrimRight(strings.TrimSpace(sub.Text()), ":"))
	})
	return labels
}

func anyLabelIn(labels []string, set map[string]bool) bool {
	for _, l := range labels {
		if set[l] {
			return true
		}
	}
	return false
}

// classify evaluates every category rule independently and returns the
// full set of matches, so that ambiguous divisions can be detected
// instead of silently resolved.
func classify(div *goquery.Selection) []category {
	labels := divisionLabels(div)

	var matched []category
	if anyLabelIn(labels, metaLabels) {
		matched = append(matched, categoryMeta)
	}
	if anyLabelIn(labels, leitsaetzeLabels) {
		matched = append(matched, categoryLeitsaetze)
	}
	isTenor := div.ChildrenFiltered("div.feldinhalt.tenor").Length() > 0
	for _, l := range labels {
		if l == "Tenor" {
			isTenor = true
			break
		}
	}
	if isTenor {
		matched = append(matched, categoryTenor)
	}
	if div.Find("p.absatzLinks, table.absatzLinks").Length() > 0 {
		matched = append(matched, categoryVerdict)
	}
	return matched
}
