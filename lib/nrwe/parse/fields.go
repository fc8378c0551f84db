package parse

import (
	"fmt"

	"nrwe-scraper/lib/htmlutil"
	"nrwe-scraper/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// extractFields pairs the division's label sub-elements with its content
// sub-elements positionally. The content selector covers all feldinhalt
// style variants (plain, tenor, leitsaetze). The two sequences must be
// equal length; anything else means the document's structure cannot be
// trusted and the document fails.
//
// A normalized label appearing twice within one division keeps the later
// value.
func extractFields(div *goquery.Selection) (map[string]string, error) {
	labels := div.ChildrenFiltered("div.feldbezeichnung")
	contents := div.ChildrenFiltered("div.feldinhalt")

	if labels.Length() != contents.Length() {
		return nil, fmt.Errorf(
			"%w: %d labels vs %d contents",
			ErrFieldCount, labels.Length(), contents.Length(),
		)
	}

	fields := make(map[string]string, labels.Length())
	for i := 0; i < labels.Length(); i++ {
		key := textutil.NormalizeLabel(htmlutil.GetText(labels.Get(i)))
		fields[key] = textutil.CollapseSpace(htmlutil.GetText(contents.Get(i)))
	}
	return fields, nil
}
