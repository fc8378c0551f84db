// Package parse turns downloaded NRWE case documents into flat records.
//
// A document is a sequence of "maindiv" divisions, each belonging to one
// of four sections: case metadata, leitsätze (legal principles), tenor
// (decision summary) or the verdict body. Divisions are classified,
// their fields extracted, and everything is merged into a single record
// with strict duplicate detection.
package parse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"nrwe-scraper/lib/nrwe/verdict"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("nrwe/parse")

var (
	// ErrDuplicateSection means a document carried two divisions of the
	// same section type.
	ErrDuplicateSection = errors.New("duplicate section")
	// ErrDuplicateKey means two sections produced the same field key.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrFieldCount means a division's label and content sequences had
	// different lengths.
	ErrFieldCount = errors.New("label/content count mismatch")
)

// Record is the flat output for one document: every extracted field
// keyed by its normalized label, plus the raw markup of the verdict
// division.
type Record struct {
	// Fp is the document's path relative to the docs directory.
	Fp          string
	Fields      map[string]string
	VerdictHtml string
}

// MarshalJSON flattens the record into a single JSON object, with the
// reserved fp and verdict_html keys alongside the extracted fields.
func (r Record) MarshalJSON() ([]byte, error) {
	flat := make(map[string]string, len(r.Fields)+2)
	for k, v := range r.Fields {
		flat[k] = v
	}
	flat["fp"] = r.Fp
	flat["verdict_html"] = r.VerdictHtml
	return json.Marshal(flat)
}

// mergeOrder is the order in which section fields are unioned into the
// final record.
var mergeOrder = []category{categoryMeta, categoryLeitsaetze, categoryTenor, categoryVerdict}

// ParseDocument walks the document's divisions, classifies each one,
// extracts its fields and merges everything into one Record.
//
// Ambiguous and unknown divisions are logged and skipped. A second
// division of a section that already holds data, a field-count mismatch,
// or a field key produced by two sections are fatal for the document.
func ParseDocument(ctx context.Context, doc *goquery.Document, fp string) (Record, error) {
	ctx, span := tracer.Start(ctx, "ParseDocument")
	defer span.End()

	sections := map[category]map[string]string{}
	verdictHtml := ""

	divs := doc.Find("div.maindiv")
	for i := range divs.Nodes {
		div := divs.Eq(i)
		if strings.TrimSpace(div.Text()) == "" {
			continue
		}

		matched := classify(div)
		if len(matched) > 1 {
			names := make([]string, len(matched))
			for j, c := range matched {
				names[j] = c.String()
			}
			slog.ErrorContext(ctx, "multiple division types identified, skipping division",
				"fp", fp, "types", strings.Join(names, ","))
			continue
		}
		if len(matched) == 0 {
			slog.ErrorContext(ctx, "unknown division, skipping division", "fp", fp)
			continue
		}

		cat := matched[0]
		if len(sections[cat]) > 0 {
			return Record{}, fmt.Errorf("%w: multiple %s divisions found in %s", ErrDuplicateSection, cat, fp)
		}

		if cat == categoryVerdict {
			sections[cat] = verdict.Extract(div).Fields()
			html, err := goquery.OuterHtml(div)
			if err != nil {
				return Record{}, fmt.Errorf("serialize verdict division in %s: %w", fp, err)
			}
			verdictHtml = html
			continue
		}

		fields, err := extractFields(div)
		if err != nil {
			return Record{}, fmt.Errorf("extract %s fields in %s: %w", cat, fp, err)
		}
		sections[cat] = fields
	}

	merged := map[string]string{}
	for _, cat := range mergeOrder {
		for k, v := range sections[cat] {
			if _, taken := merged[k]; taken {
				return Record{}, fmt.Errorf("%w: %q produced by %s section in %s", ErrDuplicateKey, k, cat, fp)
			}
			merged[k] = v
		}
	}

	return Record{
		Fp:          fp,
		Fields:      merged,
		VerdictHtml: verdictHtml,
	}, nil
}

// ParseFile reads and parses a single downloaded case document. rel is
// the path recorded in the output record.
func ParseFile(ctx context.Context, path, rel string) (Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return Record{}, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return Record{}, fmt.Errorf("parse html %s: %w", rel, err)
	}
	return ParseDocument(ctx, doc, rel)
}
