package parse

import (
	"context"
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// BatchResult counts the outcome of a directory run.
type BatchResult struct {
	Parsed int
	Failed int
}

// ListDocuments returns every html document under the docs directory,
// in walk order.
func ListDocuments(docsDir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(docsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".html") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// ParseDir parses every html document under docsDir and appends one JSON
// line per document to outPath, which is truncated first.
//
// A document that fails to parse is logged and skipped; lines already
// written for other documents are left intact. Only i/o errors on the
// output file abort the batch. onDoc, if set, is called after every
// document attempt.
func ParseDir(ctx context.Context, docsDir, outPath string, onDoc func(rel string)) (BatchResult, error) {
	ctx, span := tracer.Start(ctx, "ParseDir")
	defer span.End()

	paths, err := ListDocuments(docsDir)
	if err != nil {
		return BatchResult{}, err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return BatchResult{}, err
	}
	defer out.Close()
	enc := json.NewEncoder(out)

	var result BatchResult
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		rel, err := filepath.Rel(docsDir, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		record, err := ParseFile(ctx, path, rel)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse document", "fp", rel, "err", err)
			result.Failed++
			if onDoc != nil {
				onDoc(rel)
			}
			continue
		}

		if err := enc.Encode(record); err != nil {
			return result, err
		}
		result.Parsed++
		if onDoc != nil {
			onDoc(rel)
		}
	}

	return result, nil
}
