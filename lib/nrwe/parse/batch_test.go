package parse

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nrwe-scraper/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestParseDir(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:nrwe/parse")
	defer cleanup()

	docsDir := t.TempDir()
	outPath := filepath.Join(t.TempDir(), "parsed.jsonl")

	good := "<body>" + metaDiv + verdictDiv + "</body>"
	// two meta divisions, fatal for the document but not for the batch
	broken := "<body>" + metaDiv + metaDiv + "</body>"

	require.NoError(t, os.MkdirAll(filepath.Join(docsDir, "olgs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "olgs", "good.html"), []byte(good), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "olgs", "broken.html"), []byte(broken), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "olgs", "notes.txt"), []byte("ignored"), 0644))

	var visited []string
	result, err := ParseDir(context.Background(), docsDir, outPath, func(rel string) {
		visited = append(visited, rel)
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Parsed)
	require.Equal(t, 1, result.Failed)
	require.ElementsMatch(t, []string{"olgs/good.html", "olgs/broken.html"}, visited)

	contents, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	require.Len(t, lines, 1)

	var record map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	require.Equal(t, "olgs/good.html", record["fp"])
	require.Equal(t, "03.05.2022", record["datum"])
	require.Equal(t, "format_1", record["format"])
	require.NotEmpty(t, record["verdict_html"])
}

func TestParseDirTruncatesOutput(t *testing.T) {
	docsDir := t.TempDir()
	outPath := filepath.Join(t.TempDir(), "parsed.jsonl")
	require.NoError(t, os.WriteFile(outPath, []byte("stale line\n"), 0644))

	result, err := ParseDir(context.Background(), docsDir, outPath, nil)
	require.NoError(t, err)
	require.Equal(t, BatchResult{}, result)

	contents, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Empty(t, contents)
}
