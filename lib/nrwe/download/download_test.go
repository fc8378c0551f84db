package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"nrwe-scraper/lib/casestore"
	"nrwe-scraper/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestParseUrl(t *testing.T) {
	testCases := []struct {
		href  string
		valid bool
	}{
		{href: "https://www.justiz.nrw/nrwe/olgs/hamm/j2022/case.html", valid: true},
		{href: "http://www.justiz.nrw/nrwe/case.html", valid: true},
		{href: "", valid: false},
		{href: "/nrwe/olgs/case.html", valid: false},
		{href: "ftp://www.justiz.nrw/case.html", valid: false},
		{href: "https://www.justiz.nrw/nrwe/case.pdf", valid: false},
		{href: "https://www.justiz.nrw/nrwe/case.html?download=1", valid: false},
		{href: "https://www.justiz.nrw/nrwe/case.html#anchor", valid: false},
	}
	for _, test := range testCases {
		u, err := ParseUrl(test.href)
		if test.valid {
			require.NoError(t, err, test.href)
			require.Equal(t, test.href, u.String())
		} else {
			require.Error(t, err, test.href)
		}
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/nrwe/olgs/case.html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte("<html><body>doc</body></html>"))
		case "/nrwe/olgs/binary.html":
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write([]byte{0xde, 0xad})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	docsDir := t.TempDir()
	client, err := NewClient(docsDir)
	require.NoError(t, err)
	// keep failing requests from retrying for a minute
	client.http.SetRetryCount(0)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	u, err := ParseUrl(server.URL + "/nrwe/olgs/case.html")
	require.NoError(t, err)
	require.NoError(t, client.Fetch(ctx, u))

	contents, err := os.ReadFile(filepath.Join(docsDir, "nrwe", "olgs", "case.html"))
	require.NoError(t, err)
	require.Contains(t, string(contents), "doc")

	// a non-html response is dropped without error and without a file
	u, err = ParseUrl(server.URL + "/nrwe/olgs/binary.html")
	require.NoError(t, err)
	require.NoError(t, client.Fetch(ctx, u))
	_, err = os.Stat(filepath.Join(docsDir, "nrwe", "olgs", "binary.html"))
	require.True(t, os.IsNotExist(err))

	// missing documents fail
	u, err = ParseUrl(server.URL + "/nrwe/olgs/missing.html")
	require.NoError(t, err)
	require.Error(t, client.Fetch(ctx, u))
}

func TestFetchSkipsExisting(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	docsDir := t.TempDir()
	client, err := NewClient(docsDir)
	require.NoError(t, err)

	u, err := ParseUrl(server.URL + "/nrwe/case.html")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, client.Fetch(ctx, u))
	require.NoError(t, client.Fetch(ctx, u))
	require.Equal(t, int64(1), hits.Load())
}

func TestAll(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:nrwe/download")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	docsDir := t.TempDir()
	client, err := NewClient(docsDir)
	require.NoError(t, err)

	links := []casestore.Link{
		{Href: server.URL + "/nrwe/a.html"},
		{Href: server.URL + "/nrwe/b.html"},
		{Href: "not a usable href"},
	}

	var results []Result
	client.All(context.Background(), links, 2, func(r Result) {
		results = append(results, r)
	})

	require.Len(t, results, 3)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	require.Equal(t, 1, failed)

	_, err = os.Stat(filepath.Join(docsDir, "nrwe", "a.html"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(docsDir, "nrwe", "b.html"))
	require.NoError(t, err)
}
