// Package download fetches case documents for previously scraped links.
//
// Downloading is a thin, retried HTTP wrapper: the interesting output
// contract is just "the html body of every valid link, on disk, under a
// path mirroring the url path".
package download

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"nrwe-scraper/lib/casestore"
	"nrwe-scraper/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/88.0.4324.150 Safari/537.36"

type Client struct {
	http    *resty.Client
	docsDir string
}

// NewClient builds a download client writing documents under docsDir.
func NewClient(docsDir string) (*Client, error) {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", userAgent)
	client.SetHeader("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("accept-language", "en-US,en;q=0.9")
	client.SetHeader("referer", "https://www.google.com/")
	client.SetTimeout(time.Second * 60)

	client.SetRetryCount(5)
	client.SetRetryWaitTime(time.Second * 2)
	client.SetRetryMaxWaitTime(time.Minute)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return res.StatusCode() == 429 || res.StatusCode() >= 500
	})

	telemetry.InstrumentResty(client, "nrwe/download")

	return &Client{
		http:    client,
		docsDir: docsDir,
	}, nil
}

// ParseUrl validates an href scraped from the result pages. A usable
// link is absolute, http(s), points at an .html document and carries no
// query or fragment.
func ParseUrl(href string) (*url.URL, error) {
	if href == "" {
		return nil, fmt.Errorf("empty href")
	}
	u, err := url.Parse(href)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("url is not absolute: %s", href)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid scheme: %s", href)
	}
	if !strings.HasSuffix(u.Path, ".html") {
		return nil, fmt.Errorf("url is not a html document: %s", href)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, fmt.Errorf("url contains query parameters or fragments: %s", href)
	}
	return u, nil
}

// OutputPath is where the document behind u ends up on disk.
func (c *Client) OutputPath(u *url.URL) string {
	return filepath.Join(c.docsDir, filepath.FromSlash(strings.TrimPrefix(u.Path, "/")))
}

// Fetch downloads one document, skipping work when the output file
// already exists. Responses that are not html are logged and discarded.
func (c *Client) Fetch(ctx context.Context, u *url.URL) error {
	outputFile := c.OutputPath(u)
	if _, err := os.Stat(outputFile); err == nil {
		return nil
	}
	err := os.MkdirAll(filepath.Dir(outputFile), 0755)
	if err != nil {
		return err
	}

	res, err := c.http.R().SetContext(ctx).Get(u.String())
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("fetch %s: status %d", u, res.StatusCode())
	}

	contentType := strings.ToLower(strings.TrimSpace(res.Header().Get("content-type")))
	if !strings.HasPrefix(contentType, "text/html") {
		slog.WarnContext(ctx, "url is not a html doc", "url", u.String(), "content_type", contentType)
		return nil
	}

	return os.WriteFile(outputFile, res.Body(), 0644)
}

// Result reports one link's download outcome to the caller.
type Result struct {
	Href string
	Err  error
}

// All downloads every link through a fixed-size worker pool. Invalid
// hrefs and failed downloads are logged and reported through onResult;
// they never abort the batch.
func (c *Client) All(ctx context.Context, links []casestore.Link, concurrency int, onResult func(Result)) {
	if concurrency <= 0 {
		concurrency = 1
	}

	sem := make(chan struct{}, concurrency)
	wg := sync.WaitGroup{}
	var reportLock sync.Mutex

	report := func(r Result) {
		if onResult == nil {
			return
		}
		reportLock.Lock()
		defer reportLock.Unlock()
		onResult(r)
	}

	for _, link := range links {
		u, err := ParseUrl(link.Href)
		if err != nil {
			slog.WarnContext(ctx, "skipping invalid href", "href", link.Href, "err", err)
			report(Result{Href: link.Href, Err: err})
			continue
		}

		wg.Add(1)
		go func(link casestore.Link, u *url.URL) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			err := c.Fetch(ctx, u)
			if err != nil {
				slog.WarnContext(ctx, "failed to download document", "href", link.Href, "err", err)
			}
			report(Result{Href: link.Href, Err: err})
		}(link, u)
	}

	wg.Wait()
}
