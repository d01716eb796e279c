package util

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
)

// BrowserHeaders is the fuller header set for sites that reject bare clients.
var BrowserHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Referer":                   "https://google.com",
	"DNT":                       "1",
	"Upgrade-Insecure-Requests": "1",
}

// Client performs the plain GETs every adapter needs: browser-like identity,
// bounded timeout, per-host pacing.
type Client struct {
	HC        *http.Client
	UserAgent string
	Limiter   *HostLimiter
}

func NewClient(userAgent string, timeout time.Duration, limiter *HostLimiter) *Client {
	return &Client{
		HC:        &http.Client{Timeout: timeout},
		UserAgent: userAgent,
		Limiter:   limiter,
	}
}

// Get returns the response body for a 2xx/3xx response; the caller closes it.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) (io.ReadCloser, error) {
	if err := c.Limiter.WaitURL(ctx, rawURL); err != nil {
		return nil, errors.Wrap(err, "rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request %s", rawURL)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := c.HC.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", rawURL)
	}
	if res.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		res.Body.Close()
		return nil, errors.Newf("get %s: status %d", rawURL, res.StatusCode)
	}
	return res.Body, nil
}

// FetchDocument GETs rawURL and parses it as HTML.
func (c *Client) FetchDocument(ctx context.Context, rawURL string, headers map[string]string) (*goquery.Document, error) {
	body, err := c.Get(ctx, rawURL, headers)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, errors.Wrapf(err, "parse html %s", rawURL)
	}
	return doc, nil
}
