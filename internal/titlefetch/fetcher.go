// Package titlefetch reads the <title> of a remote page on the user's
// behalf.
package titlefetch

import (
	"context"
	"crypto/tls"
	"html"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds the whole fetch, body read included.
	DefaultTimeout = 5 * time.Second
	// UserAgent is sent on every request.
	UserAgent = "Mozilla/5.0 (compatible; SmartBookmark/1.0)"

	maxBodyBytes = 1 << 20
)

var titleRe = regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`)

// Fetcher performs one GET per call and never retries.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

type Option func(*Fetcher)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = newClient(f.timeout)
	}
	return f
}

func newClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: timeout,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			MaxIdleConns:    20,
			IdleConnTimeout: 90 * time.Second,
		},
	}
}

// Fetch returns the trimmed page title of rawURL, or "" on any failure.
// Error pages are read like any other page.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) string {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return ""
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return ""
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return ""
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil && len(body) == 0 {
		return ""
	}
	return ExtractTitle(string(body))
}

// ExtractTitle returns the first <title> text of page, entity-decoded and
// trimmed.
func ExtractTitle(page string) string {
	m := titleRe.FindStringSubmatch(page)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(m[1]))
}
