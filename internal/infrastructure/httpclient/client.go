package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"KijiScanner/internal/ports"
)

const (
	defaultTimeout  = 20 * time.Second
	defaultMaxBytes = 10 << 20

	// charset.DetermineEncoding's answer when nothing is declared.
	guessedCharset = "windows-1252"
)

// DefaultHeaders is the browser-like header set attached to every request so
// the outlets do not reject the crawler outright.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.11 (KHTML, like Gecko) Chrome/23.0.1271.64 Safari/537.11",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Charset":  "ISO-8859-1,utf-8;q=0.7,*;q=0.3",
		"Accept-Language": "en-US,en;q=0.8",
		"Referer":         "https://cssspritegenerator.com",
		"Connection":      "keep-alive",
	}
}

// HTTPError reports a non-2xx response.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// HTTPStatus returns the response status code.
func (e *HTTPError) HTTPStatus() int {
	return e.StatusCode
}

var _ ports.StatusError = (*HTTPError)(nil)

// Options configures a Client.
type Options struct {
	Timeout time.Duration
	// HostInterval spaces requests to one host; zero disables the limiter.
	HostInterval time.Duration
	// HostBurst is how many requests a host may receive back to back.
	HostBurst    int
	Headers      map[string]string
	MaxBodyBytes int64
}

// Client fetches feeds and article pages and returns their UTF-8 bytes.
type Client struct {
	client   *http.Client
	headers  http.Header
	hosts    *hostLimiter
	maxBytes int64
}

var _ ports.PageFetcher = (*Client)(nil)

// New builds a client; zero options fall back to defaults.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBytes
	}
	if opts.Headers == nil {
		opts.Headers = DefaultHeaders()
	}

	headers := http.Header{}
	for k, v := range opts.Headers {
		headers.Set(k, v)
	}

	return &Client{
		client:   &http.Client{Timeout: opts.Timeout},
		headers:  headers,
		hosts:    newHostLimiter(opts.HostInterval, opts.HostBurst),
		maxBytes: opts.MaxBodyBytes,
	}
}

// Fetch performs a GET and returns the body decoded to UTF-8.
func (c *Client) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header = c.headers.Clone()

	if err := c.hosts.wait(ctx, req.URL.Host); err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", pageURL, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: pageURL}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", pageURL, err)
	}

	payload, err := toUTF8(raw, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", pageURL, err)
	}
	return payload, nil
}

// toUTF8 converts raw only when its encoding is declared (BOM, Content-Type
// charset or <meta charset>). Undeclared bodies are passed through as UTF-8
// instead of taking the windows-1252 guess.
func toUTF8(raw []byte, contentType string) ([]byte, error) {
	enc, name, certain := charset.DetermineEncoding(raw, contentType)
	if !certain && name == guessedCharset {
		return raw, nil
	}
	if name == "utf-8" {
		return raw, nil
	}
	return enc.NewDecoder().Bytes(raw)
}
