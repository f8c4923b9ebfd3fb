// Package session provides the cookie-bearing HTTP client shared by all
// requests of one crawl run, so a login affects every later fetch.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout     = 60 * time.Second
	defaultAttempts    = 3
	defaultBackoffBase = 2 * time.Second
	defaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

var defaultHeaders = map[string]string{
	"Accept":          "*/*",
	"Accept-Language": "en-US,en;q=0.9",
	"Connection":      "keep-alive",
}

// ErrNoURL is returned when a request omits its URL before any URL was used.
var ErrNoURL = errors.New("no url given and no previous request to reuse")

type Options struct {
	// Timeout bounds a page request including its body. Downloads are only
	// bounded by it while waiting for response headers; the body transfer
	// runs as long as the caller's context allows.
	Timeout   time.Duration
	UserAgent string
	// Headers are sent with every request on top of the defaults.
	Headers map[string]string

	// Attempts bounds download retries. Zero means the default of 3.
	Attempts int
	// BackoffBase is the unit of the exponential delay between download attempts.
	BackoffBase time.Duration

	// RequestInterval is the minimum spacing between page requests. Zero disables pacing.
	RequestInterval time.Duration
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:     defaultTimeout,
		UserAgent:   defaultUserAgent,
		Attempts:    defaultAttempts,
		BackoffBase: defaultBackoffBase,
	}
}

type Request struct {
	// URL may be empty to repeat the request against the last requested URL.
	URL         string
	Method      string
	Headers     map[string]string
	Body        string
	ContentType string
}

type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       string
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Session is not safe for concurrent use: it carries the last requested URL.
type Session struct {
	http    *resty.Client
	opts    Options
	limiter *rate.Limiter
	lastURL string

	sleep func(ctx context.Context, d time.Duration) error
}

func New(opts Options) (*Session, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Attempts <= 0 {
		opts.Attempts = defaultAttempts
	}
	if opts.BackoffBase < 0 {
		opts.BackoffBase = 0
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	client := resty.New()
	client.SetCookieJar(jar)
	client.SetTransport(newTransport(opts.Timeout))
	client.SetHeaders(defaultHeaders)
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetHeaders(opts.Headers)

	s := &Session{
		http:  client,
		opts:  opts,
		sleep: sleepContext,
	}
	if opts.RequestInterval > 0 {
		s.limiter = rate.NewLimiter(rate.Every(opts.RequestInterval), 1)
	}
	return s, nil
}

// LastURL returns the most recently requested page URL.
func (s *Session) LastURL() string {
	return s.lastURL
}

// Do performs a request. A non-2xx status is logged and returned, not treated
// as an error; transport failures are errors.
func (s *Session) Do(ctx context.Context, req Request) (*Response, error) {
	url := req.URL
	if url == "" {
		if s.lastURL == "" {
			return nil, ErrNoURL
		}
		url = s.lastURL
	} else {
		s.lastURL = url
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	r := s.http.R().SetHeaders(req.Headers)
	if req.Body != "" {
		r.SetBody(req.Body)
	}
	if req.ContentType != "" {
		r.SetHeader("Content-Type", req.ContentType)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	r.SetContext(ctx)

	slog.Debug("making request", "method", method, "url", url)

	res, err := r.Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("failed to %s %s: %w", method, url, err)
	}

	resp := &Response{
		URL:        url,
		StatusCode: res.StatusCode(),
		Header:     res.Header(),
		Body:       string(res.Body()),
	}
	if !resp.OK() {
		slog.Warn("http status warning", "method", method, "url", url, "status", resp.StatusCode)
	}
	return resp, nil
}

// Download streams url into destDir, naming the file after the URL's last
// path segment. Failed attempts are retried with exponential backoff; after
// the last attempt a *DownloadError is returned. Downloads do not change
// LastURL.
func (s *Session) Download(ctx context.Context, url, destDir string) (string, error) {
	name, err := FilenameFromURL(url)
	if err != nil {
		return "", &DownloadError{URL: url, Err: err}
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}
	target, err := filepath.Abs(filepath.Join(destDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to resolve download path: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < s.opts.Attempts; attempt++ {
		if attempt > 0 {
			if err := s.sleep(ctx, Backoff(s.opts.BackoffBase, attempt)); err != nil {
				return "", err
			}
		}

		lastErr = s.fetchToFile(ctx, url, target)
		if lastErr == nil {
			slog.Debug("downloaded file", "url", url, "path", target)
			return target, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		slog.Warn("download attempt failed", "url", url, "attempt", attempt+1, "attempts", s.opts.Attempts, "error", lastErr)
	}

	return "", &DownloadError{URL: url, Attempts: s.opts.Attempts, Err: lastErr}
}

func (s *Session) fetchToFile(ctx context.Context, url, target string) error {
	res, err := s.http.R().
		SetContext(ctx).
		SetOutput(target).
		Get(url)
	if err != nil {
		os.Remove(target)
		return err
	}
	if !res.IsSuccess() {
		os.Remove(target)
		return &StatusError{StatusCode: res.StatusCode()}
	}
	return nil
}

// newTransport bounds connection setup and the wait for response headers,
// never the body, so long downloads keep streaming.
func newTransport(timeout time.Duration) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.ResponseHeaderTimeout = timeout
	t.TLSHandshakeTimeout = min(timeout, 10*time.Second)
	return t
}

// Backoff returns the delay before the given retry attempt: base * 2^attempt.
func Backoff(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(1<<uint(attempt))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
