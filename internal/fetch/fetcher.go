package fetch

import (
	"context"
	"errors"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/clearseek/clearseek/internal/config"
)

// Response is a successful retrieval.
type Response struct {
	// URL is the requested URL. Redirect chains are followed by the
	// client; FinalURL records where the content actually came from.
	URL      string
	FinalURL string

	// StatusCode is the HTTP status (always 2xx here).
	StatusCode int

	// ContentType is the media type without parameters, e.g. "text/html".
	ContentType string

	// Body is the response body, at most the configured byte cap.
	Body []byte

	// FetchedAt is when the response was fully read.
	FetchedAt time.Time
}

// textualTypes are the content types the extraction pipeline handles.
// Everything else is classified KindUnsupportedContentType. A closed
// set keeps content dispatch explicit.
var textualTypes = map[string]bool{
	"text/html":             true,
	"application/xhtml+xml": true,
	"text/plain":            true,
}

// Fetcher performs single bounded retrievals.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	timeout   time.Duration
	maxBody   int64
	userAgent string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithClient sets the HTTP client. The client's own timeout is left
// untouched; the fetcher applies its per-request timeout via context.
func WithClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithTimeout sets the hard wall-clock timeout per request.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxBodyBytes sets the response body cap. Transfers are aborted
// once the cap is exceeded rather than buffered.
func WithMaxBodyBytes(n int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBody = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithRateLimit bounds the global request rate across all callers.
// rps is requests per second; burst allows short spikes.
func WithRateLimit(rps float64, burst int) FetcherOption {
	return func(f *Fetcher) {
		f.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewFetcher creates a Fetcher with sane defaults: 10s timeout, 5MB
// body cap, and a global limit of 10 requests per second.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{},
		limiter:   rate.NewLimiter(rate.Limit(10), 10),
		timeout:   config.DefaultFetchTimeout,
		maxBody:   config.DefaultMaxContentBytes,
		userAgent: config.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch retrieves one URL. On failure it returns a *Error whose Kind
// the caller dispatches on. Fetch never retries.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, &Error{Kind: KindTimeout, URL: pageURL, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindConnectionRefused, URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: classifyTransport(err), URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little so the connection can be reused, then classify.
		_, _ = io.CopyN(io.Discard, resp.Body, 512)
		return nil, &Error{Kind: KindHTTPStatus, URL: pageURL, StatusCode: resp.StatusCode}
	}

	contentType := mediaType(resp.Header.Get("Content-Type"))
	if !textualTypes[contentType] {
		return nil, &Error{Kind: KindUnsupportedContentType, URL: pageURL,
			Err: errors.New("content type " + contentType)}
	}

	// Read one byte past the cap: exactly maxBody bytes is fine,
	// maxBody+1 proves the body is too large and aborts the transfer.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, &Error{Kind: classifyTransport(err), URL: pageURL, Err: err}
	}
	if int64(len(body)) > f.maxBody {
		return nil, &Error{Kind: KindTooLarge, URL: pageURL}
	}

	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Response{
		URL:         pageURL,
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
		FetchedAt:   time.Now(),
	}, nil
}

// classifyTransport maps a transport-level error to a fetch kind.
// Timeouts and context deadlines are KindTimeout; every other failure
// to obtain a response (refused, reset, DNS) is KindConnectionRefused,
// since the retry handling is identical.
func classifyTransport(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindConnectionRefused
}

// mediaType strips parameters from a Content-Type header value.
func mediaType(header string) string {
	if header == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(header, ";")[0]))
	}
	return mt
}
