package document

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nycterent/thefilter/internal/services"
)

const (
	defaultFetchTimeout = 30 * time.Second
	// maxSourceBytes caps fetched documents; a newsletter is kilobytes,
	// anything near this limit is not one.
	maxSourceBytes = 8 << 20
)

// Loader resolves newsletter sources. A source is either a local file path
// or an http(s) URL.
type Loader struct {
	httpClient *http.Client
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		if client != nil {
			l.httpClient = client
		}
	}
}

// WithFetchTimeout sets the per-fetch timeout for URL sources.
func WithFetchTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d > 0 {
			l.httpClient.Timeout = d
		}
	}
}

// NewLoader constructs a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	loader := &Loader{
		httpClient: &http.Client{Timeout: defaultFetchTimeout},
	}
	for _, opt := range opts {
		opt(loader)
	}
	return loader
}

// Load fetches and parses one newsletter source. Errors out of Load are
// hard input errors: the source could not be reached or could not be
// interpreted as a newsletter at all.
func (l *Loader) Load(ctx context.Context, source string) (*Document, error) {
	raw, err := l.fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	return Parse(source, raw)
}

// LoadRaw fetches a source without parsing it. Publishing posts the
// rendered text as-is, so it needs the bytes the linter saw, not the model.
func (l *Loader) LoadRaw(ctx context.Context, source string) (string, error) {
	raw, err := l.fetch(ctx, source)
	if err != nil {
		return "", err
	}
	return normalizeInput(raw), nil
}

// IsURL reports whether the source should be fetched over HTTP.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	if IsURL(source) {
		return l.fetchURL(ctx, source)
	}
	raw, err := os.ReadFile(source)
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "lint", "load", fmt.Sprintf("read %s", source), err)
	}
	return raw, nil
}

func (l *Loader) fetchURL(ctx context.Context, source string) ([]byte, error) {
	// A "null" in the URL means an upstream template variable was never
	// filled in; fetching it would lint the platform's 404 page.
	if strings.Contains(strings.ToLower(source), "null") {
		return nil, services.Wrap(services.ErrValidation, "lint", "load",
			fmt.Sprintf("url contains unresolved placeholder: %s", source), nil)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "lint", "load", fmt.Sprintf("invalid url %s", source), err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "lint", "load", fmt.Sprintf("fetch %s", source), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrTransient, "lint", "load",
			fmt.Sprintf("fetch %s: http %d", source, resp.StatusCode), nil)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "lint", "load", fmt.Sprintf("read %s", source), err)
	}
	return raw, nil
}
