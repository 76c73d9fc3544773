package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/nycterent/thefilter/internal/config"
	"github.com/nycterent/thefilter/internal/services"
)

const (
	defaultHTTPTimeout = 15 * time.Second
	maxBodyBytes       = 1 << 20
)

// State classifies the outcome of one archive probe.
type State string

const (
	// Verified means the archive page is live and carries the markers.
	Verified State = "verified"
	// NotYetVisible means the platform answered but the issue is not
	// published there yet. Archives propagate; retry later.
	NotYetVisible State = "not_yet_visible"
	// Unreachable means the platform itself could not be queried.
	Unreachable State = "unreachable"
)

// Result is the outcome of a single probe.
type Result struct {
	State  State
	URL    string
	Detail string
}

// Prober fetches archive pages and checks them for content markers.
type Prober struct {
	baseURL    string
	marker     string
	httpClient *http.Client
}

// Option customizes the prober.
type Option func(*Prober)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Prober) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// New constructs a prober for the given archive base URL. The marker phrase
// must appear in the fetched page body for a probe to count as verified; an
// empty marker requires only the email id itself.
func New(archiveBaseURL, marker string, opts ...Option) *Prober {
	prober := &Prober{
		baseURL:    strings.TrimRight(strings.TrimSpace(archiveBaseURL), "/"),
		marker:     strings.TrimSpace(marker),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(prober)
	}
	if prober.httpClient == nil {
		prober.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return prober
}

// NewFromConfig builds a prober from the Verify configuration section.
func NewFromConfig(cfg *config.Config, opts ...Option) *Prober {
	if cfg == nil {
		return New("", "", opts...)
	}
	timeout := time.Duration(cfg.Verify.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	base := []Option{WithHTTPClient(&http.Client{Timeout: timeout})}
	return New(cfg.Verify.ArchiveBaseURL, cfg.Verify.ContentMarker, append(base, opts...)...)
}

// idPattern accepts the identifier shapes Buttondown issues: UUIDs and
// archive slugs. Anything shorter than four characters is noise.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{3,}$`)

// plausibleID rejects identifiers that can only come from an upstream bug,
// such as a stringified nil leaking into the URL.
func plausibleID(id string) bool {
	if !idPattern.MatchString(id) {
		return false
	}
	lower := strings.ToLower(id)
	return !strings.Contains(lower, "null") && !strings.Contains(lower, "none")
}

// Verify probes the archive page derived from the email id.
func (p *Prober) Verify(ctx context.Context, id string) (Result, error) {
	id = strings.TrimSpace(id)
	if !plausibleID(id) {
		return Result{}, services.Wrap(services.ErrPermanent, "verify", "probe", fmt.Sprintf("implausible email id %q", id), nil)
	}
	target, err := url.JoinPath(p.baseURL, id)
	if err != nil {
		return Result{}, services.Wrap(services.ErrPermanent, "verify", "probe", "build archive url", err)
	}
	return p.VerifyURL(ctx, target, id)
}

// VerifyURL probes an explicit archive URL, typically the absolute URL the
// platform returned at publish time, and checks it for the email id and the
// marker phrase.
func (p *Prober) VerifyURL(ctx context.Context, target, id string) (Result, error) {
	id = strings.TrimSpace(id)
	if !plausibleID(id) {
		return Result{}, services.Wrap(services.ErrPermanent, "verify", "probe", fmt.Sprintf("implausible email id %q", id), nil)
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, "verify", "probe", "archive url required", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Result{}, services.Wrap(services.ErrPermanent, "verify", "probe", "build request", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Result{State: Unreachable, URL: target, Detail: shortError(err)}, nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return Result{State: Unreachable, URL: target, Detail: shortError(err)}, nil
		}
		if p.markersPresent(string(body), id) {
			return Result{State: Verified, URL: target}, nil
		}
		return Result{State: NotYetVisible, URL: target, Detail: "content markers missing"}, nil
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusGone:
		return Result{State: NotYetVisible, URL: target, Detail: fmt.Sprintf("archive returned %d", resp.StatusCode)}, nil
	case resp.StatusCode == http.StatusBadRequest:
		return Result{}, services.Wrap(services.ErrPermanent, "verify", "probe", fmt.Sprintf("archive rejected identifier: http %d", resp.StatusCode), nil)
	default:
		return Result{State: Unreachable, URL: target, Detail: fmt.Sprintf("archive returned %d", resp.StatusCode)}, nil
	}
}

func (p *Prober) markersPresent(body, id string) bool {
	if !strings.Contains(body, id) {
		return false
	}
	return p.marker == "" || strings.Contains(body, p.marker)
}

func shortError(err error) string {
	text := strings.Join(strings.Fields(err.Error()), " ")
	const max = 120
	if len(text) > max {
		text = text[:max] + "..."
	}
	return text
}
