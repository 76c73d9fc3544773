package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nycterent/thefilter/internal/config"
)

const (
	userAgent = "TheFilter-Go/0.1.0"

	// ntfy error bodies are short; anything longer gets truncated in the
	// returned error.
	maxErrorBody = 2048
)

// Service defines the notification surface exposed to pipeline components.
// A run reaches exactly one terminal state, so the pipeline calls exactly
// one of the run methods per run.
type Service interface {
	NotifyRunSucceeded(ctx context.Context, title, archiveURL string, attempts int) error
	NotifyRunFailed(ctx context.Context, title, outcome, reason string) error
	TestNotification(ctx context.Context) error
}

// NewService wires run notifications to ntfy. Without a configured topic it
// returns a sink that drops everything.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

func (p payload) headers() http.Header {
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Content-Type", "text/plain; charset=utf-8")
	if p.title != "" {
		h.Set("Title", p.title)
	}
	if len(p.tags) > 0 {
		h.Set("Tags", strings.Join(p.tags, ","))
	}
	if p.priority != "" && p.priority != "default" {
		h.Set("Priority", p.priority)
	}
	return h
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunSucceeded(ctx context.Context, title, archiveURL string, attempts int) error {
	title = strings.TrimSpace(title)
	message := fmt.Sprintf("✅ Issue live: %s", title)
	if archiveURL = strings.TrimSpace(archiveURL); archiveURL != "" {
		message = fmt.Sprintf("%s\n%s", message, archiveURL)
	}
	if attempts > 1 {
		message = fmt.Sprintf("%s\nPublished after %d attempts", message, attempts)
	}
	data := payload{
		title:    "The Filter - Published",
		message:  message,
		tags:     []string{"thefilter", "publish", "succeeded"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, title, outcome, reason string) error {
	title = strings.TrimSpace(title)
	outcome = strings.TrimSpace(outcome)
	if outcome == "" {
		outcome = "failed"
	}

	var builder strings.Builder
	builder.WriteString("❌ ")
	builder.WriteString(outcome)
	if title != "" {
		builder.WriteString(": ")
		builder.WriteString(title)
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		builder.WriteString("\n")
		builder.WriteString(reason)
	}

	data := payload{
		title:    "The Filter - Run Failed",
		message:  builder.String(),
		tags:     []string{"thefilter", "run", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "The Filter - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"thefilter", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header = data.headers()

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunSucceeded(context.Context, string, string, int) error { return nil }
func (noopService) NotifyRunFailed(context.Context, string, string, string) error { return nil }
func (noopService) TestNotification(context.Context) error                        { return nil }
