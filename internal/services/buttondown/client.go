package buttondown

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nycterent/thefilter/internal/config"
	"github.com/nycterent/thefilter/internal/services"
)

const (
	defaultBaseURL     = "https://api.buttondown.email"
	defaultHTTPTimeout = 30 * time.Second
)

// Client wraps the Buttondown emails API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes the Buttondown client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// NewClient constructs a Buttondown API client.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// NewFromConfig builds a client from the Buttondown configuration section.
func NewFromConfig(cfg *config.Config, opts ...Option) *Client {
	if cfg == nil {
		return NewClient("", opts...)
	}
	timeout := time.Duration(cfg.Buttondown.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	base := []Option{
		WithBaseURL(cfg.Buttondown.BaseURL),
		WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	return NewClient(cfg.Buttondown.APIKey, append(base, opts...)...)
}

// Email captures the subset of the Buttondown email resource the pipeline
// needs: the draft id, its subject, and the public archive URL once sent.
type Email struct {
	ID           string `json:"id"`
	Subject      string `json:"subject"`
	Body         string `json:"body,omitempty"`
	Status       string `json:"status,omitempty"`
	AbsoluteURL  string `json:"absolute_url,omitempty"`
	CreationDate string `json:"creation_date,omitempty"`
}

type emailRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// CreateDraft stores a new draft email and returns it with the id assigned
// by Buttondown.
func (c *Client) CreateDraft(ctx context.Context, subject, body string) (Email, error) {
	var empty Email
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return empty, services.Wrap(services.ErrPermanent, "buttondown", "create draft", "subject required", nil)
	}
	status, respBody, err := c.do(ctx, "create draft", http.MethodPost, "/v1/emails", emailRequest{Subject: subject, Body: body})
	if err != nil {
		return empty, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return empty, classifyHTTPError("create draft", status, respBody)
	}
	var email Email
	if err := json.Unmarshal(respBody, &email); err != nil {
		return empty, services.Wrap(services.ErrParse, "buttondown", "create draft", "decode response", err)
	}
	if strings.TrimSpace(email.ID) == "" {
		return empty, services.Wrap(services.ErrParse, "buttondown", "create draft", "response missing email id", nil)
	}
	return email, nil
}

// Send publishes a stored draft so it appears in the public archive.
// Sending a draft that already went out counts as success.
func (c *Client) Send(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return services.Wrap(services.ErrPermanent, "buttondown", "send", "email id required", nil)
	}
	status, respBody, err := c.do(ctx, "send", http.MethodPost, "/v1/emails/"+url.PathEscape(id)+"/send", nil)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return nil
	}
	if alreadySent(status, respBody) {
		return nil
	}
	return classifyHTTPError("send", status, respBody)
}

// GetEmail fetches a single email by id.
func (c *Client) GetEmail(ctx context.Context, id string) (Email, error) {
	var empty Email
	id = strings.TrimSpace(id)
	if id == "" {
		return empty, services.Wrap(services.ErrPermanent, "buttondown", "get email", "email id required", nil)
	}
	status, respBody, err := c.do(ctx, "get email", http.MethodGet, "/v1/emails/"+url.PathEscape(id), nil)
	if err != nil {
		return empty, err
	}
	if status == http.StatusNotFound {
		return empty, services.Wrap(services.ErrNotFound, "buttondown", "get email", "email "+id, nil)
	}
	if status != http.StatusOK {
		return empty, classifyHTTPError("get email", status, respBody)
	}
	var email Email
	if err := json.Unmarshal(respBody, &email); err != nil {
		return empty, services.Wrap(services.ErrParse, "buttondown", "get email", "decode response", err)
	}
	return email, nil
}

// ListEmails returns the first page of existing emails, newest first per the
// API default. One page is enough for issue numbering; the archive is small.
func (c *Client) ListEmails(ctx context.Context) ([]Email, error) {
	status, respBody, err := c.do(ctx, "list emails", http.MethodGet, "/v1/emails", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, classifyHTTPError("list emails", status, respBody)
	}
	var page struct {
		Results []Email `json:"results"`
	}
	if err := json.Unmarshal(respBody, &page); err != nil {
		return nil, services.Wrap(services.ErrParse, "buttondown", "list emails", "decode response", err)
	}
	return page.Results, nil
}

// NextIssueNumber derives the next sequential issue number by counting
// existing emails whose subject contains the marker phrase.
func NextIssueNumber(emails []Email, marker string) int {
	count := 0
	for _, email := range emails {
		if strings.Contains(email.Subject, marker) {
			count++
		}
	}
	return count + 1
}

func (c *Client) do(ctx context.Context, op, method, path string, payload any) (int, []byte, error) {
	if c.apiKey == "" {
		return 0, nil, services.Wrap(services.ErrConfiguration, "buttondown", op, "api key required", nil)
	}
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return 0, nil, services.Wrap(services.ErrPermanent, "buttondown", op, "build url", err)
	}
	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, services.Wrap(services.ErrPermanent, "buttondown", op, "encode request", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, services.Wrap(services.ErrPermanent, "buttondown", op, "build request", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, services.Wrap(services.ErrTransient, "buttondown", op, "request failed", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, services.Wrap(services.ErrTransient, "buttondown", op, "read response", err)
	}
	return resp.StatusCode, respBody, nil
}

// alreadySent detects the rejection Buttondown returns when a draft has been
// sent before, which publish retries must treat as success.
func alreadySent(status int, body []byte) bool {
	if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
		return false
	}
	text := strings.ToLower(string(body))
	return strings.Contains(text, "already") && strings.Contains(text, "sent")
}

func classifyHTTPError(op string, status int, body []byte) error {
	detail := fmt.Sprintf("http %d", status)
	if snippet := compactBody(body); snippet != "" {
		detail += ": " + snippet
	}
	marker := services.ErrPermanent
	if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
		marker = services.ErrTransient
	}
	return services.Wrap(marker, "buttondown", op, detail, nil)
}

func compactBody(body []byte) string {
	text := strings.Join(strings.Fields(string(body)), " ")
	const max = 200
	if len(text) > max {
		text = text[:max] + "..."
	}
	return text
}
