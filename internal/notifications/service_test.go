package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nycterent/thefilter/internal/config"
	"github.com/nycterent/thefilter/internal/notifications"
)

type ntfyRequest struct {
	title    string
	tags     string
	priority string
	body     string
}

// newNtfyServer records each publish POSTed to it.
func newNtfyServer(t *testing.T, requests *[]ntfyRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("ntfy got method %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		*requests = append(*requests, ntfyRequest{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(t *testing.T, topic string) notifications.Service {
	t.Helper()
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	cfg.Notifications.RequestTimeout = 5
	return notifications.NewService(&cfg)
}

func TestNoopServiceWithoutTopic(t *testing.T) {
	svc := newTestService(t, "")
	if err := svc.NotifyRunSucceeded(context.Background(), "Curated Briefing 007", "https://example.com", 1); err != nil {
		t.Fatalf("noop notifier returned %v", err)
	}
}

func TestRunOutcomeMessages(t *testing.T) {
	cases := []struct {
		name   string
		notify func(svc notifications.Service) error
		want   ntfyRequest
	}{
		{
			name: "succeeded first try",
			notify: func(svc notifications.Service) error {
				return svc.NotifyRunSucceeded(context.Background(), "Curated Briefing 007", "https://buttondown.email/thefilter/archive/007", 1)
			},
			want: ntfyRequest{
				title:    "The Filter - Published",
				tags:     "thefilter,publish,succeeded",
				priority: "high",
				body:     "✅ Issue live: Curated Briefing 007\nhttps://buttondown.email/thefilter/archive/007",
			},
		},
		{
			name: "succeeded after retries",
			notify: func(svc notifications.Service) error {
				return svc.NotifyRunSucceeded(context.Background(), "Curated Briefing 008", "", 3)
			},
			want: ntfyRequest{
				title:    "The Filter - Published",
				tags:     "thefilter,publish,succeeded",
				priority: "high",
				body:     "✅ Issue live: Curated Briefing 008\nPublished after 3 attempts",
			},
		},
		{
			name: "failed verification",
			notify: func(svc notifications.Service) error {
				return svc.NotifyRunFailed(context.Background(), "Curated Briefing 009", "failed_verification", "retries exhausted")
			},
			want: ntfyRequest{
				title:    "The Filter - Run Failed",
				tags:     "thefilter,run,failed",
				priority: "high",
				body:     "❌ failed_verification: Curated Briefing 009\nretries exhausted",
			},
		},
		{
			name: "test notification",
			notify: func(svc notifications.Service) error {
				return svc.TestNotification(context.Background())
			},
			want: ntfyRequest{
				title:    "The Filter - Test",
				tags:     "thefilter,test",
				priority: "low",
				body:     "🧪 Notification system test",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got []ntfyRequest
			srv := newNtfyServer(t, &got)
			svc := newTestService(t, srv.URL)

			if err := tc.notify(svc); err != nil {
				t.Fatalf("notify: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("expected one ntfy publish, got %d", len(got))
			}
			if got[0] != tc.want {
				t.Fatalf("ntfy request mismatch:\n got %+v\nwant %+v", got[0], tc.want)
			}
		})
	}
}

func TestSendSurfacesHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	err := newTestService(t, srv.URL).TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error for http 500")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Fatalf("error should carry the status code: %v", err)
	}
}
