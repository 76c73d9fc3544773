package buttondown_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nycterent/thefilter/internal/services"
	"github.com/nycterent/thefilter/internal/services/buttondown"
)

func TestCreateDraftPostsAndDecodesEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/emails" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Token secret" {
			t.Fatalf("unexpected auth header: %q", auth)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type: %q", ct)
		}
		var payload struct {
			Subject string `json:"subject"`
			Body    string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.Subject != "Curated Briefing 007" || payload.Body != "hello" {
			t.Fatalf("unexpected payload: %+v", payload)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"em_123","subject":"Curated Briefing 007","status":"draft","absolute_url":"https://buttondown.email/thefilter/archive/curated-briefing-007/"}`))
	}))
	defer server.Close()

	client := buttondown.NewClient("secret", buttondown.WithBaseURL(server.URL))
	email, err := client.CreateDraft(context.Background(), "Curated Briefing 007", "hello")
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if email.ID != "em_123" {
		t.Fatalf("unexpected email id: %q", email.ID)
	}
	if email.AbsoluteURL == "" {
		t.Fatal("expected absolute url to be decoded")
	}
}

func TestCreateDraftRequiresSubjectAndKey(t *testing.T) {
	client := buttondown.NewClient("secret")
	if _, err := client.CreateDraft(context.Background(), "   ", "body"); err == nil {
		t.Fatal("expected error for blank subject")
	} else if services.IsTransient(err) {
		t.Fatalf("blank subject should not be retryable: %v", err)
	}

	unkeyed := buttondown.NewClient("")
	_, err := unkeyed.CreateDraft(context.Background(), "Subject", "body")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCreateDraftClassifiesHTTPFailures(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		transient bool
	}{
		{"rate limited", http.StatusTooManyRequests, true},
		{"server error", http.StatusInternalServerError, true},
		{"bad gateway", http.StatusBadGateway, true},
		{"bad request", http.StatusBadRequest, false},
		{"unauthorized", http.StatusUnauthorized, false},
		{"unprocessable", http.StatusUnprocessableEntity, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"detail":"nope"}`))
			}))
			defer server.Close()

			client := buttondown.NewClient("secret", buttondown.WithBaseURL(server.URL))
			_, err := client.CreateDraft(context.Background(), "Subject", "body")
			if err == nil {
				t.Fatalf("expected error for http %d", tc.status)
			}
			if got := services.IsTransient(err); got != tc.transient {
				t.Fatalf("http %d: transient = %v, want %v (%v)", tc.status, got, tc.transient, err)
			}
		})
	}
}

func TestCreateDraftRejectsResponseWithoutID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"subject":"no id here"}`))
	}))
	defer server.Close()

	client := buttondown.NewClient("secret", buttondown.WithBaseURL(server.URL))
	_, err := client.CreateDraft(context.Background(), "Subject", "body")
	if !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if services.IsTransient(err) {
		t.Fatalf("missing id should not be retryable: %v", err)
	}
}

func TestSendAcceptsSuccessStatuses(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusCreated, http.StatusAccepted} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/v1/emails/em_9/send" {
				t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			w.WriteHeader(status)
		}))

		client := buttondown.NewClient("secret", buttondown.WithBaseURL(server.URL))
		if err := client.Send(context.Background(), "em_9"); err != nil {
			t.Fatalf("send with status %d: %v", status, err)
		}
		server.Close()
	}
}

func TestSendTreatsAlreadySentAsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"This email has already been sent."}`))
	}))
	defer server.Close()

	client := buttondown.NewClient("secret", buttondown.WithBaseURL(server.URL))
	if err := client.Send(context.Background(), "em_9"); err != nil {
		t.Fatalf("resend should be idempotent, got %v", err)
	}
}

func TestSendRejectsUnknownDraft(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not found."}`))
	}))
	defer server.Close()

	client := buttondown.NewClient("secret", buttondown.WithBaseURL(server.URL))
	err := client.Send(context.Background(), "em_missing")
	if err == nil {
		t.Fatal("expected error for unknown draft")
	}
	if services.IsTransient(err) {
		t.Fatalf("unknown draft should not be retryable: %v", err)
	}

	if err := client.Send(context.Background(), "  "); !services.IsPermanent(err) {
		t.Fatalf("blank id should be permanent, got %v", err)
	}
}

func TestGetEmailMapsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := buttondown.NewClient("secret", buttondown.WithBaseURL(server.URL))
	_, err := client.GetEmail(context.Background(), "em_gone")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found marker, got %v", err)
	}
}

func TestListEmailsAndIssueNumbering(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1/emails" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"results":[
			{"id":"em_1","subject":"THE FILTER - Weekly Curated Briefing 001"},
			{"id":"em_2","subject":"THE FILTER - Weekly Curated Briefing 002"},
			{"id":"em_3","subject":"Housekeeping note"}
		]}`))
	}))
	defer server.Close()

	client := buttondown.NewClient("secret", buttondown.WithBaseURL(server.URL))
	emails, err := client.ListEmails(context.Background())
	if err != nil {
		t.Fatalf("list emails: %v", err)
	}
	if len(emails) != 3 {
		t.Fatalf("expected 3 emails, got %d", len(emails))
	}
	if got := buttondown.NextIssueNumber(emails, "Curated Briefing"); got != 3 {
		t.Fatalf("expected next issue 3, got %d", got)
	}
	if got := buttondown.NextIssueNumber(nil, "Curated Briefing"); got != 1 {
		t.Fatalf("expected empty archive to start at 1, got %d", got)
	}
}

func TestNetworkFailureIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	client := buttondown.NewClient("secret", buttondown.WithBaseURL(base))
	_, err := client.ListEmails(context.Background())
	if !services.IsTransient(err) {
		t.Fatalf("expected transient error for refused connection, got %v", err)
	}
}
