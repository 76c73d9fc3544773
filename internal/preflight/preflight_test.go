package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nycterent/thefilter/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name       string
		path       string
		wantPass   bool
		wantDetail string
	}{
		{name: "writable directory", path: base, wantPass: true, wantDetail: base},
		{name: "missing directory", path: filepath.Join(base, "nope"), wantDetail: "does not exist"},
		{name: "regular file", path: file, wantDetail: "is not a directory"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := CheckDirectoryAccess("check", tc.path)
			if result.Passed != tc.wantPass {
				t.Fatalf("passed = %v, detail %q", result.Passed, result.Detail)
			}
			if !strings.Contains(result.Detail, tc.wantDetail) {
				t.Fatalf("detail %q missing %q", result.Detail, tc.wantDetail)
			}
		})
	}
}

func TestCheckButtondownAcceptsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithAPIKey("good-key"))
	cfg.Buttondown.BaseURL = srv.URL

	result := CheckButtondown(context.Background(), cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckButtondownRejectedKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithAPIKey("bad-key"))
	cfg.Buttondown.BaseURL = srv.URL

	result := CheckButtondown(context.Background(), cfg)
	if result.Passed {
		t.Fatal("expected failure for rejected key")
	}
}

func TestCheckButtondownMissingKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Buttondown.APIKey = ""

	result := CheckButtondown(context.Background(), cfg)
	if result.Passed {
		t.Fatal("expected failure for missing key")
	}
	if result.Detail != "api key missing" {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAllHealthyWorkspace(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), cfg)
	// Data dir, log dir, and the run database.
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}
