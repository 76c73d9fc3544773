package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/nycterent/thefilter/internal/config"
)

func TestDoctorHealthyWorkspace(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	requireContains(t, out, "Config")
	requireContains(t, out, "Data directory")
	requireContains(t, out, "Run database")
	requireContains(t, out, "[OK]")
	requireContains(t, out, "pass --online to verify it")
}

func TestDoctorOnlineProbesButtondown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/emails" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results": []}`)
	}))
	defer srv.Close()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Buttondown.APIKey = "test"
	cfgVal.Buttondown.BaseURL = srv.URL
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, &cfgVal)

	out, _, err := runCLI(t, []string{"doctor", "--online"}, configPath)
	if err != nil {
		t.Fatalf("doctor --online: %v", err)
	}
	requireContains(t, out, "Buttondown API")
	requireContains(t, out, "reachable, key accepted")
}

func TestDoctorOnlineFailureExitsNonzero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Buttondown.APIKey = "bad"
	cfgVal.Buttondown.BaseURL = srv.URL
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, &cfgVal)

	out, _, err := runCLI(t, []string{"doctor", "--online"}, configPath)
	var exit *exitError
	if !errors.As(err, &exit) || exit.code != 1 {
		t.Fatalf("expected exit code 1, got %v", err)
	}
	requireContains(t, out, "[ERROR]")
}
