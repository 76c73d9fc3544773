package main

import (
	"context"
	"errors"
	"testing"

	"github.com/nycterent/thefilter/internal/runs"
	"github.com/nycterent/thefilter/internal/testsupport"
)

func TestPublishDryRunParksValidatedRun(t *testing.T) {
	env := setupCLITestEnv(t)
	source := testsupport.WriteDocument(t, env.baseDir, "issue.html", cleanIssue)

	out, _, err := runCLI(t, []string{"publish", source, "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("publish --dry-run: %v", err)
	}
	requireContains(t, out, "validated (dry run, not published)")

	store := testsupport.MustOpenStore(t, env.cfg)
	run, err := store.GetByID(context.Background(), 1)
	if err != nil || run == nil {
		t.Fatalf("expected parked run, got %v (%v)", run, err)
	}
	if run.Status != runs.StatusValidated {
		t.Fatalf("run status = %q, want %q", run.Status, runs.StatusValidated)
	}
	if run.ReportJSON == "" {
		t.Fatal("expected stored lint report")
	}
}

func TestPublishDryRunRejectsBlockingContent(t *testing.T) {
	env := setupCLITestEnv(t)
	source := testsupport.WriteDocument(t, env.baseDir, "issue.html", refusalIssue)

	out, _, err := runCLI(t, []string{"publish", source, "--dry-run"}, env.configPath)
	var exit *exitError
	if !errors.As(err, &exit) || exit.code != 1 {
		t.Fatalf("expected exit code 1, got %v", err)
	}
	requireContains(t, out, "rejected")
	requireContains(t, out, "guardrail_refusals")

	store := testsupport.MustOpenStore(t, env.cfg)
	run, getErr := store.GetByID(context.Background(), 1)
	if getErr != nil || run == nil {
		t.Fatalf("expected rejected run, got %v (%v)", run, getErr)
	}
	if run.Status != runs.StatusRejected {
		t.Fatalf("run status = %q, want %q", run.Status, runs.StatusRejected)
	}
}

func TestPublishRefusesWithoutAPIKey(t *testing.T) {
	t.Setenv("BUTTONDOWN_API_KEY", "")

	env := setupCLITestEnv(t)
	env.cfg.Buttondown.APIKey = ""
	writeTestConfig(t, env.configPath, env.cfg)
	source := testsupport.WriteDocument(t, env.baseDir, "issue.html", cleanIssue)

	_, _, err := runCLI(t, []string{"publish", source}, env.configPath)
	if err == nil {
		t.Fatal("expected missing-key error")
	}
}
