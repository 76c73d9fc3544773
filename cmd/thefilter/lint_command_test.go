package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nycterent/thefilter/internal/lint"
	"github.com/nycterent/thefilter/internal/testsupport"
)

func TestLintCommandPassingSource(t *testing.T) {
	env := setupCLITestEnv(t)
	source := testsupport.WriteDocument(t, env.baseDir, "issue.html", cleanIssue)

	out, _, err := runCLI(t, []string{"lint", source}, env.configPath)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	requireContains(t, out, "RULE")
	requireContains(t, out, "PASS "+source)
}

func TestLintCommandBlockingFindingsExitOne(t *testing.T) {
	env := setupCLITestEnv(t)
	source := testsupport.WriteDocument(t, env.baseDir, "issue.html", refusalIssue)

	out, _, err := runCLI(t, []string{"lint", source}, env.configPath)
	var exit *exitError
	if !errors.As(err, &exit) {
		t.Fatalf("expected exitError, got %v", err)
	}
	if exit.code != 1 {
		t.Fatalf("expected exit code 1, got %d", exit.code)
	}
	requireContains(t, out, "guardrail_refusals")
	requireContains(t, out, "FAIL "+source)
}

func TestLintCommandUnreadableSourceExitTwo(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"lint", filepath.Join(env.baseDir, "missing.html")}, env.configPath)
	var exit *exitError
	if !errors.As(err, &exit) {
		t.Fatalf("expected exitError, got %v", err)
	}
	if exit.code != 2 {
		t.Fatalf("expected exit code 2, got %d", exit.code)
	}
}

func TestLintCommandWritesJSONReport(t *testing.T) {
	env := setupCLITestEnv(t)
	source := testsupport.WriteDocument(t, env.baseDir, "issue.html", cleanIssue)
	reportPath := filepath.Join(env.baseDir, "report.json")

	if _, _, err := runCLI(t, []string{"lint", source, "--json", reportPath}, env.configPath); err != nil {
		t.Fatalf("lint: %v", err)
	}

	payload, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if err := lint.ValidateReportJSON(string(payload)); err != nil {
		t.Fatalf("report failed schema validation: %v", err)
	}
	report, err := lint.Decode(payload)
	if err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Source != source {
		t.Fatalf("report source = %q, want %q", report.Source, source)
	}
	if !report.Passed {
		t.Fatalf("expected passing report, findings: %+v", report.Findings)
	}
}

func TestLintCommandMultipleSourcesArrayReport(t *testing.T) {
	env := setupCLITestEnv(t)
	first := testsupport.WriteDocument(t, env.baseDir, "first.html", cleanIssue)
	second := testsupport.WriteDocument(t, env.baseDir, "second.html", refusalIssue)
	reportPath := filepath.Join(env.baseDir, "reports.json")

	_, _, err := runCLI(t, []string{"lint", first, second, "--json", reportPath}, env.configPath)
	var exit *exitError
	if !errors.As(err, &exit) || exit.code != 1 {
		t.Fatalf("expected exit code 1 for mixed batch, got %v", err)
	}

	payload, readErr := os.ReadFile(reportPath)
	if readErr != nil {
		t.Fatalf("read reports: %v", readErr)
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(payload, &entries); err != nil {
		t.Fatalf("expected JSON array for multiple sources: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(entries))
	}
}
