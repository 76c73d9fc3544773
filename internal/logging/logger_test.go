package logging_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nycterent/thefilter/internal/config"
	"github.com/nycterent/thefilter/internal/logging"
	"github.com/nycterent/thefilter/internal/services"
)

// newFileLogger builds a logger writing to a temp file and returns it with a
// function that reads back everything logged so far.
func newFileLogger(t *testing.T, format, level string) (*slog.Logger, func() string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.log")
	logger, err := logging.New(logging.Options{
		Format:           format,
		Level:            level,
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("New(%s, %s): %v", format, level, err)
	}
	return logger, func() string {
		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read log output: %v", err)
		}
		return string(content)
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("startup message")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "thefilter.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "startup message") {
		t.Fatalf("log file missing message: %q", content)
	}
}

func TestConsoleCallerFollowsLevel(t *testing.T) {
	cases := []struct {
		level      string
		wantCaller bool
	}{
		{level: "info", wantCaller: false},
		{level: "debug", wantCaller: true},
	}
	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			logger, output := newFileLogger(t, "console", tc.level)
			logger.Info("caller probe")
			if got := strings.Contains(output(), ".go:"); got != tc.wantCaller {
				t.Fatalf("caller present = %v at level %s, output %q", got, tc.level, output())
			}
		})
	}
}

func TestJSONRecordShape(t *testing.T) {
	logger, output := newFileLogger(t, "json", "info")
	logger.Info("json message", logging.String("k", "v"))

	var record map[string]any
	if err := json.Unmarshal([]byte(output()), &record); err != nil {
		t.Fatalf("unmarshal log record: %v", err)
	}
	for key, want := range map[string]any{"msg": "json message", "level": "info", "k": "v"} {
		if record[key] != want {
			t.Fatalf("record[%q] = %v, want %v", key, record[key], want)
		}
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("record missing ts: %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextStampsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, 123)
	ctx = services.WithStage(ctx, "verify")
	ctx = services.WithRequestID(ctx, "req-xyz")

	logger, output := newFileLogger(t, "json", "info")
	logging.WithContext(ctx, logger).Info("contextual log")

	var record map[string]any
	if err := json.Unmarshal([]byte(output()), &record); err != nil {
		t.Fatalf("unmarshal log record: %v", err)
	}
	if record[logging.FieldRunID] != float64(123) {
		t.Fatalf("missing run id: %v", record)
	}
	if record[logging.FieldStage] != "verify" {
		t.Fatalf("missing stage: %v", record)
	}
	if record[logging.FieldRequestID] != "req-xyz" {
		t.Fatalf("missing request id: %v", record)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("this must not panic", logging.Error(nil))
}
