package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/nycterent/thefilter/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Retry delays are collapsed to a few milliseconds so retry-path tests run
// fast, and the notification topic is left empty so nothing leaves the box.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Buttondown.APIKey = "test"
	cfgVal.Buttondown.TimeoutSeconds = 2
	cfgVal.Verify.TimeoutSeconds = 2
	cfgVal.Retry.InitialDelayMS = 1
	cfgVal.Retry.MaxDelayMS = 5
	cfgVal.Retry.MaxTotalWaitMS = 500
	cfgVal.Retry.JitterFraction = 0
	cfgVal.Workflow.QueuePollInterval = 1
	cfgVal.Notifications.NtfyTopic = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPIKey sets the Buttondown API key on the test config.
func WithAPIKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Buttondown.APIKey = key
	}
}

// WithNtfyTopic enables notifications against the provided topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithPublishCeiling sets the publish retry ceiling on the test config.
func WithPublishCeiling(attempts int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Buttondown.MaxAttempts = attempts
	}
}

// WithVerifyCeiling sets the verification retry ceiling on the test config.
func WithVerifyCeiling(attempts int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Verify.MaxAttempts = attempts
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
