package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLint()
	c.normalizeButtondown()
	c.normalizeVerify()
	c.normalizeRetry()
	c.normalizeWorkflow()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLint() {
	if c.Lint.MinHeadingLength <= 0 {
		c.Lint.MinHeadingLength = defaultMinHeadingLength
	}
	if c.Lint.ShortHeadingWords <= 0 {
		c.Lint.ShortHeadingWords = defaultShortHeadingWords
	}
	if c.Lint.MinAltLength <= 0 {
		c.Lint.MinAltLength = defaultMinAltLength
	}
	if c.Lint.MinSentenceLength <= 0 {
		c.Lint.MinSentenceLength = defaultMinSentenceLength
	}
	if c.Lint.FetchTimeout <= 0 {
		c.Lint.FetchTimeout = defaultFetchTimeout
	}
	c.Lint.DenylistDomains = normalizeList(c.Lint.DenylistDomains, defaultDenylistDomains())
	c.Lint.GenericLinkText = normalizeList(c.Lint.GenericLinkText, defaultGenericLinkText())
	c.Lint.GenericAltText = normalizeList(c.Lint.GenericAltText, defaultGenericAltText())
	c.Lint.ParityLevels = normalizeLevels(c.Lint.ParityLevels, defaultParityLevels())
	c.Lint.GoldenSource = strings.TrimSpace(c.Lint.GoldenSource)
}

func (c *Config) normalizeButtondown() {
	c.Buttondown.APIKey = strings.TrimSpace(c.Buttondown.APIKey)
	if c.Buttondown.APIKey == "" {
		if value, ok := os.LookupEnv("BUTTONDOWN_API_KEY"); ok {
			c.Buttondown.APIKey = strings.TrimSpace(value)
		}
	}
	c.Buttondown.BaseURL = strings.TrimRight(strings.TrimSpace(c.Buttondown.BaseURL), "/")
	if c.Buttondown.BaseURL == "" {
		c.Buttondown.BaseURL = defaultButtondownBaseURL
	}
	c.Buttondown.SubjectPrefix = strings.TrimSpace(c.Buttondown.SubjectPrefix)
	if c.Buttondown.SubjectPrefix == "" {
		c.Buttondown.SubjectPrefix = defaultSubjectPrefix
	}
	c.Buttondown.SubjectMarker = strings.TrimSpace(c.Buttondown.SubjectMarker)
	if c.Buttondown.SubjectMarker == "" {
		c.Buttondown.SubjectMarker = defaultSubjectMarker
	}
	if c.Buttondown.TimeoutSeconds <= 0 {
		c.Buttondown.TimeoutSeconds = defaultPublishTimeout
	}
	if c.Buttondown.MaxAttempts <= 0 {
		c.Buttondown.MaxAttempts = defaultPublishMaxAttempts
	}
}

func (c *Config) normalizeVerify() {
	c.Verify.ArchiveBaseURL = strings.TrimRight(strings.TrimSpace(c.Verify.ArchiveBaseURL), "/")
	if c.Verify.ArchiveBaseURL == "" {
		c.Verify.ArchiveBaseURL = defaultArchiveBaseURL
	}
	c.Verify.ContentMarker = strings.TrimSpace(c.Verify.ContentMarker)
	if c.Verify.ContentMarker == "" {
		c.Verify.ContentMarker = defaultVerifyMarker
	}
	if c.Verify.TimeoutSeconds <= 0 {
		c.Verify.TimeoutSeconds = defaultVerifyTimeout
	}
	if c.Verify.MaxAttempts <= 0 {
		c.Verify.MaxAttempts = defaultVerifyMaxAttempts
	}
}

func (c *Config) normalizeRetry() {
	if c.Retry.InitialDelayMS <= 0 {
		c.Retry.InitialDelayMS = defaultRetryInitialDelayMS
	}
	if c.Retry.MaxDelayMS <= 0 {
		c.Retry.MaxDelayMS = defaultRetryMaxDelayMS
	}
	if c.Retry.MaxDelayMS < c.Retry.InitialDelayMS {
		c.Retry.MaxDelayMS = c.Retry.InitialDelayMS
	}
	if c.Retry.MaxTotalWaitMS <= 0 {
		c.Retry.MaxTotalWaitMS = defaultRetryMaxTotalWaitMS
	}
	if c.Retry.JitterFraction < 0 || c.Retry.JitterFraction >= 1 {
		c.Retry.JitterFraction = defaultRetryJitterFraction
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
	if c.Workflow.Workers <= 0 {
		c.Workflow.Workers = defaultWorkflowWorkers
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// normalizeLevels keeps unique heading levels within h1..h6, falling back to
// the default when nothing valid remains.
func normalizeLevels(values []int, fallback []int) []int {
	out := make([]int, 0, len(values))
	seen := make(map[int]struct{}, len(values))
	for _, level := range values {
		if level < 1 || level > 6 {
			continue
		}
		if _, exists := seen[level]; exists {
			continue
		}
		seen[level] = struct{}{}
		out = append(out, level)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func normalizeList(values []string, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.ToLower(strings.TrimSpace(value))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
