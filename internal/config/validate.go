package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Credentials are checked at
// client construction rather than here so lint-only invocations never need a
// publishing key.
func (c *Config) Validate() error {
	if err := c.validateLint(); err != nil {
		return err
	}
	if err := c.validatePublication(); err != nil {
		return err
	}
	if err := c.validateRetry(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateNotifications()
}

// RequireAPIKey reports whether a publishing credential is available,
// returning a setup hint when it is not.
func (c *Config) RequireAPIKey() error {
	if c.Buttondown.APIKey != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/thefilter/config.toml"
	}
	return fmt.Errorf("buttondown.api_key is required. Set BUTTONDOWN_API_KEY env var or edit %s (create with 'thefilter config init')", defaultPath)
}

func (c *Config) validateLint() error {
	if err := ensurePositiveMap(map[string]int{
		"lint.min_heading_length":  c.Lint.MinHeadingLength,
		"lint.short_heading_words": c.Lint.ShortHeadingWords,
		"lint.min_alt_length":      c.Lint.MinAltLength,
		"lint.min_sentence_length": c.Lint.MinSentenceLength,
		"lint.fetch_timeout":       c.Lint.FetchTimeout,
	}); err != nil {
		return err
	}
	if len(c.Lint.DenylistDomains) == 0 {
		return errors.New("lint.denylist_domains must include at least one host")
	}
	if len(c.Lint.GenericLinkText) == 0 {
		return errors.New("lint.generic_link_text must include at least one phrase")
	}
	return nil
}

func (c *Config) validatePublication() error {
	if err := ensurePositiveMap(map[string]int{
		"buttondown.timeout_seconds": c.Buttondown.TimeoutSeconds,
		"buttondown.max_attempts":    c.Buttondown.MaxAttempts,
		"verify.timeout_seconds":     c.Verify.TimeoutSeconds,
		"verify.max_attempts":        c.Verify.MaxAttempts,
	}); err != nil {
		return err
	}
	if c.Buttondown.BaseURL == "" {
		return errors.New("buttondown.base_url must be set")
	}
	if c.Verify.ArchiveBaseURL == "" {
		return errors.New("verify.archive_base_url must be set")
	}
	return nil
}

func (c *Config) validateRetry() error {
	if err := ensurePositiveMap(map[string]int{
		"retry.initial_delay_ms":  c.Retry.InitialDelayMS,
		"retry.max_delay_ms":      c.Retry.MaxDelayMS,
		"retry.max_total_wait_ms": c.Retry.MaxTotalWaitMS,
	}); err != nil {
		return err
	}
	if c.Retry.MaxDelayMS < c.Retry.InitialDelayMS {
		return errors.New("retry.max_delay_ms must be >= retry.initial_delay_ms")
	}
	if c.Retry.JitterFraction < 0 || c.Retry.JitterFraction >= 1 {
		return errors.New("retry.jitter_fraction must be in [0, 1)")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	return ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval": c.Workflow.QueuePollInterval,
		"workflow.workers":             c.Workflow.Workers,
	})
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
