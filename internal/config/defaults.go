package config

const (
	defaultDataDir              = "~/.local/share/thefilter"
	defaultLogDir               = "~/.local/share/thefilter/logs"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultMinHeadingLength     = 10
	defaultShortHeadingWords    = 2
	defaultMinAltLength         = 5
	defaultMinSentenceLength    = 60
	defaultFetchTimeout         = 30
	defaultButtondownBaseURL    = "https://api.buttondown.email"
	defaultSubjectPrefix        = "THE FILTER - Weekly Curated Briefing"
	defaultSubjectMarker        = "Curated Briefing"
	defaultPublishTimeout       = 30
	defaultPublishMaxAttempts   = 3
	defaultArchiveBaseURL       = "https://buttondown.email/thefilter/archive"
	defaultVerifyMarker         = "THE FILTER"
	defaultVerifyTimeout        = 15
	defaultVerifyMaxAttempts    = 4
	defaultRetryInitialDelayMS  = 500
	defaultRetryMaxDelayMS      = 8000
	defaultRetryMaxTotalWaitMS  = 60000
	defaultRetryJitterFraction  = 0.2
	defaultQueuePollInterval    = 5
	defaultWorkflowWorkers      = 2
	defaultNotifyRequestTimeout = 10
)

// defaultDenylistDomains are redirector and CDN hosts that should never
// appear as reader-facing links; the canonical article URL should be used
// instead.
func defaultDenylistDomains() []string {
	return []string{
		"feedbinusercontent.com",
		"substackcdn.com",
		"cdn.substack.com",
		"list-manage.com",
		"cdn-images",
		"cdn.embed",
		"cdn.newsletter",
	}
}

func defaultGenericLinkText() []string {
	return []string{
		"link",
		"source",
		"read more",
		"article",
		"newsletters",
		"url",
		"visit",
		"here",
		"click here",
	}
}

func defaultGenericAltText() []string {
	return []string{
		"image",
		"photo",
		"picture",
		"graphic",
	}
}

func defaultParityLevels() []int {
	return []int{2, 3}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Lint: Lint{
			MinHeadingLength:  defaultMinHeadingLength,
			ShortHeadingWords: defaultShortHeadingWords,
			MinAltLength:      defaultMinAltLength,
			MinSentenceLength: defaultMinSentenceLength,
			DenylistDomains:   defaultDenylistDomains(),
			GenericLinkText:   defaultGenericLinkText(),
			GenericAltText:    defaultGenericAltText(),
			ParityLevels:      defaultParityLevels(),
			FetchTimeout:      defaultFetchTimeout,
		},
		Buttondown: Buttondown{
			BaseURL:        defaultButtondownBaseURL,
			SubjectPrefix:  defaultSubjectPrefix,
			SubjectMarker:  defaultSubjectMarker,
			TimeoutSeconds: defaultPublishTimeout,
			MaxAttempts:    defaultPublishMaxAttempts,
		},
		Verify: Verify{
			ArchiveBaseURL: defaultArchiveBaseURL,
			ContentMarker:  defaultVerifyMarker,
			TimeoutSeconds: defaultVerifyTimeout,
			MaxAttempts:    defaultVerifyMaxAttempts,
		},
		Retry: Retry{
			InitialDelayMS: defaultRetryInitialDelayMS,
			MaxDelayMS:     defaultRetryMaxDelayMS,
			MaxTotalWaitMS: defaultRetryMaxTotalWaitMS,
			JitterFraction: defaultRetryJitterFraction,
		},
		Workflow: Workflow{
			QueuePollInterval: defaultQueuePollInterval,
			Workers:           defaultWorkflowWorkers,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
