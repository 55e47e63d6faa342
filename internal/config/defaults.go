package config

const (
	defaultDataDir  = "~/.local/share/auricle/data"
	defaultLogDir   = "~/.local/share/auricle/logs"
	defaultMediaDir = "~/.local/share/auricle/media"
	defaultAPIBind  = "127.0.0.1:7520"

	defaultLLMBaseURL        = "http://127.0.0.1:3000/v1/chat/completions"
	defaultLLMTimeoutSeconds = 60

	defaultSpeechEndpoint       = "http://127.0.0.1:9880/tts"
	defaultSpeechVoice          = "zh-female"
	defaultSpeechStaticDomain   = "http://127.0.0.1:7520"
	defaultSpeechTimeoutSeconds = 120

	defaultFetchUserAgent      = "Mozilla/5.0 (compatible; Auricle/1.0)"
	defaultFetchTimeoutSeconds = 30

	defaultResolveInterval   = 10
	defaultFetchInterval     = 20
	defaultEnrichInterval    = 30
	defaultAggregateInterval = 40
	defaultNarrateInterval   = 50

	defaultFetchBatch   = 1
	defaultEnrichBatch  = 1
	defaultNarrateBatch = 10

	defaultFeedCooldownMinutes  = 60
	defaultRecencyWindowMinutes = 60
	defaultMaxAttempts          = 5

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			MediaDir: defaultMediaDir,
			APIBind:  defaultAPIBind,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Speech: Speech{
			Endpoint:       defaultSpeechEndpoint,
			Voice:          defaultSpeechVoice,
			StaticDomain:   defaultSpeechStaticDomain,
			TimeoutSeconds: defaultSpeechTimeoutSeconds,
		},
		Fetch: Fetch{
			UserAgent:      defaultFetchUserAgent,
			TimeoutSeconds: defaultFetchTimeoutSeconds,
		},
		Pipeline: Pipeline{
			ResolveInterval:      defaultResolveInterval,
			FetchInterval:        defaultFetchInterval,
			EnrichInterval:       defaultEnrichInterval,
			AggregateInterval:    defaultAggregateInterval,
			NarrateInterval:      defaultNarrateInterval,
			FetchBatch:           defaultFetchBatch,
			EnrichBatch:          defaultEnrichBatch,
			NarrateBatch:         defaultNarrateBatch,
			FeedCooldownMinutes:  defaultFeedCooldownMinutes,
			RecencyWindowMinutes: defaultRecencyWindowMinutes,
			MaxAttempts:          defaultMaxAttempts,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
