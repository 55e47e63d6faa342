package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateSpeech(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Paths.MediaDir == "" {
		return errors.New("paths.media_dir must be set")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/auricle/config.toml"
		}
		return fmt.Errorf("llm.api_key is required. Set AURICLE_LLM_API_KEY env var or edit %s (create with 'auricle config init')", defaultPath)
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model must be set")
	}
	return nil
}

func (c *Config) validateSpeech() error {
	if c.Speech.Endpoint == "" {
		return errors.New("speech.endpoint must be set")
	}
	if c.Speech.Voice == "" {
		return errors.New("speech.voice must be set")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if err := ensurePositiveMap(map[string]int{
		"pipeline.resolve_interval":   c.Pipeline.ResolveInterval,
		"pipeline.fetch_interval":     c.Pipeline.FetchInterval,
		"pipeline.enrich_interval":    c.Pipeline.EnrichInterval,
		"pipeline.aggregate_interval": c.Pipeline.AggregateInterval,
		"pipeline.narrate_interval":   c.Pipeline.NarrateInterval,
		"pipeline.fetch_batch":        c.Pipeline.FetchBatch,
		"pipeline.enrich_batch":       c.Pipeline.EnrichBatch,
		"pipeline.narrate_batch":      c.Pipeline.NarrateBatch,
		"pipeline.max_attempts":       c.Pipeline.MaxAttempts,
		"pipeline.recency_window":     c.Pipeline.RecencyWindowMinutes,
	}); err != nil {
		return err
	}
	if c.Pipeline.FeedCooldownMinutes < 0 {
		return errors.New("pipeline.feed_cooldown_minutes must be >= 0")
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
