package daemon

import (
	"context"
	"fmt"
	"log/slog"

	"auricle/internal/aggregate"
	"auricle/internal/config"
	"auricle/internal/corpus"
	"auricle/internal/enrich"
	"auricle/internal/fetch"
	"auricle/internal/narrate"
	"auricle/internal/resolve"
	"auricle/internal/services"
	"auricle/internal/services/llm"
	"auricle/internal/services/speech"
)

// Stages bundles the five pipeline stages behind one construction point so
// the daemon, the API run triggers, and the CLI share identical wiring.
type Stages struct {
	Resolver   *resolve.Resolver
	Fetcher    *fetch.Fetcher
	Enricher   *enrich.Enricher
	Aggregator *aggregate.Aggregator
	Narrator   *narrate.Narrator
	Speech     *speech.Client

	cfg *config.Config
}

// NewStages wires every stage against the store and configuration.
func NewStages(store *corpus.Store, cfg *config.Config, logger *slog.Logger) *Stages {
	llmCfg := cfg.GetLLM()
	gateway := llm.NewClient(llm.Config{
		APIKey:         llmCfg.APIKey,
		BaseURL:        llmCfg.BaseURL,
		Model:          llmCfg.Model,
		Referer:        llmCfg.Referer,
		Title:          llmCfg.Title,
		TimeoutSeconds: llmCfg.TimeoutSeconds,
	})
	speechClient := speech.NewClient(speech.Config{
		Endpoint:       cfg.Speech.Endpoint,
		Voice:          cfg.Speech.Voice,
		StaticDomain:   cfg.Speech.StaticDomain,
		TimeoutSeconds: cfg.Speech.TimeoutSeconds,
		AudioDir:       cfg.AudioDir(),
	})
	return &Stages{
		Resolver:   resolve.New(store, cfg, logger),
		Fetcher:    fetch.New(store, cfg, logger),
		Enricher:   enrich.New(store, gateway, cfg, logger),
		Aggregator: aggregate.New(store, gateway, cfg, logger),
		Narrator:   narrate.New(store, speechClient, cfg, logger),
		Speech:     speechClient,
		cfg:        cfg,
	}
}

// Run executes one stage by name using its configured batch limit when the
// caller passes limit <= 0. It returns the number of processed units. The
// stage name is attached to the context so downstream logs carry it.
func (s *Stages) Run(ctx context.Context, stage string, limit int) (int, error) {
	ctx = services.WithStage(ctx, stage)
	switch stage {
	case "resolve":
		return s.Resolver.ResolveDue(ctx)
	case "fetch":
		if limit <= 0 {
			limit = s.cfg.Pipeline.FetchBatch
		}
		return s.Fetcher.Run(ctx, limit)
	case "enrich":
		if limit <= 0 {
			limit = s.cfg.Pipeline.EnrichBatch
		}
		return s.Enricher.Run(ctx, limit)
	case "aggregate":
		return s.Aggregator.Run(ctx)
	case "narrate":
		if limit <= 0 {
			limit = s.cfg.Pipeline.NarrateBatch
		}
		return s.Narrator.Run(ctx, limit)
	default:
		return 0, fmt.Errorf("unknown stage %q", stage)
	}
}
