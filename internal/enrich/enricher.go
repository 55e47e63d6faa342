package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"auricle/internal/config"
	"auricle/internal/corpus"
	"auricle/internal/logging"
	"auricle/internal/services"
	"auricle/internal/services/llm"
	"auricle/internal/textutil"
)

const maxTags = 5

// Gateway is the slice of the chat client the enricher needs.
type Gateway interface {
	Complete(ctx context.Context, prompt, systemPrompt string) llm.Result
}

// payload is the three-field contract every enrichment response must honor.
// Tags is a pointer so a response that omits the field entirely can be told
// apart from an empty tag list.
type payload struct {
	Tags     *[]string `json:"tags"`
	Abstract string    `json:"abstract"`
	Content  string    `json:"content"`
}

// Enricher rewrites fetched article text through the gateway, producing
// narration-ready content, a summary, and topic tags.
type Enricher struct {
	store       *corpus.Store
	gateway     Gateway
	logger      *slog.Logger
	maxAttempts int
}

// New constructs an enricher bound to the store and gateway.
func New(store *corpus.Store, gateway Gateway, cfg *config.Config, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Enricher{
		store:       store,
		gateway:     gateway,
		logger:      logging.NewComponentLogger(logger, "enrich"),
		maxAttempts: cfg.Pipeline.MaxAttempts,
	}
}

// Run enriches up to limit eligible items and returns how many succeeded.
// Gateway failures consume a retry attempt; malformed responses are skipped
// this tick and leave the item unmodified.
func (e *Enricher) Run(ctx context.Context, limit int) (int, error) {
	items, err := e.store.ItemsAwaitingEnrichment(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("enrich: list eligible items: %w", err)
	}

	succeeded := 0
	for _, item := range items {
		if ctx.Err() != nil {
			return succeeded, ctx.Err()
		}
		itemCtx := services.WithItemID(ctx, item.ID)
		log := logging.WithContext(itemCtx, e.logger)
		if err := e.enrichItem(itemCtx, item); err != nil {
			log.Warn("item enrichment failed",
				logging.Int("attempts", item.Attempts),
				logging.Error(err))
			continue
		}
		succeeded++
		log.Info("item enriched", logging.Any("tags", item.Tags))
	}
	return succeeded, nil
}

var errMalformedResponse = errors.New("malformed enrichment response")

func (e *Enricher) enrichItem(ctx context.Context, item *corpus.Item) error {
	result := e.gateway.Complete(ctx, item.Content, cleanupSystemPrompt)
	if !result.OK() {
		return e.recordFailure(ctx, item, fmt.Errorf("gateway: status=%d %s", result.StatusCode, result.ErrMessage))
	}

	parsed, err := decodePayload(result.Answer)
	if err != nil {
		// A bad payload is not charged against the retry budget; the next
		// tick gets a fresh completion.
		return fmt.Errorf("%w: %v", errMalformedResponse, err)
	}

	item.AIContent = parsed.Content
	item.AIAbstract = parsed.Abstract
	item.Tags = textutil.NormalizeTags(*parsed.Tags, maxTags)
	item.Stage = corpus.StageEnriched
	item.Attempts = 0
	item.LastError = ""
	if err := e.store.UpdateItem(ctx, item); err != nil {
		return fmt.Errorf("persist enriched item: %w", err)
	}
	return nil
}

func decodePayload(answer string) (*payload, error) {
	var parsed payload
	if err := textutil.DecodeObject(answer, &parsed); err != nil {
		return nil, err
	}
	if parsed.Content == "" {
		return nil, errors.New("missing content field")
	}
	if parsed.Abstract == "" {
		return nil, errors.New("missing abstract field")
	}
	if parsed.Tags == nil {
		return nil, errors.New("missing tags field")
	}
	return &parsed, nil
}

func (e *Enricher) recordFailure(ctx context.Context, item *corpus.Item, cause error) error {
	item.Attempts++
	item.LastError = cause.Error()
	if item.Attempts >= e.maxAttempts {
		item.Stage = corpus.StageFailed
	}
	if err := e.store.UpdateItem(ctx, item); err != nil {
		return fmt.Errorf("persist failure for %s: %w (original: %v)", item.ID, err, cause)
	}
	return cause
}
