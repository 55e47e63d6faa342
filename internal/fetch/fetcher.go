package fetch

import (
	"context"
	"fmt"
	"log/slog"

	"auricle/internal/config"
	"auricle/internal/corpus"
	"auricle/internal/logging"
	"auricle/internal/services"
)

// PageExtractor reduces a URL to readable article content.
type PageExtractor interface {
	Extract(ctx context.Context, pageURL string) (*Extraction, error)
}

// Fetcher activates pending items by downloading their article content.
type Fetcher struct {
	store       *corpus.Store
	extractor   PageExtractor
	logger      *slog.Logger
	maxAttempts int
}

// New constructs a fetcher bound to the store and configuration.
func New(store *corpus.Store, cfg *config.Config, logger *slog.Logger) *Fetcher {
	return NewWithExtractor(store, cfg, NewExtractor(cfg.Fetch), logger)
}

// NewWithExtractor allows tests to substitute the page extractor.
func NewWithExtractor(store *corpus.Store, cfg *config.Config, extractor PageExtractor, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Fetcher{
		store:       store,
		extractor:   extractor,
		logger:      logging.NewComponentLogger(logger, "fetch"),
		maxAttempts: cfg.Pipeline.MaxAttempts,
	}
}

// Run fetches up to limit pending items and returns how many succeeded.
// Per-item failures are recorded on the item and never abort the batch.
func (f *Fetcher) Run(ctx context.Context, limit int) (int, error) {
	items, err := f.store.ItemsAwaitingFetch(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("fetch: list pending items: %w", err)
	}

	succeeded := 0
	for _, item := range items {
		if ctx.Err() != nil {
			return succeeded, ctx.Err()
		}
		itemCtx := services.WithItemID(ctx, item.ID)
		log := logging.WithContext(itemCtx, f.logger)
		if err := f.fetchItem(itemCtx, item); err != nil {
			log.Warn("item fetch failed",
				logging.String(logging.FieldURL, item.URL),
				logging.Int("attempts", item.Attempts),
				logging.Error(err))
			continue
		}
		succeeded++
		log.Info("item fetched", logging.String(logging.FieldURL, item.URL))
	}
	return succeeded, nil
}

func (f *Fetcher) fetchItem(ctx context.Context, item *corpus.Item) error {
	extraction, err := f.extractor.Extract(ctx, item.URL)
	if err != nil {
		return f.recordFailure(ctx, item, err)
	}

	item.Content = extraction.Text
	if item.Title == "" {
		item.Title = extraction.Title
	}
	if item.CoverURL == "" {
		item.CoverURL = extraction.CoverURL
	}
	if item.Abstract == "" {
		item.Abstract = extraction.Excerpt
	}
	item.Active = true
	item.Stage = corpus.StageFetched
	item.Attempts = 0
	item.LastError = ""
	if err := f.store.UpdateItem(ctx, item); err != nil {
		return fmt.Errorf("persist fetched item: %w", err)
	}
	return nil
}

// recordFailure bumps the attempt counter and dead-letters the item once the
// retry budget is spent. Non-retryable failures dead-letter immediately.
func (f *Fetcher) recordFailure(ctx context.Context, item *corpus.Item, cause error) error {
	item.Attempts++
	item.LastError = cause.Error()
	if item.Attempts >= f.maxAttempts || !services.IsRetryable(cause) {
		item.Stage = corpus.StageFailed
	}
	if err := f.store.UpdateItem(ctx, item); err != nil {
		return fmt.Errorf("persist failure for %s: %w (original: %v)", item.ID, err, cause)
	}
	return cause
}
