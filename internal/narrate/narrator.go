package narrate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"auricle/internal/config"
	"auricle/internal/corpus"
	"auricle/internal/logging"
	"auricle/internal/services"
)

// Synthesizer is the slice of the speech client the narrator needs.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string, seed int) (string, error)
}

// Narrator turns recent digest items into audio files.
type Narrator struct {
	store         *corpus.Store
	speech        Synthesizer
	logger        *slog.Logger
	maxAttempts   int
	recencyWindow time.Duration
}

// New constructs a narrator bound to the store and speech client.
func New(store *corpus.Store, speech Synthesizer, cfg *config.Config, logger *slog.Logger) *Narrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Narrator{
		store:         store,
		speech:        speech,
		logger:        logging.NewComponentLogger(logger, "narrate"),
		maxAttempts:   cfg.Pipeline.MaxAttempts,
		recencyWindow: time.Duration(cfg.Pipeline.RecencyWindowMinutes) * time.Minute,
	}
}

// Run narrates up to limit eligible digests with the default voice and
// returns how many succeeded. Failures follow the shared attempts policy:
// retryable errors consume an attempt, non-retryable errors dead-letter
// immediately.
func (n *Narrator) Run(ctx context.Context, limit int) (int, error) {
	since := time.Now().UTC().Add(-n.recencyWindow)
	items, err := n.store.ItemsAwaitingNarration(ctx, since, limit)
	if err != nil {
		return 0, fmt.Errorf("narrate: list eligible items: %w", err)
	}

	succeeded := 0
	for _, item := range items {
		if ctx.Err() != nil {
			return succeeded, ctx.Err()
		}
		itemCtx := services.WithItemID(ctx, item.ID)
		log := logging.WithContext(itemCtx, n.logger)
		if err := n.narrateItem(itemCtx, item); err != nil {
			log.Warn("item narration failed",
				logging.Int("attempts", item.Attempts),
				logging.Error(err))
			continue
		}
		succeeded++
		log.Info("item narrated", logging.String(logging.FieldURL, item.AudioURL))
	}
	return succeeded, nil
}

func (n *Narrator) narrateItem(ctx context.Context, item *corpus.Item) error {
	audioURL, err := n.speech.Synthesize(ctx, item.AIContent, "", 0)
	if err != nil {
		return n.recordFailure(ctx, item, err)
	}

	item.AudioURL = audioURL
	item.Stage = corpus.StageNarrated
	item.Attempts = 0
	item.LastError = ""
	if err := n.store.UpdateItem(ctx, item); err != nil {
		return fmt.Errorf("persist narrated item: %w", err)
	}
	return nil
}

func (n *Narrator) recordFailure(ctx context.Context, item *corpus.Item, cause error) error {
	item.Attempts++
	item.LastError = cause.Error()
	if item.Attempts >= n.maxAttempts || !services.IsRetryable(cause) {
		item.Stage = corpus.StageFailed
	}
	if err := n.store.UpdateItem(ctx, item); err != nil {
		return fmt.Errorf("persist failure for %s: %w (original: %v)", item.ID, err, cause)
	}
	return cause
}
