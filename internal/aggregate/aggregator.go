package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"auricle/internal/config"
	"auricle/internal/corpus"
	"auricle/internal/logging"
	"auricle/internal/services/llm"
	"auricle/internal/textutil"
)

const maxTags = 5

// Gateway is the slice of the chat client the aggregator needs.
type Gateway interface {
	Complete(ctx context.Context, prompt, systemPrompt string) llm.Result
}

// payload mirrors the enrichment response contract; Tags is a pointer so an
// omitted field is distinguishable from an empty list.
type payload struct {
	Tags     *[]string `json:"tags"`
	Abstract string    `json:"abstract"`
	Content  string    `json:"content"`
}

// Aggregator groups recently enriched items by shared tag and synthesizes
// one digest item per tag through the gateway.
type Aggregator struct {
	store         *corpus.Store
	gateway       Gateway
	logger        *slog.Logger
	recencyWindow time.Duration
}

// New constructs an aggregator bound to the store and gateway.
func New(store *corpus.Store, gateway Gateway, cfg *config.Config, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Aggregator{
		store:         store,
		gateway:       gateway,
		logger:        logging.NewComponentLogger(logger, "aggregate"),
		recencyWindow: time.Duration(cfg.Pipeline.RecencyWindowMinutes) * time.Minute,
	}
}

// Run synthesizes digests for every tag shared by recently enriched items
// and returns the number of digests created. Items advance to "aggregated"
// only after contributing to at least one successful digest; items whose
// every tag failed stay enriched and are retried while inside the recency
// window.
func (a *Aggregator) Run(ctx context.Context) (int, error) {
	since := time.Now().UTC().Add(-a.recencyWindow)
	items, err := a.store.ItemsForAggregation(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("aggregate: list eligible items: %w", err)
	}
	if len(items) == 0 {
		return 0, nil
	}

	log := logging.WithContext(ctx, a.logger)
	groups := groupByTag(items)
	created := 0
	contributed := make(map[string]bool)
	for tag, contributors := range groups {
		if ctx.Err() != nil {
			return created, ctx.Err()
		}
		if err := a.synthesizeTag(ctx, tag, contributors); err != nil {
			log.Warn("tag synthesis failed",
				logging.String(logging.FieldTag, tag),
				logging.Int("contributors", len(contributors)),
				logging.Error(err))
			continue
		}
		created++
		for _, item := range contributors {
			contributed[item.ID] = true
		}
		log.Info("digest created",
			logging.String(logging.FieldTag, tag),
			logging.Int("contributors", len(contributors)))
	}

	for _, item := range items {
		if !contributed[item.ID] {
			continue
		}
		if item.Stage != corpus.StageEnriched {
			continue
		}
		item.Stage = corpus.StageAggregated
		if err := a.store.UpdateItem(ctx, item); err != nil {
			log.Warn("stage advance failed",
				logging.String(logging.FieldItemID, item.ID),
				logging.Error(err))
		}
	}
	return created, nil
}

// groupByTag buckets items under each of their tags. Tag identity is
// case-insensitive; the first spelling seen names the bucket. An item whose
// stored tags repeat a spelling variant joins the bucket once.
func groupByTag(items []*corpus.Item) map[string][]*corpus.Item {
	groups := make(map[string][]*corpus.Item)
	names := make(map[string]string)
	for _, item := range items {
		seen := make(map[string]bool)
		for _, tag := range item.Tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			key := strings.ToLower(tag)
			if seen[key] {
				continue
			}
			seen[key] = true
			name, ok := names[key]
			if !ok {
				name = tag
				names[key] = tag
			}
			groups[name] = append(groups[name], item)
		}
	}
	return groups
}

func (a *Aggregator) synthesizeTag(ctx context.Context, tag string, contributors []*corpus.Item) error {
	parts := make([]string, 0, len(contributors))
	ids := make([]string, 0, len(contributors))
	for _, item := range contributors {
		parts = append(parts, item.AIContent)
		ids = append(ids, item.ID)
	}
	combined := strings.Join(parts, "\n")

	result := a.gateway.Complete(ctx, combined, synthesisSystemPrompt)
	if !result.OK() {
		return fmt.Errorf("gateway: status=%d %s", result.StatusCode, result.ErrMessage)
	}
	var parsed payload
	if err := textutil.DecodeObject(result.Answer, &parsed); err != nil {
		return err
	}
	if parsed.Content == "" {
		return errors.New("missing content field")
	}
	if parsed.Abstract == "" {
		return errors.New("missing abstract field")
	}
	if parsed.Tags == nil {
		return errors.New("missing tags field")
	}

	tags := textutil.PrependTag(tag, textutil.NormalizeTags(*parsed.Tags, maxTags))
	_, err := a.store.InsertItem(ctx, &corpus.Item{
		FeedRef:    strings.Join(ids, ","),
		Title:      tag + "-aggregate",
		Content:    combined,
		AIContent:  parsed.Content,
		AIAbstract: parsed.Abstract,
		Tags:       tags,
		Kind:       corpus.KindAggregate,
		Active:     true,
		Stage:      corpus.StageAggregated,
	})
	if err != nil {
		return fmt.Errorf("insert digest: %w", err)
	}
	return nil
}
