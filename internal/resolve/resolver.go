package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"auricle/internal/config"
	"auricle/internal/corpus"
	"auricle/internal/logging"
)

// Resolver turns registered feeds into corpus items. RSS feeds are parsed
// remotely; single-url feeds yield one synthetic entry built from the feed
// record itself.
type Resolver struct {
	store  *corpus.Store
	cfg    *config.Config
	logger *slog.Logger
	parser *gofeed.Parser
}

// New constructs a resolver bound to the store and configuration.
func New(store *corpus.Store, cfg *config.Config, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	parser := gofeed.NewParser()
	parser.UserAgent = cfg.Fetch.UserAgent
	parser.Client = &http.Client{Timeout: time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second}
	return &Resolver{
		store:  store,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "resolve"),
		parser: parser,
	}
}

// Entry is one parsed feed entry before it becomes an item.
type Entry struct {
	URL         string
	Title       string
	Abstract    string
	Content     string
	CoverURL    string
	PublishedAt *time.Time
}

// Preview is a parsed feed document that has not been persisted.
type Preview struct {
	Title       string
	Description string
	Entries     []Entry
}

// PreviewURL parses an RSS document at feedURL and returns its entries
// without writing anything to the store.
func (r *Resolver) PreviewURL(ctx context.Context, feedURL string) (*Preview, error) {
	parsed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return &Preview{
		Title:       strings.TrimSpace(parsed.Title),
		Description: strings.TrimSpace(parsed.Description),
		Entries:     collectEntries(parsed),
	}, nil
}

// ResolveDue processes every feed whose cooldown has elapsed and returns the
// number of newly inserted items. A feed that fails to fetch or parse is
// logged and retried on its next eligible tick without blocking siblings.
func (r *Resolver) ResolveDue(ctx context.Context) (int, error) {
	cooldown := time.Duration(r.cfg.Pipeline.FeedCooldownMinutes) * time.Minute
	cutoff := time.Now().UTC().Add(-cooldown)
	feeds, err := r.store.FeedsDueForResolve(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("resolve: list due feeds: %w", err)
	}

	total := 0
	for _, feed := range feeds {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		inserted, err := r.resolveFeed(ctx, feed)
		if err != nil {
			r.logger.Warn("feed resolution failed",
				logging.String(logging.FieldFeedID, feed.ID),
				logging.String(logging.FieldURL, feed.URL),
				logging.Error(err))
			continue
		}
		total += inserted
		if inserted > 0 {
			r.logger.Info("feed resolved",
				logging.String(logging.FieldFeedID, feed.ID),
				logging.Int("new_items", inserted))
		}
	}
	return total, nil
}

// ResolveFeed resolves a single feed immediately, ignoring the cooldown.
func (r *Resolver) ResolveFeed(ctx context.Context, feedID string) (int, error) {
	feed, err := r.store.GetFeed(ctx, feedID)
	if err != nil {
		return 0, err
	}
	if feed == nil {
		return 0, fmt.Errorf("feed %s not found", feedID)
	}
	return r.resolveFeed(ctx, feed)
}

func (r *Resolver) resolveFeed(ctx context.Context, feed *corpus.Feed) (int, error) {
	var entries []Entry
	switch feed.Kind {
	case corpus.FeedSingleURL:
		entries = []Entry{{
			URL:      feed.URL,
			Title:    feed.Title,
			Abstract: feed.Description,
		}}
	case corpus.FeedRSS:
		parsed, err := r.parser.ParseURLWithContext(feed.URL, ctx)
		if err != nil {
			return 0, fmt.Errorf("parse feed: %w", err)
		}
		r.backfillFeed(ctx, feed, parsed)
		entries = collectEntries(parsed)
	default:
		return 0, fmt.Errorf("unknown feed kind %q", feed.Kind)
	}

	inserted := 0
	for _, e := range entries {
		if e.URL == "" {
			continue
		}
		existing, err := r.store.FindItemByURL(ctx, e.URL)
		if err != nil {
			return inserted, fmt.Errorf("lookup item: %w", err)
		}
		if existing != nil {
			continue
		}
		_, err = r.store.InsertItem(ctx, &corpus.Item{
			FeedRef:     feed.ID,
			URL:         e.URL,
			Title:       e.Title,
			Abstract:    e.Abstract,
			Content:     e.Content,
			CoverURL:    e.CoverURL,
			PublishedAt: e.PublishedAt,
			Kind:        corpus.KindOriginal,
		})
		if errors.Is(err, corpus.ErrDuplicateURL) {
			// Lost a race with a sibling feed carrying the same entry.
			continue
		}
		if err != nil {
			return inserted, fmt.Errorf("insert item: %w", err)
		}
		inserted++
	}

	if err := r.store.TouchFeedResolved(ctx, feed.ID); err != nil {
		return inserted, fmt.Errorf("touch feed: %w", err)
	}
	return inserted, nil
}

// backfillFeed fills empty feed title/description from the parsed document.
func (r *Resolver) backfillFeed(ctx context.Context, feed *corpus.Feed, parsed *gofeed.Feed) {
	changed := false
	if feed.Title == "" && parsed.Title != "" {
		feed.Title = strings.TrimSpace(parsed.Title)
		changed = true
	}
	if feed.Description == "" && parsed.Description != "" {
		feed.Description = strings.TrimSpace(parsed.Description)
		changed = true
	}
	if !changed {
		return
	}
	if err := r.store.UpdateFeed(ctx, feed); err != nil {
		r.logger.Warn("feed backfill failed",
			logging.String(logging.FieldFeedID, feed.ID),
			logging.Error(err))
	}
}

func collectEntries(parsed *gofeed.Feed) []Entry {
	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		e := Entry{
			URL:         strings.TrimSpace(item.Link),
			Title:       strings.TrimSpace(item.Title),
			Abstract:    strings.TrimSpace(item.Description),
			Content:     strings.TrimSpace(item.Content),
			PublishedAt: item.PublishedParsed,
		}
		if item.Image != nil {
			e.CoverURL = strings.TrimSpace(item.Image.URL)
		}
		entries = append(entries, e)
	}
	return entries
}
