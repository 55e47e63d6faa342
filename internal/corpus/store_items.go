package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const itemColumns = "id, feed_ref, url, title, abstract, content, ai_content, ai_abstract, tags, cover_url, audio_url, published_at, kind, active, stage, attempts, last_error, created_at, updated_at"

// InsertItem persists a newly discovered or synthesized item. The ID and
// timestamps are assigned here; the caller fills everything else.
func (s *Store) InsertItem(ctx context.Context, item *Item) (*Item, error) {
	if item == nil {
		return nil, errors.New("item is nil")
	}
	if item.Kind == "" {
		item.Kind = KindOriginal
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	id := uuid.NewString()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO items (
            id, feed_ref, url, title, abstract, content, ai_content, ai_abstract,
            tags, cover_url, audio_url, published_at, kind, active, stage,
            attempts, last_error, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		nullableString(item.FeedRef),
		nullableString(strings.TrimSpace(item.URL)),
		nullableString(item.Title),
		nullableString(item.Abstract),
		nullableString(item.Content),
		nullableString(item.AIContent),
		nullableString(item.AIAbstract),
		encodeTags(item.Tags),
		nullableString(item.CoverURL),
		nullableString(item.AudioURL),
		nullableTime(item.PublishedAt),
		string(item.Kind),
		boolToInt(item.Active),
		string(item.Stage),
		item.Attempts,
		nullableString(item.LastError),
		timestamp,
		timestamp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("item url %q: %w", item.URL, ErrDuplicateURL)
		}
		return nil, fmt.Errorf("insert item: %w", err)
	}

	return s.GetItem(ctx, id)
}

// GetItem fetches an item by identifier.
func (s *Store) GetItem(ctx context.Context, id string) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// FindItemByURL returns the item stored for a URL, or nil when absent.
func (s *Store) FindItemByURL(ctx context.Context, url string) (*Item, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE url = ? LIMIT 1`, url)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item by url: %w", err)
	}
	return item, nil
}

// UpdateItem persists changes to an existing item.
func (s *Store) UpdateItem(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE items
         SET feed_ref = ?, url = ?, title = ?, abstract = ?, content = ?,
             ai_content = ?, ai_abstract = ?, tags = ?, cover_url = ?, audio_url = ?,
             published_at = ?, kind = ?, active = ?, stage = ?, attempts = ?,
             last_error = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(item.FeedRef),
		nullableString(strings.TrimSpace(item.URL)),
		nullableString(item.Title),
		nullableString(item.Abstract),
		nullableString(item.Content),
		nullableString(item.AIContent),
		nullableString(item.AIAbstract),
		encodeTags(item.Tags),
		nullableString(item.CoverURL),
		nullableString(item.AudioURL),
		nullableTime(item.PublishedAt),
		string(item.Kind),
		boolToInt(item.Active),
		string(item.Stage),
		item.Attempts,
		nullableString(item.LastError),
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("item url %q: %w", item.URL, ErrDuplicateURL)
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// ListItems returns items matching the filter, newest first.
func (s *Store) ListItems(ctx context.Context, filter ListFilter) ([]*Item, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Stage != nil {
		clauses = append(clauses, "stage = ?")
		args = append(args, string(*filter.Stage))
	}
	if filter.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.Active != nil {
		clauses = append(clauses, "active = ?")
		args = append(args, boolToInt(*filter.Active))
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// ItemsAwaitingFetch returns items whose content has not been retrieved yet,
// newest first, capped at limit.
func (s *Store) ItemsAwaitingFetch(ctx context.Context, limit int) ([]*Item, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+itemColumns+` FROM items
         WHERE active = 0 AND stage != ?
         ORDER BY created_at DESC LIMIT ?`,
		string(StageFailed),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("items awaiting fetch: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// ItemsAwaitingEnrichment returns fetched items without enriched content,
// newest first, capped at limit.
func (s *Store) ItemsAwaitingEnrichment(ctx context.Context, limit int) ([]*Item, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+itemColumns+` FROM items
         WHERE active = 1 AND stage != ?
           AND content IS NOT NULL AND content != ''
           AND (ai_content IS NULL OR ai_content = '')
         ORDER BY created_at DESC LIMIT ?`,
		string(StageFailed),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("items awaiting enrichment: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// ItemsForAggregation returns enriched items created since the cutoff.
func (s *Store) ItemsForAggregation(ctx context.Context, since time.Time) ([]*Item, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+itemColumns+` FROM items
         WHERE active = 1 AND stage = ?
           AND content IS NOT NULL AND content != ''
           AND ai_content IS NOT NULL AND ai_content != ''
           AND created_at >= ?
         ORDER BY created_at DESC`,
		string(StageEnriched),
		since.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("items for aggregation: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// ItemsAwaitingNarration returns synthesized aggregates without audio created
// since the cutoff, newest first, capped at limit.
func (s *Store) ItemsAwaitingNarration(ctx context.Context, since time.Time, limit int) ([]*Item, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+itemColumns+` FROM items
         WHERE active = 1 AND kind = ? AND stage != ?
           AND content IS NOT NULL AND content != ''
           AND ai_content IS NOT NULL AND ai_content != ''
           AND (audio_url IS NULL OR audio_url = '')
           AND created_at >= ?
         ORDER BY created_at DESC LIMIT ?`,
		string(KindAggregate),
		string(StageFailed),
		since.UTC().Format(time.RFC3339Nano),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("items awaiting narration: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// RetryFailed moves dead-lettered items (optionally a subset) back into the
// pipeline by clearing the failed marker and attempt counter.
func (s *Store) RetryFailed(ctx context.Context, ids ...string) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if len(ids) == 0 {
		res, err := s.db.ExecContext(
			ctx,
			`UPDATE items SET stage = '', attempts = 0, last_error = NULL, updated_at = ?
             WHERE stage = ?`,
			now,
			string(StageFailed),
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed items: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+2)
	args = append(args, now, string(StageFailed))
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE items SET stage = '', attempts = 0, last_error = NULL, updated_at = ?
         WHERE stage = ? AND id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("retry selected items: %w", err)
	}
	return res.RowsAffected()
}

// CorpusStats returns feed and item counts grouped by stage.
func (s *Store) CorpusStats(ctx context.Context) (Stats, error) {
	stats := Stats{ByStage: make(map[Stage]int)}

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM feeds`)
	if err := row.Scan(&stats.Feeds); err != nil {
		return stats, fmt.Errorf("count feeds: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT stage, COUNT(1) FROM items GROUP BY stage`)
	if err != nil {
		return stats, fmt.Errorf("corpus stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stage string
		var count int
		if err := rows.Scan(&stage, &count); err != nil {
			return stats, err
		}
		stats.ByStage[Stage(stage)] = count
		stats.Items += count
		switch Stage(stage) {
		case StageNarrated:
			stats.Narrated += count
		case StageFailed:
			stats.Failed += count
		}
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	row = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM items WHERE kind = ?`, string(KindAggregate))
	if err := row.Scan(&stats.Aggregates); err != nil {
		return stats, fmt.Errorf("count aggregates: %w", err)
	}
	return stats, nil
}

func collectItems(rows *sql.Rows) ([]*Item, error) {
	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id           string
		feedRef      sql.NullString
		url          sql.NullString
		title        sql.NullString
		abstract     sql.NullString
		content      sql.NullString
		aiContent    sql.NullString
		aiAbstract   sql.NullString
		tags         sql.NullString
		coverURL     sql.NullString
		audioURL     sql.NullString
		publishedRaw sql.NullString
		kind         string
		active       sql.NullInt64
		stage        string
		attempts     sql.NullInt64
		lastError    sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&feedRef,
		&url,
		&title,
		&abstract,
		&content,
		&aiContent,
		&aiAbstract,
		&tags,
		&coverURL,
		&audioURL,
		&publishedRaw,
		&kind,
		&active,
		&stage,
		&attempts,
		&lastError,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:         id,
		FeedRef:    feedRef.String,
		URL:        url.String,
		Title:      title.String,
		Abstract:   abstract.String,
		Content:    content.String,
		AIContent:  aiContent.String,
		AIAbstract: aiAbstract.String,
		Tags:       decodeTags(tags.String),
		CoverURL:   coverURL.String,
		AudioURL:   audioURL.String,
		Kind:       ItemKind(kind),
		Active:     active.Valid && active.Int64 != 0,
		Stage:      Stage(stage),
		Attempts:   int(attempts.Int64),
		LastError:  lastError.String,
	}
	if publishedRaw.Valid {
		if published, err := parseTimeString(publishedRaw.String); err == nil {
			item.PublishedAt = &published
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}
