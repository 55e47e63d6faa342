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

const feedColumns = "id, url, kind, title, description, tags, active, status, last_resolved_at, created_at, updated_at"

// NewFeed registers a content source. The URL must be unique across the corpus.
func (s *Store) NewFeed(ctx context.Context, url string, kind FeedKind, title, description string, tags []string) (*Feed, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("feed url is required")
	}
	if kind == "" {
		kind = FeedRSS
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	id := uuid.NewString()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO feeds (
            id, url, kind, title, description, tags, active, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		url,
		string(kind),
		nullableString(title),
		nullableString(description),
		encodeTags(tags),
		1,
		nil,
		timestamp,
		timestamp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("feed url %q: %w", url, ErrDuplicateURL)
		}
		return nil, fmt.Errorf("insert feed: %w", err)
	}

	return s.GetFeed(ctx, id)
}

// GetFeed fetches a feed by identifier.
func (s *Store) GetFeed(ctx context.Context, id string) (*Feed, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+feedColumns+` FROM feeds WHERE id = ?`, id)
	feed, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	return feed, nil
}

// FindFeedByURL returns the feed registered for a URL, or nil when absent.
func (s *Store) FindFeedByURL(ctx context.Context, url string) (*Feed, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+feedColumns+` FROM feeds WHERE url = ?`, strings.TrimSpace(url))
	feed, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find feed by url: %w", err)
	}
	return feed, nil
}

// ListFeeds returns all feeds ordered by creation time.
func (s *Store) ListFeeds(ctx context.Context) ([]*Feed, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+feedColumns+` FROM feeds ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	defer rows.Close()

	var feeds []*Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, feed)
	}
	return feeds, rows.Err()
}

// UpdateFeed persists changes to an existing feed.
func (s *Store) UpdateFeed(ctx context.Context, feed *Feed) error {
	if feed == nil {
		return errors.New("feed is nil")
	}
	feed.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE feeds
         SET url = ?, kind = ?, title = ?, description = ?, tags = ?, active = ?,
             status = ?, last_resolved_at = ?, updated_at = ?
         WHERE id = ?`,
		feed.URL,
		string(feed.Kind),
		nullableString(feed.Title),
		nullableString(feed.Description),
		encodeTags(feed.Tags),
		boolToInt(feed.Active),
		nullableString(feed.Status),
		nullableTime(feed.LastResolvedAt),
		feed.UpdatedAt.Format(time.RFC3339Nano),
		feed.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("feed url %q: %w", feed.URL, ErrDuplicateURL)
		}
		return fmt.Errorf("update feed: %w", err)
	}
	return nil
}

// TouchFeedResolved bumps the feed's last resolution timestamp to now.
func (s *Store) TouchFeedResolved(ctx context.Context, id string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE feeds SET last_resolved_at = ?, updated_at = ? WHERE id = ?`,
		now,
		now,
		id,
	)
	if err != nil {
		return fmt.Errorf("touch feed resolved: %w", err)
	}
	return nil
}

// FeedsDueForResolve returns active feeds never resolved or last resolved
// before the cutoff, ordered by creation time.
func (s *Store) FeedsDueForResolve(ctx context.Context, cutoff time.Time) ([]*Feed, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+feedColumns+` FROM feeds
         WHERE active = 1 AND (last_resolved_at IS NULL OR last_resolved_at < ?)
         ORDER BY created_at`,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("feeds due for resolve: %w", err)
	}
	defer rows.Close()

	var feeds []*Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, feed)
	}
	return feeds, rows.Err()
}

func scanFeed(scanner interface{ Scan(dest ...any) error }) (*Feed, error) {
	var (
		id          string
		url         string
		kind        string
		title       sql.NullString
		description sql.NullString
		tags        sql.NullString
		active      sql.NullInt64
		status      sql.NullString
		resolvedRaw sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&url,
		&kind,
		&title,
		&description,
		&tags,
		&active,
		&status,
		&resolvedRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	feed := &Feed{
		ID:          id,
		URL:         url,
		Kind:        FeedKind(kind),
		Title:       title.String,
		Description: description.String,
		Tags:        decodeTags(tags.String),
		Active:      active.Valid && active.Int64 != 0,
		Status:      status.String,
	}
	if resolvedRaw.Valid {
		if resolved, err := parseTimeString(resolvedRaw.String); err == nil {
			feed.LastResolvedAt = &resolved
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		feed.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		feed.UpdatedAt = updated
	}
	return feed, nil
}
