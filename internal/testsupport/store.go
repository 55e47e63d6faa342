package testsupport

import (
	"context"
	"testing"

	"auricle/internal/config"
	"auricle/internal/corpus"
)

// MustOpenStore opens a corpus.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *corpus.Store {
	t.Helper()

	store, err := corpus.Open(cfg)
	if err != nil {
		t.Fatalf("corpus.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewFeed registers a feed for tests using the provided store.
func NewFeed(t testing.TB, store *corpus.Store, url string, kind corpus.FeedKind) *corpus.Feed {
	t.Helper()

	feed, err := store.NewFeed(context.Background(), url, kind, "", "", nil)
	if err != nil {
		t.Fatalf("store.NewFeed: %v", err)
	}
	return feed
}

// NewItem inserts an item for tests using the provided store.
func NewItem(t testing.TB, store *corpus.Store, item *corpus.Item) *corpus.Item {
	t.Helper()

	inserted, err := store.InsertItem(context.Background(), item)
	if err != nil {
		t.Fatalf("store.InsertItem: %v", err)
	}
	return inserted
}
