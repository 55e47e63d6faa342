package api

import (
	"testing"
	"time"

	"auricle/internal/corpus"
	"auricle/internal/resolve"
	"auricle/internal/services/speech"
)

func TestFromItemCarriesStageAndKind(t *testing.T) {
	published := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	item := &corpus.Item{
		ID:          "abc",
		URL:         "https://example.com/1",
		Tags:        []string{"go"},
		PublishedAt: &published,
		Kind:        corpus.KindAggregate,
		Stage:       corpus.StageNarrated,
		Active:      true,
	}
	wire := FromItem(item)
	if wire.Kind != "ai-aggregate" || wire.Stage != "narrated" {
		t.Fatalf("unexpected conversion: %+v", wire)
	}
	if wire.PublishedAt == nil || !wire.PublishedAt.Equal(published) {
		t.Fatalf("published time lost: %+v", wire.PublishedAt)
	}
}

func TestFromVoicesCarriesLanguageTags(t *testing.T) {
	wire := FromVoices(speech.Voices())
	if len(wire) == 0 {
		t.Fatal("expected a non-empty catalog")
	}
	byToken := make(map[string]Voice, len(wire))
	for _, voice := range wire {
		if voice.Language == "" {
			t.Fatalf("voice %s has no language tag", voice.Token)
		}
		byToken[voice.Token] = voice
	}
	if byToken["zh-female"].Language != "zh-Hans" || byToken["en-male"].Language != "en-US" {
		t.Fatalf("unexpected language tags: %+v", byToken)
	}
	if !byToken[speech.DefaultVoice].Default {
		t.Fatalf("expected %s flagged as default", speech.DefaultVoice)
	}
}

func TestFromPreviewFlagsEmbeddedContent(t *testing.T) {
	preview := &resolve.Preview{
		Title: "Example",
		Entries: []resolve.Entry{
			{URL: "https://example.com/1", Content: "<p>body</p>"},
			{URL: "https://example.com/2"},
		},
	}
	wire := FromPreview(preview)
	if len(wire.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(wire.Entries))
	}
	if !wire.Entries[0].HasContent || wire.Entries[1].HasContent {
		t.Fatalf("content flags wrong: %+v", wire.Entries)
	}
}
