package aggregate

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"auricle/internal/corpus"
	"auricle/internal/services/llm"
	"auricle/internal/testsupport"
)

type stubGateway struct {
	byPrompt func(prompt string) llm.Result
	prompts  []string
}

func (s *stubGateway) Complete(ctx context.Context, prompt, systemPrompt string) llm.Result {
	s.prompts = append(s.prompts, prompt)
	if s.byPrompt != nil {
		return s.byPrompt(prompt)
	}
	return llm.Result{
		StatusCode: http.StatusOK,
		Answer:     `{"tags":["digest"],"abstract":"combined summary","content":"combined narration"}`,
	}
}

func enrichedItem(t *testing.T, store *corpus.Store, url string, tags ...string) *corpus.Item {
	t.Helper()
	return testsupport.NewItem(t, store, &corpus.Item{
		URL:        url,
		Content:    "raw " + url,
		AIContent:  "clean " + url,
		AIAbstract: "summary",
		Tags:       tags,
		Active:     true,
		Stage:      corpus.StageEnriched,
	})
}

func TestRunCreatesDigestPerSharedTag(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	a := enrichedItem(t, store, "https://example.com/1", "go")
	b := enrichedItem(t, store, "https://example.com/2", "go", "sqlite")

	aggregator := New(store, &stubGateway{}, cfg, nil)
	created, err := aggregator.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if created != 2 {
		t.Fatalf("expected digests for go and sqlite, got %d", created)
	}

	digests, err := store.ListItems(ctx, corpus.ListFilter{Kind: corpus.KindAggregate})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(digests) != 2 {
		t.Fatalf("expected 2 digest items, got %d", len(digests))
	}

	var goDigest *corpus.Item
	for _, digest := range digests {
		if digest.Title == "go-aggregate" {
			goDigest = digest
		}
	}
	if goDigest == nil {
		t.Fatal("expected a go-aggregate digest")
	}
	if goDigest.URL != "" || goDigest.Kind != corpus.KindAggregate || !goDigest.Active {
		t.Fatalf("unexpected digest shape: %+v", goDigest)
	}
	if goDigest.Stage != corpus.StageAggregated {
		t.Fatalf("expected digest stage aggregated, got %q", goDigest.Stage)
	}
	// feed_ref carries the contributor ids.
	refs := strings.Split(goDigest.FeedRef, ",")
	if len(refs) != 2 {
		t.Fatalf("expected 2 contributor refs, got %q", goDigest.FeedRef)
	}
	// The originating tag leads the combined tag list.
	if len(goDigest.Tags) == 0 || goDigest.Tags[0] != "go" {
		t.Fatalf("expected originating tag first, got %v", goDigest.Tags)
	}
	// Combined raw content is the contributors' enriched text.
	if !strings.Contains(goDigest.Content, "clean https://example.com/1") ||
		!strings.Contains(goDigest.Content, "clean https://example.com/2") {
		t.Fatalf("unexpected combined content: %q", goDigest.Content)
	}

	// Contributors advanced.
	for _, id := range []string{a.ID, b.ID} {
		reloaded, err := store.GetItem(ctx, id)
		if err != nil {
			t.Fatalf("GetItem: %v", err)
		}
		if reloaded.Stage != corpus.StageAggregated {
			t.Fatalf("contributor %s should be aggregated, got %q", id, reloaded.Stage)
		}
	}
}

func TestRunFailedTagKeepsContributorsEnriched(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	onlyFailing := enrichedItem(t, store, "https://example.com/1", "broken")
	both := enrichedItem(t, store, "https://example.com/2", "broken", "working")

	gateway := &stubGateway{byPrompt: func(prompt string) llm.Result {
		if strings.Contains(prompt, "clean https://example.com/1") {
			// The "broken" bucket contains item 1; fail it.
			return llm.Result{StatusCode: http.StatusBadGateway, ErrMessage: "upstream down"}
		}
		return llm.Result{
			StatusCode: http.StatusOK,
			Answer:     `{"tags":[],"abstract":"s","content":"c"}`,
		}
	}}

	aggregator := New(store, gateway, cfg, nil)
	created, err := aggregator.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected only the working digest, got %d", created)
	}

	// Item 1 contributed to nothing successful and stays enriched.
	reloaded, err := store.GetItem(ctx, onlyFailing.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if reloaded.Stage != corpus.StageEnriched {
		t.Fatalf("expected item to stay enriched for retry, got %q", reloaded.Stage)
	}

	// Item 2 contributed to the working digest and advances.
	reloaded, err = store.GetItem(ctx, both.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if reloaded.Stage != corpus.StageAggregated {
		t.Fatalf("expected contributor to advance, got %q", reloaded.Stage)
	}
}

func TestRunMergesTagSpellings(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	enrichedItem(t, store, "https://example.com/1", "Go")
	enrichedItem(t, store, "https://example.com/2", "go")

	gateway := &stubGateway{}
	aggregator := New(store, gateway, cfg, nil)
	created, err := aggregator.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if created != 1 {
		t.Fatalf("case variants must share one bucket, got %d digests", created)
	}
	if len(gateway.prompts) != 1 {
		t.Fatalf("expected a single synthesis call, got %d", len(gateway.prompts))
	}
}

func TestRunRejectsSynthesisWithoutTagsField(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	contributor := enrichedItem(t, store, "https://example.com/1", "go")

	gateway := &stubGateway{byPrompt: func(prompt string) llm.Result {
		return llm.Result{
			StatusCode: http.StatusOK,
			Answer:     `{"abstract":"s","content":"c"}`,
		}
	}}

	aggregator := New(store, gateway, cfg, nil)
	created, err := aggregator.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if created != 0 {
		t.Fatalf("incomplete synthesis payload must not create a digest, got %d", created)
	}

	reloaded, err := store.GetItem(ctx, contributor.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if reloaded.Stage != corpus.StageEnriched {
		t.Fatalf("contributor must stay enriched for retry, got %q", reloaded.Stage)
	}
}

func TestRunDuplicateTagSpellingsOnOneItemCountOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	// Stored tags can bypass normalization via direct item updates.
	item := enrichedItem(t, store, "https://example.com/1", "Go", "go")

	aggregator := New(store, &stubGateway{}, cfg, nil)
	created, err := aggregator.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected one digest, got %d", created)
	}

	digests, err := store.ListItems(ctx, corpus.ListFilter{Kind: corpus.KindAggregate})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(digests) != 1 {
		t.Fatalf("expected 1 digest item, got %d", len(digests))
	}
	digest := digests[0]
	if digest.FeedRef != item.ID {
		t.Fatalf("contributor must appear once in feed_ref, got %q", digest.FeedRef)
	}
	if strings.Count(digest.Content, "clean https://example.com/1") != 1 {
		t.Fatalf("contributor content must appear once, got %q", digest.Content)
	}
}

func TestRunNoEligibleItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	gateway := &stubGateway{}
	aggregator := New(store, gateway, cfg, nil)
	created, err := aggregator.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if created != 0 || len(gateway.prompts) != 0 {
		t.Fatalf("expected no work, got created=%d calls=%d", created, len(gateway.prompts))
	}
}
