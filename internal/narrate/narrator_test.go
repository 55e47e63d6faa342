package narrate

import (
	"context"
	"errors"
	"testing"

	"auricle/internal/corpus"
	"auricle/internal/services"
	"auricle/internal/testsupport"
)

type stubSpeech struct {
	url   string
	err   error
	calls int
	texts []string
}

func (s *stubSpeech) Synthesize(ctx context.Context, text, voice string, seed int) (string, error) {
	s.calls++
	s.texts = append(s.texts, text)
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

func digestItem(t *testing.T, store *corpus.Store, title string) *corpus.Item {
	t.Helper()
	return testsupport.NewItem(t, store, &corpus.Item{
		Title:     title,
		Content:   "combined raw",
		AIContent: "narration text for " + title,
		Kind:      corpus.KindAggregate,
		Active:    true,
		Stage:     corpus.StageAggregated,
	})
}

func TestRunNarratesDigests(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := digestItem(t, store, "go-aggregate")
	speech := &stubSpeech{url: "http://media.example.com/static/audio/audio_1_abc.mp3"}

	narrator := New(store, speech, cfg, nil)
	succeeded, err := narrator.Run(ctx, 10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if succeeded != 1 {
		t.Fatalf("expected 1 narrated item, got %d", succeeded)
	}
	if len(speech.texts) != 1 || speech.texts[0] != "narration text for go-aggregate" {
		t.Fatalf("expected enriched content to be narrated, got %v", speech.texts)
	}

	reloaded, err := store.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if reloaded.AudioURL != speech.url || reloaded.Stage != corpus.StageNarrated {
		t.Fatalf("unexpected narrated item: %+v", reloaded)
	}

	// Narrated items leave the eligibility set; a second run is a no-op.
	succeeded, err = narrator.Run(ctx, 10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if succeeded != 0 || speech.calls != 1 {
		t.Fatalf("expected no further synthesis, got succeeded=%d calls=%d", succeeded, speech.calls)
	}
}

func TestRunRespectsLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	digestItem(t, store, "a-aggregate")
	digestItem(t, store, "b-aggregate")
	digestItem(t, store, "c-aggregate")

	speech := &stubSpeech{url: "http://media.example.com/static/audio/x.mp3"}
	narrator := New(store, speech, cfg, nil)
	succeeded, err := narrator.Run(context.Background(), 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if succeeded != 2 || speech.calls != 2 {
		t.Fatalf("expected 2 narrations, got succeeded=%d calls=%d", succeeded, speech.calls)
	}
}

func TestRunTransientFailureConsumesAttempt(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxAttempts(2))
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := digestItem(t, store, "go-aggregate")
	speech := &stubSpeech{err: services.Wrap(services.ErrExternalTool, "narrate", "synthesize", "http 500", nil)}
	narrator := New(store, speech, cfg, nil)

	if _, err := narrator.Run(ctx, 10); err != nil {
		t.Fatalf("Run: %v", err)
	}
	reloaded, _ := store.GetItem(ctx, item.ID)
	if reloaded.Attempts != 1 || reloaded.Stage == corpus.StageFailed {
		t.Fatalf("first failure should stay retryable, got %+v", reloaded)
	}

	if _, err := narrator.Run(ctx, 10); err != nil {
		t.Fatalf("Run: %v", err)
	}
	reloaded, _ = store.GetItem(ctx, item.ID)
	if reloaded.Stage != corpus.StageFailed {
		t.Fatalf("expected dead-lettered item, got %+v", reloaded)
	}
}

func TestRunValidationFailureDeadLettersImmediately(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := digestItem(t, store, "go-aggregate")
	speech := &stubSpeech{err: services.Wrap(services.ErrValidation, "narrate", "synthesize", "text required", nil)}
	narrator := New(store, speech, cfg, nil)

	if _, err := narrator.Run(ctx, 10); err != nil {
		t.Fatalf("Run: %v", err)
	}
	reloaded, _ := store.GetItem(ctx, item.ID)
	if reloaded.Stage != corpus.StageFailed {
		t.Fatalf("validation failure should dead-letter, got %+v", reloaded)
	}
	if !errors.Is(speech.err, services.ErrValidation) {
		t.Fatal("sanity: stub error should be a validation error")
	}
}
