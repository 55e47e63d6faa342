package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"auricle/internal/services"
)

func TestVoiceCatalog(t *testing.T) {
	voices := Voices()
	if len(voices) != 7 {
		t.Fatalf("expected 7 voices, got %d", len(voices))
	}
	for _, voice := range voices {
		if voice.Tag == language.Und {
			t.Fatalf("voice %s has undetermined language", voice.Token)
		}
		if voice.Gender != "male" && voice.Gender != "female" {
			t.Fatalf("voice %s has unexpected gender %q", voice.Token, voice.Gender)
		}
	}

	voice, ok := LookupVoice("")
	if !ok || voice.Token != DefaultVoice {
		t.Fatalf("empty token should resolve to default, got %+v ok=%v", voice, ok)
	}
	if _, ok := LookupVoice("fr-female"); ok {
		t.Fatal("unknown token must not resolve")
	}
}

func TestSynthesizeStoresAudioAndReturnsURL(t *testing.T) {
	var gotReq synthesisRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	audioDir := t.TempDir()
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	client := NewClient(Config{
		Endpoint:     server.URL,
		StaticDomain: "http://media.example.com/",
		AudioDir:     audioDir,
	}, WithClock(func() time.Time { return fixed }))

	url, err := client.Synthesize(context.Background(), "hello world", "en-male", 42)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if gotReq.Voice != "en-male" || gotReq.Text != "hello world" || gotReq.Seed != 42 {
		t.Fatalf("unexpected upstream request: %+v", gotReq)
	}

	prefix := "http://media.example.com/static/audio/audio_"
	if !strings.HasPrefix(url, prefix) || !strings.HasSuffix(url, ".mp3") {
		t.Fatalf("unexpected url: %q", url)
	}
	name := strings.TrimPrefix(url, "http://media.example.com/static/audio/")
	if !strings.HasPrefix(name, fmt.Sprintf("audio_%d_", fixed.Unix())) {
		t.Fatalf("expected timestamped filename, got %q", name)
	}
	data, err := os.ReadFile(filepath.Join(audioDir, name))
	if err != nil {
		t.Fatalf("read stored audio: %v", err)
	}
	if string(data) != "mp3-bytes" {
		t.Fatalf("unexpected audio contents: %q", data)
	}
}

func TestSynthesizeUsesConfiguredDefaultVoice(t *testing.T) {
	var gotVoice string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req synthesisRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotVoice = req.Voice
		w.Write([]byte("x"))
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, Voice: "ja-male", AudioDir: t.TempDir()})
	if _, err := client.Synthesize(context.Background(), "text", "", 0); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if gotVoice != "ja-male" {
		t.Fatalf("expected configured voice, got %q", gotVoice)
	}
}

func TestSynthesizeValidation(t *testing.T) {
	client := NewClient(Config{Endpoint: "http://127.0.0.1:0", AudioDir: t.TempDir()})

	if _, err := client.Synthesize(context.Background(), "   ", "", 0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty text, got %v", err)
	}
	if _, err := client.Synthesize(context.Background(), "text", "klingon", 0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for unknown voice, got %v", err)
	}
}

func TestSynthesizeUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, AudioDir: t.TempDir()})
	_, err := client.Synthesize(context.Background(), "text", "", 0)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Fatalf("expected status in message, got %v", err)
	}
}
