package main

import (
	"testing"

	"auricle/internal/corpus"
)

func TestParseFeedKind(t *testing.T) {
	cases := []struct {
		input   string
		want    corpus.FeedKind
		wantErr bool
	}{
		{"rss", corpus.FeedRSS, false},
		{"", corpus.FeedRSS, false},
		{" RSS ", corpus.FeedRSS, false},
		{"single-url", corpus.FeedSingleURL, false},
		{"atom", "", true},
	}
	for _, tc := range cases {
		got, err := parseFeedKind(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseFeedKind(%q): expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseFeedKind(%q): %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("parseFeedKind(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParseStage(t *testing.T) {
	stage, err := parseStage("pending")
	if err != nil {
		t.Fatalf("parseStage(pending): %v", err)
	}
	if stage != corpus.StageUnset {
		t.Fatalf("parseStage(pending) = %q, want empty stage", stage)
	}

	stage, err = parseStage("Narrated")
	if err != nil {
		t.Fatalf("parseStage(Narrated): %v", err)
	}
	if stage != corpus.StageNarrated {
		t.Fatalf("parseStage(Narrated) = %q", stage)
	}

	if _, err := parseStage("shipped"); err == nil {
		t.Fatal("parseStage(shipped): expected error")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 40); got != "short" {
		t.Fatalf("truncate short = %q", got)
	}
	long := "abcdefghijklmnopqrstuvwxyz"
	if got := truncate(long, 10); got != "abcdefg..." {
		t.Fatalf("truncate long = %q", got)
	}
	if got := truncate(long, 3); got != long {
		t.Fatalf("truncate tiny limit = %q", got)
	}
}
