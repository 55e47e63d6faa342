package textutil

import (
	"errors"
	"reflect"
	"testing"
)

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare object",
			input: `{"tags":["go"],"abstract":"a","content":"b"}`,
			want:  `{"tags":["go"],"abstract":"a","content":"b"}`,
		},
		{
			name:  "prose wrapped",
			input: "Here is the result:\n{\"tags\":[]}\nHope that helps.",
			want:  `{"tags":[]}`,
		},
		{
			name:  "code fence",
			input: "```json\n{\"abstract\":\"x\"}\n```",
			want:  `{"abstract":"x"}`,
		},
		{
			name:  "nested braces span to last close",
			input: `prefix {"outer":{"inner":1}} suffix`,
			want:  `{"outer":{"inner":1}}`,
		},
		{
			name:    "no object",
			input:   "plain refusal text",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "close before open",
			input:   "} {",
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractObject(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrNoObject) {
					t.Fatalf("expected ErrNoObject, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractObject: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDecodeObject(t *testing.T) {
	var payload struct {
		Tags     []string `json:"tags"`
		Abstract string   `json:"abstract"`
		Content  string   `json:"content"`
	}
	raw := "The cleaned article follows.\n{\"tags\":[\"go\",\"sqlite\"],\"abstract\":\"short\",\"content\":\"long\"}"
	if err := DecodeObject(raw, &payload); err != nil {
		t.Fatalf("DecodeObject: %v", err)
	}
	if len(payload.Tags) != 2 || payload.Abstract != "short" || payload.Content != "long" {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	if err := DecodeObject(`{"tags": not-json}`, &payload); err == nil {
		t.Fatal("expected decode error for malformed object")
	}
}

func TestSnippet(t *testing.T) {
	if got := Snippet("  a\n\tb   c  ", 160); got != "a b c" {
		t.Fatalf("unexpected snippet: %q", got)
	}
	if got := Snippet("", 10); got != "<empty>" {
		t.Fatalf("expected <empty>, got %q", got)
	}
	long := Snippet("abcdefghij", 4)
	if long != "abcd..." {
		t.Fatalf("expected truncation, got %q", long)
	}
}

func TestNormalizeTags(t *testing.T) {
	in := []string{" Go ", "go", "", "SQLite", "llm", "audio", "rss", "extra"}
	got := NormalizeTags(in, 5)
	want := []string{"Go", "SQLite", "llm", "audio", "rss"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if NormalizeTags(nil, 5) != nil {
		t.Fatal("expected nil for empty input")
	}
	if NormalizeTags([]string{"", "  "}, 0) != nil {
		t.Fatal("expected nil for blank tags")
	}
}

func TestPrependTag(t *testing.T) {
	got := PrependTag("go", []string{"sqlite", "audio"})
	if !reflect.DeepEqual(got, []string{"go", "sqlite", "audio"}) {
		t.Fatalf("unexpected result: %v", got)
	}
	got = PrependTag("go", []string{"GO", "audio"})
	if !reflect.DeepEqual(got, []string{"GO", "audio"}) {
		t.Fatalf("expected no duplicate insert, got %v", got)
	}
	got = PrependTag("", []string{"a"})
	if !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("expected unchanged tags, got %v", got)
	}
}
