package api

import (
	"time"

	"auricle/internal/schedule"
)

// Feed is the wire representation of a corpus feed.
type Feed struct {
	ID             string     `json:"id"`
	URL            string     `json:"url"`
	Kind           string     `json:"kind"`
	Title          string     `json:"title,omitempty"`
	Description    string     `json:"description,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	Active         bool       `json:"active"`
	LastResolvedAt *time.Time `json:"last_resolved_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Item is the wire representation of a corpus item.
type Item struct {
	ID          string     `json:"id"`
	FeedRef     string     `json:"feed_ref,omitempty"`
	URL         string     `json:"url,omitempty"`
	Title       string     `json:"title,omitempty"`
	Abstract    string     `json:"abstract,omitempty"`
	Content     string     `json:"content,omitempty"`
	AIContent   string     `json:"ai_content,omitempty"`
	AIAbstract  string     `json:"ai_abstract,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	CoverURL    string     `json:"cover_url,omitempty"`
	AudioURL    string     `json:"audio_url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Kind        string     `json:"kind"`
	Active      bool       `json:"active"`
	Stage       string     `json:"stage"`
	Attempts    int        `json:"attempts,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateFeedRequest registers a new feed.
type CreateFeedRequest struct {
	URL         string   `json:"url"`
	Kind        string   `json:"kind"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// UpdateFeedRequest patches an existing feed. Nil fields are left unchanged.
type UpdateFeedRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

// UpdateItemRequest patches an existing item. Nil fields are left unchanged.
type UpdateItemRequest struct {
	Title      *string  `json:"title,omitempty"`
	Abstract   *string  `json:"abstract,omitempty"`
	Content    *string  `json:"content,omitempty"`
	AIContent  *string  `json:"ai_content,omitempty"`
	AIAbstract *string  `json:"ai_abstract,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Active     *bool    `json:"active,omitempty"`
}

// PreviewFeedRequest asks the daemon to parse a feed without persisting it.
type PreviewFeedRequest struct {
	URL string `json:"url"`
}

// PreviewEntry is one entry of a previewed feed.
type PreviewEntry struct {
	URL         string     `json:"url"`
	Title       string     `json:"title,omitempty"`
	Abstract    string     `json:"abstract,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	HasContent  bool       `json:"has_content"`
}

// PreviewFeedResponse is the parsed shape of a previewed feed.
type PreviewFeedResponse struct {
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Entries     []PreviewEntry `json:"entries"`
}

// FeedListResponse wraps a feed listing.
type FeedListResponse struct {
	Feeds []Feed `json:"feeds"`
}

// FeedResponse wraps a single feed.
type FeedResponse struct {
	Feed Feed `json:"feed"`
}

// ItemListResponse wraps an item listing.
type ItemListResponse struct {
	Items []Item `json:"items"`
}

// ItemResponse wraps a single item.
type ItemResponse struct {
	Item Item `json:"item"`
}

// RunResponse reports a manual stage trigger.
type RunResponse struct {
	Stage     string `json:"stage"`
	Processed int    `json:"processed"`
}

// AudioRequest asks for ad-hoc speech synthesis.
type AudioRequest struct {
	Content string `json:"content"`
	Voice   string `json:"voice,omitempty"`
}

// AudioResponse carries the public URL of synthesized audio.
type AudioResponse struct {
	AudioURL string `json:"audio_url"`
}

// Voice describes one synthesis voice. Language is the canonical BCP-47 tag
// of the generated speech.
type Voice struct {
	Token    string `json:"token"`
	Language string `json:"language"`
	Gender   string `json:"gender"`
	Default  bool   `json:"default,omitempty"`
}

// VoiceListResponse wraps the voice catalog.
type VoiceListResponse struct {
	Voices []Voice `json:"voices"`
}

// StageCounts maps stage names to item counts.
type StageCounts map[string]int

// DaemonStatus is the /api/status payload.
type DaemonStatus struct {
	Running      bool              `json:"running"`
	CorpusDBPath string            `json:"corpus_db_path"`
	LockFilePath string            `json:"lock_file_path"`
	Feeds        int               `json:"feeds"`
	Items        int               `json:"items"`
	ByStage      StageCounts       `json:"by_stage"`
	Jobs         []schedule.Status `json:"jobs"`
}
