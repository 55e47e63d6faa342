package api

import (
	"auricle/internal/corpus"
	"auricle/internal/resolve"
	"auricle/internal/services/speech"
)

// FromFeed converts a corpus feed to its wire form.
func FromFeed(feed *corpus.Feed) Feed {
	return Feed{
		ID:             feed.ID,
		URL:            feed.URL,
		Kind:           string(feed.Kind),
		Title:          feed.Title,
		Description:    feed.Description,
		Tags:           feed.Tags,
		Active:         feed.Active,
		LastResolvedAt: feed.LastResolvedAt,
		CreatedAt:      feed.CreatedAt,
		UpdatedAt:      feed.UpdatedAt,
	}
}

// FromFeeds converts a feed listing.
func FromFeeds(feeds []*corpus.Feed) []Feed {
	out := make([]Feed, 0, len(feeds))
	for _, feed := range feeds {
		out = append(out, FromFeed(feed))
	}
	return out
}

// FromItem converts a corpus item to its wire form.
func FromItem(item *corpus.Item) Item {
	return Item{
		ID:          item.ID,
		FeedRef:     item.FeedRef,
		URL:         item.URL,
		Title:       item.Title,
		Abstract:    item.Abstract,
		Content:     item.Content,
		AIContent:   item.AIContent,
		AIAbstract:  item.AIAbstract,
		Tags:        item.Tags,
		CoverURL:    item.CoverURL,
		AudioURL:    item.AudioURL,
		PublishedAt: item.PublishedAt,
		Kind:        string(item.Kind),
		Active:      item.Active,
		Stage:       string(item.Stage),
		Attempts:    item.Attempts,
		LastError:   item.LastError,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// FromItems converts an item listing.
func FromItems(items []*corpus.Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		out = append(out, FromItem(item))
	}
	return out
}

// FromVoices converts the synthesis catalog to its wire form.
func FromVoices(voices []speech.Voice) []Voice {
	out := make([]Voice, 0, len(voices))
	for _, voice := range voices {
		out = append(out, Voice{
			Token:    voice.Token,
			Language: voice.Tag.String(),
			Gender:   voice.Gender,
			Default:  voice.Token == speech.DefaultVoice,
		})
	}
	return out
}

// FromPreview converts a parsed feed preview to its wire form.
func FromPreview(preview *resolve.Preview) PreviewFeedResponse {
	entries := make([]PreviewEntry, 0, len(preview.Entries))
	for _, entry := range preview.Entries {
		entries = append(entries, PreviewEntry{
			URL:         entry.URL,
			Title:       entry.Title,
			Abstract:    entry.Abstract,
			PublishedAt: entry.PublishedAt,
			HasContent:  entry.Content != "",
		})
	}
	return PreviewFeedResponse{
		Title:       preview.Title,
		Description: preview.Description,
		Entries:     entries,
	}
}
