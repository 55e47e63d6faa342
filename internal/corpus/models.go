package corpus

import "time"

// FeedKind distinguishes how a feed's entries are discovered.
type FeedKind string

const (
	// FeedRSS feeds are fetched and parsed as RSS/Atom documents.
	FeedRSS FeedKind = "rss"
	// FeedSingleURL feeds describe exactly one article at the feed URL itself.
	FeedSingleURL FeedKind = "single-url"
)

// ItemKind classifies the provenance of a corpus item.
type ItemKind string

const (
	KindOriginal  ItemKind = "original"
	KindReprint   ItemKind = "reprint"
	KindAggregate ItemKind = "ai-aggregate"
)

// Stage is the monotonic pipeline marker on an item. The zero value means the
// item has been discovered but its content not yet fetched.
type Stage string

const (
	StageUnset      Stage = ""
	StageFetched    Stage = "fetched"
	StageEnriched   Stage = "enriched"
	StageAggregated Stage = "aggregated"
	StageNarrated   Stage = "narrated"
	// StageFailed is the dead-letter marker reached after the retry budget is
	// exhausted. Failed items are excluded from every eligibility query.
	StageFailed Stage = "failed"
)

var stageOrder = map[Stage]int{
	StageUnset:      0,
	StageFetched:    1,
	StageEnriched:   2,
	StageAggregated: 3,
	StageNarrated:   4,
}

// Before reports whether s precedes other in the pipeline ordering. Failed is
// terminal and never precedes anything.
func (s Stage) Before(other Stage) bool {
	if s == StageFailed || other == StageFailed {
		return false
	}
	return stageOrder[s] < stageOrder[other]
}

// Feed is a registered content source.
type Feed struct {
	ID             string
	URL            string
	Kind           FeedKind
	Title          string
	Description    string
	Tags           []string
	Active         bool
	Status         string
	LastResolvedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Item is a single piece of content moving through the pipeline.
//
// FeedRef holds the owning feed ID for harvested items and the comma-joined
// contributor item IDs for synthesized aggregates. URL is empty for
// aggregates; for everything else it is globally unique.
type Item struct {
	ID          string
	FeedRef     string
	URL         string
	Title       string
	Abstract    string
	Content     string
	AIContent   string
	AIAbstract  string
	Tags        []string
	CoverURL    string
	AudioURL    string
	PublishedAt *time.Time
	Kind        ItemKind
	Active      bool
	Stage       Stage
	Attempts    int
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListFilter narrows ListItems results. Zero values mean "no constraint".
type ListFilter struct {
	Stage  *Stage
	Kind   ItemKind
	Active *bool
	Offset int
	Limit  int
}

// Stats summarizes corpus state for status output.
type Stats struct {
	Feeds      int
	Items      int
	ByStage    map[Stage]int
	Aggregates int
	Narrated   int
	Failed     int
}
