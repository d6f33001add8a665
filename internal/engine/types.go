package engine

import "time"

// --- Core pipeline types ---

// ChannelCandidate is a channel discovered via keyword search. Later stages
// enrich it in place (Detail, Branding, SpreadQualifying); no stage removes
// fields set by an earlier one.
type ChannelCandidate struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	URL             string `json:"url"`
	SubscriberCount int    `json:"subscriber_count"`
	SourceKeyword   string `json:"source_keyword"`
	Language        string `json:"language"`
	Region          string `json:"region"`

	Detail           *ChannelDetail  `json:"detail,omitempty"`
	Branding         *BrandingResult `json:"branding,omitempty"`
	SpreadQualifying []SpreadItem    `json:"spread_qualifying,omitempty"`
}

// ChannelDetail carries lifecycle metadata from the channel's own pages.
// CreatedAt is nil when the about page does not expose a join date.
type ChannelDetail struct {
	CreatedAt          *time.Time `json:"created_at,omitempty"`
	ItemCount          int        `json:"item_count"`
	AggregateViewCount int64      `json:"aggregate_view_count"`
}

// ItemSummary is one sampled upload from a channel's content listing.
type ItemSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	ViewCount     int64  `json:"view_count"`
	PublishedText string `json:"published_text,omitempty"`
}

// SpreadItem is a sampled upload whose spread rate fell inside the configured
// band; up to three are attached to an accepted candidate for reporting.
type SpreadItem struct {
	ID         string  `json:"id"`
	URL        string  `json:"url"`
	SpreadRate float64 `json:"spread_rate"`
}

// BrandingResult is the classifier verdict for one candidate.
type BrandingResult struct {
	Score      int      `json:"score"` // 0..10
	Reasons    []string `json:"reasons,omitempty"`
	Acceptable bool     `json:"acceptable"`
}

// Criterion names the filter stage that rejected a candidate.
type Criterion string

const (
	CriterionSubscribers Criterion = "subscribers"
	CriterionItemCount   Criterion = "item_count"
	CriterionAge         Criterion = "channel_age"
	CriterionSpread      Criterion = "spread_rate"
	CriterionBranding    Criterion = "personal_branding"
)

// Decision is the accept/reject outcome for one candidate. It is derived
// during filtering and never stored.
type Decision struct {
	Accepted bool
	Failed   Criterion // empty when Accepted
	Reason   string
}

// RunStats summarizes one pipeline run, including absorbed failures.
type RunStats struct {
	Keywords          int `json:"keywords"`
	KeywordsFailed    int `json:"keywords_failed"`
	Discovered        int `json:"discovered"`
	Duplicates        int `json:"duplicates"`
	Evaluated         int `json:"evaluated"`
	EvaluationsFailed int `json:"evaluations_failed"`
	Accepted          int `json:"accepted"`
}

// --- MCP tool I/O types ---

type ScanInput struct {
	Keywords []string `json:"keywords" jsonschema:"Search keywords, processed in order"`
	Limit    int      `json:"limit,omitempty" jsonschema:"Max candidates to evaluate (default: configured search limit)"`
}

type ScanOutput struct {
	Channels []ChannelCandidate `json:"channels"`
	Stats    RunStats           `json:"stats"`
}

type DiscoverInput struct {
	Keyword string `json:"keyword" jsonschema:"Single search keyword"`
}

type DiscoverOutput struct {
	Keyword    string             `json:"keyword"`
	Candidates []ChannelCandidate `json:"candidates"`
}

type BrandingCheckInput struct {
	Title       string   `json:"title" jsonschema:"Channel title"`
	Description string   `json:"description,omitempty" jsonschema:"Channel description"`
	ItemTitles  []string `json:"item_titles,omitempty" jsonschema:"Recent upload titles, most recent first"`
	Language    string   `json:"language,omitempty" jsonschema:"Locale for the rule tables (default: en)"`
}

type BrandingCheckOutput struct {
	Score      int      `json:"score"`
	Reasons    []string `json:"reasons"`
	Acceptable bool     `json:"acceptable"`
}
