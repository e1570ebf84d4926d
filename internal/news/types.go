package news

import "time"

// Period is the recency window bounding how old returned hits may be.
type Period string

// Supported recency windows.
const (
	Period1h Period = "1h"
	Period1d Period = "1d"
	Period2d Period = "2d"
	Period3d Period = "3d"
	Period7d Period = "7d"
)

// Valid reports whether p is one of the supported windows.
func (p Period) Valid() bool {
	switch p {
	case Period1h, Period1d, Period2d, Period3d, Period7d:
		return true
	}
	return false
}

// SearchHit is one raw result returned by the search index for a single
// query term. Transient: it only lives between aggregation and fetching.
type SearchHit struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
}

// ArticleRecord is the fetch result for a single hit. FullText carries
// either scraped page content or, on the fallback path, the search-result
// description. PublishedAt stays zero when the raw date was unparseable;
// the assembler fills it later.
type ArticleRecord struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	FullText    string    `json:"full_text"`
	Fallback    bool      `json:"fallback"`
}

// Sentiment is the thresholded label derived from a compound score.
type Sentiment string

// Sentiment labels.
const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// EnrichedRecord is an ArticleRecord plus sentiment enrichment. Created once
// by the assembler and immutable afterward.
type EnrichedRecord struct {
	ArticleRecord

	SentimentScore float64   `json:"sentiment_score"`
	SentimentLabel Sentiment `json:"sentiment_label"`
}

// EntityType is the closed set of entity categories. Labels the extraction
// collaborator emits outside this set map to EntityOther rather than being
// dropped.
type EntityType string

// Entity categories.
const (
	EntityPerson EntityType = "PERSON"
	EntityOrg    EntityType = "ORG"
	EntityGPE    EntityType = "GPE"
	EntityEvent  EntityType = "EVENT"
	EntityOther  EntityType = "OTHER"
)

// EntityMention is one detected occurrence of an entity. Mentions are not
// deduplicated; multiplicity carries frequency information downstream.
type EntityMention struct {
	Text string     `json:"text"`
	Type EntityType `json:"type"`
}

// EntityKey identifies an entity across mentions for frequency counting.
type EntityKey struct {
	Text string     `json:"text"`
	Type EntityType `json:"type"`
}

// EntityCount is one row of the derived frequency view.
type EntityCount struct {
	Text  string     `json:"text"`
	Type  EntityType `json:"type"`
	Count int        `json:"count"`
}

// Result is the pipeline output handed to the presentation layer. Records
// carry no ordering guarantee.
type Result struct {
	RunID       string            `json:"run_id"`
	Query       string            `json:"query"`
	Period      Period            `json:"period"`
	Records     []EnrichedRecord  `json:"records"`
	Entities    []EntityMention   `json:"entities"`
	Frequencies map[EntityKey]int `json:"-"`
	TopEntities []EntityCount     `json:"top_entities"`
	StartedAt   time.Time         `json:"started_at"`
	Duration    time.Duration     `json:"duration"`
}
