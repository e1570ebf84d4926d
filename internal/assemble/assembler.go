// Package assemble enriches fetched article records with sentiment and
// entity annotations.
package assemble

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/newspulse/newspulse/internal/news"
)

// Sentiment label thresholds on the compound score.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// Assembler turns raw article records into enriched records plus the
// entity views derived from the whole batch.
type Assembler struct {
	scorer    news.SentimentScorer
	extractor news.EntityExtractor
	clock     news.Clock
	logger    *zap.Logger
}

// New constructs an Assembler.
func New(
	scorer news.SentimentScorer,
	extractor news.EntityExtractor,
	clock news.Clock,
	logger *zap.Logger,
) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{
		scorer:    scorer,
		extractor: extractor,
		clock:     clock,
		logger:    logger,
	}
}

// Assemble enriches every record and extracts entities across the batch in
// one pass. Empty input short-circuits without touching the collaborators.
func (a *Assembler) Assemble(records []news.ArticleRecord) ([]news.EnrichedRecord, []news.EntityMention) {
	if len(records) == 0 {
		return []news.EnrichedRecord{}, []news.EntityMention{}
	}

	enriched := make([]news.EnrichedRecord, 0, len(records))
	texts := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.PublishedAt.IsZero() {
			rec.PublishedAt = a.clock.Now().UTC()
		}
		if rec.FullText == "" {
			rec.FullText = rec.Description
		}
		score := a.scorer.Score(rec.FullText)
		enriched = append(enriched, news.EnrichedRecord{
			ArticleRecord:  rec,
			SentimentScore: score,
			SentimentLabel: Label(score),
		})
		texts = append(texts, rec.FullText)
	}

	mentions := a.extractor.Extract(texts)
	a.logger.Debug("batch assembled",
		zap.Int("records", len(enriched)),
		zap.Int("mentions", len(mentions)),
	)
	return enriched, mentions
}

// Label maps a compound score to its sentiment bucket. Scores at exactly
// +-0.05 are not neutral.
func Label(score float64) news.Sentiment {
	switch {
	case score >= positiveThreshold:
		return news.SentimentPositive
	case score <= negativeThreshold:
		return news.SentimentNegative
	default:
		return news.SentimentNeutral
	}
}

// Frequencies counts mentions per (text, type) key in a single pass.
// Mention text is compared case-sensitively; "RBI" and "rbi" stay distinct.
func Frequencies(mentions []news.EntityMention) map[news.EntityKey]int {
	freq := make(map[news.EntityKey]int, len(mentions))
	for _, m := range mentions {
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		freq[news.EntityKey{Text: text, Type: m.Type}]++
	}
	return freq
}

// TopEntities returns the n most frequent entities, ties broken by text
// then type for stable output.
func TopEntities(freq map[news.EntityKey]int, n int) []news.EntityCount {
	counts := make([]news.EntityCount, 0, len(freq))
	for key, count := range freq {
		counts = append(counts, news.EntityCount{
			Text:  key.Text,
			Type:  key.Type,
			Count: count,
		})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		if counts[i].Text != counts[j].Text {
			return counts[i].Text < counts[j].Text
		}
		return counts[i].Type < counts[j].Type
	})
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
