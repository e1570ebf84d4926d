// Package sentiment scores article text with the VADER lexicon model.
package sentiment

import (
	"strings"

	"github.com/jonreiter/govader"
)

// VaderScorer implements news.SentimentScorer. The underlying analyzer is
// stateless across calls and safe to share.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// New constructs a VaderScorer with the default lexicon.
func New() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Score returns the compound polarity in [-1, 1]. Empty or whitespace-only
// text scores 0.0 without invoking the analyzer.
func (s *VaderScorer) Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0.0
	}
	return s.analyzer.PolarityScores(text).Compound
}
