// Package entities runs named-entity recognition over article text.
package entities

import (
	"strings"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/newspulse/newspulse/internal/news"
)

// ProseExtractor implements news.EntityExtractor using the prose NLP
// pipeline. Tokenization and tagging stay enabled since NER depends on
// both; segmentation is skipped.
type ProseExtractor struct {
	logger *zap.Logger
}

// New constructs a ProseExtractor.
func New(logger *zap.Logger) *ProseExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProseExtractor{logger: logger}
}

// Extract returns one mention per detected entity occurrence across all
// documents, in document order. Whitespace-only documents are skipped; a
// document that fails to parse is logged and skipped rather than failing
// the batch.
func (e *ProseExtractor) Extract(texts []string) []news.EntityMention {
	mentions := make([]news.EntityMention, 0)
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
		if err != nil {
			e.logger.Warn("entity extraction failed for document",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		for _, ent := range doc.Entities() {
			mentions = append(mentions, news.EntityMention{
				Text: strings.TrimSpace(ent.Text),
				Type: mapLabel(ent.Label),
			})
		}
	}
	return mentions
}

// mapLabel maps the model's label set onto the closed entity taxonomy.
// Unknown labels become Other rather than being dropped.
func mapLabel(label string) news.EntityType {
	switch label {
	case "PERSON":
		return news.EntityPerson
	case "ORG", "ORGANIZATION":
		return news.EntityOrg
	case "GPE", "LOC", "LOCATION":
		return news.EntityGPE
	case "EVENT":
		return news.EntityEvent
	default:
		return news.EntityOther
	}
}
