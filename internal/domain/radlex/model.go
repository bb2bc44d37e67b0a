// Package radlex indexes the bilingual radiology lexicon used for retrieval.
package radlex

import (
	"time"

	"github.com/serenvale/radcore/internal/platform/errs"
)

const (
	LanguageEN = "en"
	LanguageFR = "fr"
)

// Term is one lexicon entry. RadlexID carries the official RID; the paired
// embeddings index the English and French renderings of the term.
type Term struct {
	ID       string `db:"id" json:"id"`
	RadlexID string `db:"radlex_id" json:"radlexId"`

	Term         string `db:"term" json:"term"`
	TermFr       string `db:"term_fr" json:"termFr,omitempty"`
	Definition   string `db:"definition" json:"definition,omitempty"`
	DefinitionFr string `db:"definition_fr" json:"definitionFr,omitempty"`

	Category string `db:"category" json:"category,omitempty"`
	Modality string `db:"modality" json:"modality,omitempty"`
	BodyPart string `db:"body_part" json:"bodyPart,omitempty"`

	EmbeddingEn []float64 `db:"embedding_en" json:"embeddingEn,omitempty"`
	EmbeddingFr []float64 `db:"embedding_fr" json:"embeddingFr,omitempty"`

	Synonyms       []string `db:"synonyms" json:"synonyms,omitempty"`
	RelatedTerms   []string `db:"related_terms" json:"relatedTerms,omitempty"`
	UsageFrequency string   `db:"usage_frequency" json:"usageFrequency,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func (t *Term) Validate(dimension int) error {
	if t.RadlexID == "" {
		return errs.Validation("radlexId", "required")
	}
	if t.Term == "" {
		return errs.Validation("term", "required")
	}
	if len(t.EmbeddingEn) > 0 && len(t.EmbeddingEn) != dimension {
		return &errs.DimensionError{Want: dimension, Got: len(t.EmbeddingEn)}
	}
	if len(t.EmbeddingFr) > 0 && len(t.EmbeddingFr) != dimension {
		return &errs.DimensionError{Want: dimension, Got: len(t.EmbeddingFr)}
	}
	return nil
}

// Filter narrows a search to one modality agent or category; empty fields
// match everything.
type Filter struct {
	Modality string `json:"modality,omitempty"`
	Category string `json:"category,omitempty"`
}

func (f Filter) matches(t *Term) bool {
	if f.Modality != "" && t.Modality != f.Modality {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	return true
}

// Match pairs a term with its similarity to the query vector.
type Match struct {
	Term  *Term   `json:"term"`
	Score float64 `json:"score"`
}
