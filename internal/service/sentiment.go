package service

import (
	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"
)

// SentimentScorer scores free text with a signed polarity in roughly [-1, 1].
// Positive reviews amplify a rating's contribution during re-ranking,
// negative reviews dampen it.
type SentimentScorer interface {
	Polarity(text string) float64
}

// VaderScorer scores text with the VADER lexicon. VADER is rule-based and
// needs no model files, so scoring is deterministic and cheap enough to run
// inline during re-ranking.
type VaderScorer struct{}

// NewVaderScorer creates a new VaderScorer.
// Parameters: none.
// Returns:
//   - *VaderScorer: ready-to-use scorer.
func NewVaderScorer() *VaderScorer {
	return &VaderScorer{}
}

// Polarity returns the VADER compound score for the text, in [-1, 1].
// Parameters:
//   - text: review body to score; empty text scores 0.
// Returns:
//   - float64: signed polarity.
func (*VaderScorer) Polarity(text string) float64 {
	if text == "" {
		return 0
	}
	parsed := sentitext.Parse(text, lexicon.DefaultLexicon)
	return sentitext.PolarityScore(parsed).Compound
}

// sentimentMultiplier converts a polarity into the contribution multiplier
// 1 + polarity, clamped to floor. VADER keeps polarity within [-1, 1] so the
// clamp only matters for scorers with wider output.
func sentimentMultiplier(polarity, floor float64) float64 {
	m := 1 + polarity
	if m < floor {
		return floor
	}
	return m
}
