package features

import (
	"strings"

	"marketset/internal/dataset"
)

// Sentiment bin labels.
const (
	BinNegative = "neg"
	BinNeutral  = "neu"
	BinPositive = "pos"
)

// SentimentConfig holds the keyword lexicon and bin thresholds for the
// rule-based scorer. The lists and thresholds are tuning constants; the
// algorithm never changes with them.
type SentimentConfig struct {
	PositiveTerms []string
	NegativeTerms []string
	NegThreshold  float64
	PosThreshold  float64
}

// DefaultSentimentConfig returns the standard lexicon: nine positive and nine
// negative terms, binned at ±0.2.
func DefaultSentimentConfig() SentimentConfig {
	return SentimentConfig{
		PositiveTerms: []string{
			"beat", "growth", "surge", "record", "gain",
			"up", "strong", "bull", "optimistic",
		},
		NegativeTerms: []string{
			"miss", "loss", "decline", "drop", "down",
			"weak", "bear", "pessimistic", "layoff",
		},
		NegThreshold: -0.2,
		PosThreshold: 0.2,
	}
}

// Scorer computes bounded keyword-count sentiment scores for headlines.
// It is a deterministic heuristic: a pure function of the text and the
// configured lexicon, with no external state.
type Scorer struct {
	positive     []string
	negative     []string
	negThreshold float64
	posThreshold float64
	maxAbs       float64
}

// NewScorer creates a sentiment scorer with the given configuration.
// Zero-valued config fields fall back to the defaults.
func NewScorer(config SentimentConfig) *Scorer {
	defaults := DefaultSentimentConfig()
	if len(config.PositiveTerms) == 0 {
		config.PositiveTerms = defaults.PositiveTerms
	}
	if len(config.NegativeTerms) == 0 {
		config.NegativeTerms = defaults.NegativeTerms
	}
	if config.NegThreshold == 0 {
		config.NegThreshold = defaults.NegThreshold
	}
	if config.PosThreshold == 0 {
		config.PosThreshold = defaults.PosThreshold
	}

	maxAbs := len(config.PositiveTerms)
	if len(config.NegativeTerms) > maxAbs {
		maxAbs = len(config.NegativeTerms)
	}

	return &Scorer{
		positive:     lowerAll(config.PositiveTerms),
		negative:     lowerAll(config.NegativeTerms),
		negThreshold: config.NegThreshold,
		posThreshold: config.PosThreshold,
		maxAbs:       float64(maxAbs),
	}
}

// Score returns a sentiment score in [-1, 1] for the given text. Each lexicon
// term counts at most once regardless of repeated occurrence (presence, not
// frequency). Blank or whitespace-only text scores exactly 0.
func (s *Scorer) Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0.0
	}

	lowered := strings.ToLower(text)

	raw := 0
	for _, term := range s.positive {
		if strings.Contains(lowered, term) {
			raw++
		}
	}
	for _, term := range s.negative {
		if strings.Contains(lowered, term) {
			raw--
		}
	}

	if raw == 0 {
		return 0.0
	}

	score := float64(raw) / s.maxAbs
	if score > 1.0 {
		return 1.0
	}
	if score < -1.0 {
		return -1.0
	}
	return score
}

// Bin buckets a score into "neg", "neu" or "pos". The thresholds themselves
// resolve to neg/pos (closed intervals), not neu.
func (s *Scorer) Bin(score float64) string {
	if score <= s.negThreshold {
		return BinNegative
	}
	if score >= s.posThreshold {
		return BinPositive
	}
	return BinNeutral
}

// AddSentiment returns a copy of the headline rows with the derived
// sentiment_score and sentiment_bin columns filled.
func (s *Scorer) AddSentiment(rows []dataset.HeadlineRow) []dataset.HeadlineRow {
	scored := make([]dataset.HeadlineRow, len(rows))
	for i, row := range rows {
		row.SentimentScore = s.Score(row.Headline)
		row.SentimentBin = s.Bin(row.SentimentScore)
		scored[i] = row
	}
	return scored
}

func lowerAll(terms []string) []string {
	lowered := make([]string, len(terms))
	for i, term := range terms {
		lowered[i] = strings.ToLower(term)
	}
	return lowered
}
