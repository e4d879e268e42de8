package crisis

import "strings"

// Result is the outcome of scanning one block of text.
//
// Keywords carries exactly the first matching phrase for high and moderate
// detections, and every matching phrase (in corpus order) for low ones. The
// UI depends on this shape, so the asymmetry is part of the contract.
type Result struct {
	Level    Level    `json:"level"`
	Keywords []string `json:"keywords"`
	InCrisis bool     `json:"inCrisis"`
}

// Classifier scans free text against a tiered keyword corpus. It is pure and
// cheap enough to run on every message or keystroke-debounced update.
type Classifier struct {
	corpus Corpus
}

// NewClassifier returns a classifier over the supplied corpus.
func NewClassifier(corpus Corpus) Classifier {
	return Classifier{corpus: corpus}
}

// Classify assigns the highest-severity tier with a matching phrase.
//
// Matching is case-insensitive substring containment, not word-boundary
// tokenization: a phrase embedded inside an unrelated word still counts.
// That produces known false positives and is preserved deliberately.
func (c Classifier) Classify(text string) Result {
	if text == "" {
		return Result{Level: LevelNone, Keywords: []string{}, InCrisis: false}
	}

	normalized := strings.ToLower(text)

	// High and moderate tiers short-circuit on the first match.
	for _, phrase := range c.corpus.High {
		if strings.Contains(normalized, strings.ToLower(phrase)) {
			return Result{Level: LevelHigh, Keywords: []string{phrase}, InCrisis: true}
		}
	}
	for _, phrase := range c.corpus.Moderate {
		if strings.Contains(normalized, strings.ToLower(phrase)) {
			return Result{Level: LevelModerate, Keywords: []string{phrase}, InCrisis: true}
		}
	}

	// The low tier collects every match.
	var matched []string
	for _, phrase := range c.corpus.Low {
		if strings.Contains(normalized, strings.ToLower(phrase)) {
			matched = append(matched, phrase)
		}
	}
	if len(matched) > 0 {
		return Result{Level: LevelLow, Keywords: matched, InCrisis: true}
	}

	return Result{Level: LevelNone, Keywords: []string{}, InCrisis: false}
}
