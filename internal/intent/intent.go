package intent

import (
	"context"
	"strings"
)

// Prediction is one classifier verdict: a class index into the fixed
// category table and a confidence percentage.
type Prediction struct {
	Kategori int     `json:"kategori"`
	Guven    float64 `json:"guven"`
}

// Known reports whether the prediction falls inside the 7-label set.
// Anything else is treated as "not understood" by the dialogue flow.
func (p Prediction) Known() bool {
	return p.Kategori >= 0 && p.Kategori <= 6
}

// Classifier turns a caller utterance into a category prediction.
type Classifier interface {
	Classify(ctx context.Context, utterance string) (Prediction, error)
}

// Preprocess mirrors the normalization the classification model was trained
// with: lowercase, trimmed, punctuation stripped.
func Preprocess(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch r {
		case '.', ',', '!', '?', ';', ':', '(', ')', '[', ']', '{', '}', '"':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
