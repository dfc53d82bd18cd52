package classify

import (
	"context"
	"strings"
	"unicode"
)

// KeywordClassifier is a deterministic, network-free classifier. It scores
// each category by keyword and phrase hits and reports the best one, or
// unclear on a tie or no hit.
type KeywordClassifier struct{}

// NewKeywordClassifier builds the fallback keyword classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var keywordRules = []struct {
	label   string
	words   []string
	phrases []string
}{
	{
		label:   LabelConfirmed,
		words:   []string{"yes", "confirmed", "accept", "delighted", "honored"},
		phrases: []string{"count me in", "i'm in", "happy to", "glad to", "would love to", "i accept"},
	},
	{
		label:   LabelDeclined,
		words:   []string{"no", "decline", "unfortunately", "unable", "cannot", "regret"},
		phrases: []string{"can't make it", "have to pass", "not able to", "won't be able"},
	},
	{
		label:   LabelMoreInfo,
		words:   []string{"details", "agenda", "logistics"},
		phrases: []string{"more information", "more info", "tell me more", "could you share", "what exactly", "who else"},
	},
	{
		label:   LabelMeetingRequested,
		words:   []string{"call", "meeting", "zoom", "chat"},
		phrases: []string{"hop on", "set up a call", "quick call", "talk first", "speak first"},
	},
}

// Classify scores bodyText against the keyword rules. The participant name is
// ignored; it exists for interface parity with model-backed classifiers.
func (c *KeywordClassifier) Classify(_ context.Context, bodyText, _ string) (Result, error) {
	normalized := strings.ToLower(bodyText)
	tokens := tokenSet(normalized)

	bestLabel := LabelUnclear
	bestScore := 0
	tied := false
	for _, rule := range keywordRules {
		score := 0
		for _, word := range rule.words {
			if tokens[word] {
				score++
			}
		}
		for _, phrase := range rule.phrases {
			if strings.Contains(normalized, phrase) {
				score++
			}
		}
		switch {
		case score > bestScore:
			bestLabel = rule.label
			bestScore = score
			tied = false
		case score == bestScore && score > 0:
			tied = true
		}
	}
	if bestScore == 0 || tied {
		return Result{Classification: LabelUnclear}, nil
	}

	confidence := 0.6 + 0.1*float64(bestScore-1)
	if confidence > 0.9 {
		confidence = 0.9
	}
	return Result{Classification: bestLabel, Confidence: confidence}, nil
}

func tokenSet(normalized string) map[string]bool {
	fields := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	tokens := make(map[string]bool, len(fields))
	for _, field := range fields {
		tokens[strings.Trim(field, "'")] = true
	}
	return tokens
}
