// Package sentiment labels guest review comments using a word lexicon
// with negation and contrast handling.
package sentiment

import (
	"regexp"
	"strings"
)

// Label is the outcome of classifying a comment
type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Lexicon holds the word sets used by the classifier. It is never modified after NewLexicon returns.
type Lexicon struct {
	positive map[string]struct{}
	negative map[string]struct{}
	negation map[string]struct{}
	contrast map[string]struct{}
}

// NewLexicon builds a lexicon, lowercasing and trimming every word
func NewLexicon(positive, negative, negation, contrast []string) *Lexicon {
	return &Lexicon{
		positive: wordSet(positive),
		negative: wordSet(negative),
		negation: wordSet(negation),
		contrast: wordSet(contrast),
	}
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// Size returns the number of positive and negative words
func (l *Lexicon) Size() (positive, negative int) {
	return len(l.positive), len(l.negative)
}

// Result is a classified comment
type Result struct {
	Label         Label `json:"sentiment"`
	PositiveScore int   `json:"positive_score"`
	NegativeScore int   `json:"negative_score"`
}

// Classifier scores comments against a fixed lexicon. It is safe for concurrent use.
type Classifier struct {
	lexicon *Lexicon
}

func NewClassifier(lexicon *Lexicon) *Classifier {
	return &Classifier{lexicon: lexicon}
}

// Tokenize lowercases text and splits it into word tokens
func Tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// Classify scores a comment.
//
// A negation word flips the next sentiment word, however far away it is.
// If any contrast word occurs the two scores are swapped once at the end.
func (c *Classifier) Classify(comment string) Result {
	var pos, neg int
	negated := false
	contrast := false

	for _, token := range Tokenize(comment) {
		if _, ok := c.lexicon.contrast[token]; ok {
			contrast = true
		}

		if _, ok := c.lexicon.negation[token]; ok {
			negated = true
			continue
		}
		if _, ok := c.lexicon.positive[token]; ok {
			pos += polarity(negated)
			negated = false
			continue
		}
		if _, ok := c.lexicon.negative[token]; ok {
			neg += polarity(negated)
			negated = false
		}
	}

	if contrast {
		pos, neg = neg, pos
	}

	return Result{
		Label:         labelFor(pos, neg),
		PositiveScore: pos,
		NegativeScore: neg,
	}
}

func polarity(negated bool) int {
	if negated {
		return -1
	}
	return 1
}

func labelFor(pos, neg int) Label {
	switch {
	case pos > neg:
		return Positive
	case neg > pos:
		return Negative
	default:
		return Neutral
	}
}
