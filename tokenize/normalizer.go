// Package tokenize normalizes article text before it is indexed.
package tokenize

import (
	"errors"
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// EnglishNormalizer lowercases text, drops punctuation and English stop
// words, and reduces the remaining words to their stems.
type EnglishNormalizer struct {
	analyzer analysis.Analyzer
}

func NewEnglishNormalizer() (*EnglishNormalizer, error) {
	analyzer := mapping.NewIndexMapping().AnalyzerNamed(en.AnalyzerName)
	if analyzer == nil {
		return nil, errors.New("english analyzer is not registered")
	}
	return &EnglishNormalizer{analyzer: analyzer}, nil
}

// Normalize returns the analyzed tokens joined by single spaces.
func (n *EnglishNormalizer) Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	tokens := n.analyzer.Analyze([]byte(text))
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		terms = append(terms, string(tok.Term))
	}
	return strings.Join(terms, " ")
}
