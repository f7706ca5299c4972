// Package sentiment scores transcript text with a small word lexicon.
package sentiment

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexicon []byte

// Lexicon holds per-word scores and optional negators.
type Lexicon struct {
	Labels   map[string]int `yaml:"labels"`
	Negators []string       `yaml:"negators"`
}

// DefaultLexicon returns the embedded installation lexicon.
func DefaultLexicon() (*Lexicon, error) {
	return ParseLexicon(defaultLexicon)
}

// ParseLexicon decodes a YAML lexicon.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var lx Lexicon
	if err := yaml.Unmarshal(data, &lx); err != nil {
		return nil, fmt.Errorf("lexicon decode: %w", err)
	}
	if lx.Labels == nil {
		lx.Labels = map[string]int{}
	}
	return &lx, nil
}

// LoadLexicon reads a YAML lexicon from disk.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon read: %w", err)
	}
	return ParseLexicon(data)
}

// Extend merges other into lx; other wins on conflicts.
func (lx *Lexicon) Extend(other *Lexicon) {
	if other == nil {
		return
	}
	for w, s := range other.Labels {
		lx.Labels[strings.ToLower(w)] = s
	}
	lx.Negators = append(lx.Negators, other.Negators...)
}

// Analysis is the breakdown of a scored text.
type Analysis struct {
	Score       int      `json:"score"`
	Comparative float64  `json:"comparative"`
	Tokens      []string `json:"tokens"`
	Positive    []string `json:"positive"`
	Negative    []string `json:"negative"`
}

// Analyzer scores text against a lexicon. It is safe for concurrent use
// once built.
type Analyzer struct {
	labels   map[string]int
	negators map[string]struct{}
}

// NewAnalyzer builds an Analyzer from lx.
func NewAnalyzer(lx *Lexicon) *Analyzer {
	a := &Analyzer{
		labels:   make(map[string]int, len(lx.Labels)),
		negators: make(map[string]struct{}, len(lx.Negators)),
	}
	for w, s := range lx.Labels {
		a.labels[strings.ToLower(w)] = s
	}
	for _, n := range lx.Negators {
		a.negators[strings.ToLower(n)] = struct{}{}
	}
	return a
}

// Analyze scores text. The score is the plain sum of matched words, so it
// is not bounded to -5..5 when several scored words appear.
func (a *Analyzer) Analyze(text string) Analysis {
	tokens := Tokenize(text)
	out := Analysis{Tokens: tokens}

	for i, tok := range tokens {
		s, ok := a.labels[tok]
		if !ok {
			continue
		}
		if i > 0 {
			if _, neg := a.negators[tokens[i-1]]; neg {
				s = -s
			}
		}
		out.Score += s
		switch {
		case s > 0:
			out.Positive = append(out.Positive, tok)
		case s < 0:
			out.Negative = append(out.Negative, tok)
		}
	}
	if len(tokens) > 0 {
		out.Comparative = float64(out.Score) / float64(len(tokens))
	}
	return out
}

// Score returns the summed score of text.
func (a *Analyzer) Score(_ context.Context, text string) (float64, error) {
	return float64(a.Analyze(text).Score), nil
}

var punctuation = strings.NewReplacer(
	".", " ", ",", " ", "/", " ", "#", " ", "!", " ", "?", " ",
	"$", " ", "%", " ", "^", " ", "&", " ", "*", " ", ";", " ",
	":", " ", "{", " ", "}", " ", "=", " ", "_", " ", "`", " ",
	`"`, " ", "~", " ", "(", " ", ")", " ",
)

// Tokenize lowercases text, blanks out punctuation and splits on whitespace.
// Apostrophes and hyphens stay inside words.
func Tokenize(text string) []string {
	return strings.Fields(punctuation.Replace(strings.ToLower(text)))
}
