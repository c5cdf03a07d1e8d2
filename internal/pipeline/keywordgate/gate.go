// internal/pipeline/keywordgate/gate.go

// Package keywordgate performs a regex presence check on extracted text,
// used to gate absence-justification documents before they are persisted.
package keywordgate

import (
	"fmt"
	"regexp"
	"strings"

	"cv-screening/internal/common/logger"
)

const (
	StageName = "keyword-gate"
)

// MedicalTerms are the accepted mentions for an absence justificatif.
var MedicalTerms = []string{"certificat", "attestation", "medical"}

// Gate matches any of a set of required terms, case-insensitively and
// tolerant of French diacritics ("medical" also matches "médical").
type Gate struct {
	terms   []string
	pattern *regexp.Regexp
	logger  logger.Logger
}

func New(terms []string, log logger.Logger) (*Gate, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("keyword gate requires at least one term")
	}
	return &Gate{
		terms:   terms,
		pattern: compileTerms(terms),
		logger:  log.WithFields(map[string]interface{}{"stage": StageName}),
	}, nil
}

// Matches reports whether the text contains at least one required term.
func (g *Gate) Matches(text string) bool {
	found := g.pattern.MatchString(text)
	g.logger.Debug("keyword gate evaluated", map[string]interface{}{
		"found": found,
		"terms": g.terms,
	})
	return found
}

// AcceptedTerms returns the terms named in user-facing rejection messages.
func (g *Gate) AcceptedTerms() []string {
	return g.terms
}

// diacriticClasses maps plain vowels (and c) to character classes covering
// their accented French forms.
var diacriticClasses = map[rune]string{
	'a': "[aàâä]",
	'c': "[cç]",
	'e': "[eéèêë]",
	'i': "[iîï]",
	'o': "[oôö]",
	'u': "[uùûü]",
}

func compileTerms(terms []string) *regexp.Regexp {
	alts := make([]string, 0, len(terms))
	for _, term := range terms {
		var sb strings.Builder
		for _, r := range strings.ToLower(term) {
			if class, ok := diacriticClasses[r]; ok {
				sb.WriteString(class)
			} else {
				sb.WriteString(regexp.QuoteMeta(string(r)))
			}
		}
		alts = append(alts, sb.String())
	}
	return regexp.MustCompile("(?i)(" + strings.Join(alts, "|") + ")")
}
