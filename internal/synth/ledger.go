package synth

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/aymen-fkir/sku-review-generator/internal/models"
)

// prefixWords is the number of leading words compared between reviews.
const prefixWords = 3

// Rejection reasons reported by Ledger.Check.
const (
	ReasonRepetitive = "repetitive phrases"
	ReasonDuplicate  = "duplicate text"
	ReasonPrefix     = "same opening words"
)

// Ledger records the review texts accepted in one run.
// It is owned by one run and is not safe for concurrent use.
type Ledger struct {
	texts    map[string]struct{}
	prefixes map[string]struct{}

	phrases    []string
	maxPhrases int
	fold       cases.Caser
}

// NewLedger returns an empty ledger that rejects texts containing maxPhrases
// or more of phrases.
func NewLedger(phrases []string, maxPhrases int) *Ledger {
	l := &Ledger{
		texts:      make(map[string]struct{}),
		prefixes:   make(map[string]struct{}),
		maxPhrases: maxPhrases,
		fold:       cases.Fold(),
	}
	for _, p := range phrases {
		if p = strings.TrimSpace(p); p != "" {
			l.phrases = append(l.phrases, l.fold.String(p))
		}
	}
	if l.maxPhrases <= 0 {
		l.maxPhrases = 2
	}
	return l
}

// Check reports whether text should be regenerated and why. Nothing is
// rejected while the ledger is empty.
func (l *Ledger) Check(text string) (string, bool) {
	if len(l.texts) == 0 {
		return "", false
	}
	folded := l.fold.String(text)

	hits := 0
	for _, p := range l.phrases {
		if strings.Contains(folded, p) {
			hits++
		}
	}
	if hits >= l.maxPhrases {
		return ReasonRepetitive, true
	}
	if _, ok := l.texts[strings.TrimSpace(text)]; ok {
		return ReasonDuplicate, true
	}
	if _, ok := l.prefixes[prefix(folded)]; ok {
		return ReasonPrefix, true
	}
	return "", false
}

// Add records an accepted text.
func (l *Ledger) Add(text string) {
	text = strings.TrimSpace(text)
	l.texts[text] = struct{}{}
	l.prefixes[prefix(l.fold.String(text))] = struct{}{}
}

func (l *Ledger) Len() int {
	return len(l.texts)
}

// Reset forgets every text.
func (l *Ledger) Reset() {
	clear(l.texts)
	clear(l.prefixes)
}

// Rebuild resets the ledger to the reviews of restored records.
func (l *Ledger) Rebuild(records []models.ReviewRecord) {
	l.Reset()
	for _, rec := range records {
		if strings.TrimSpace(rec.Review) != "" {
			l.Add(rec.Review)
		}
	}
}

func prefix(folded string) string {
	words := strings.Fields(folded)
	return strings.Join(words[:min(len(words), prefixWords)], " ")
}
