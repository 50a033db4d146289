package domain

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// TickerMarker prefixes ticker-like tokens in briefing text ("$NVDA").
const TickerMarker = '$'

const maxTickerLetters = 5

// headlinePattern matches a *bold* or **bold** span followed by a colon.
var headlinePattern = regexp.MustCompile(`\*{1,2}([^*\n]+?)\*{1,2}\s*:`)

// HistoryRecord is the memo of the previous briefing. Exactly one exists; each
// successful run replaces it wholesale. It is advisory input to synthesis and
// never filters topics out.
type HistoryRecord struct {
	Headlines []string  `json:"headlines"`
	Tickers   []string  `json:"tickers"`
	SavedAt   time.Time `json:"timestamp"`
}

// IsEmpty reports whether the record carries nothing worth showing.
func (r HistoryRecord) IsEmpty() bool {
	return len(r.Headlines) == 0 && len(r.Tickers) == 0
}

// NewHistoryRecord derives the memo from a final briefing text.
func NewHistoryRecord(finalText string, at time.Time) HistoryRecord {
	return HistoryRecord{
		Headlines: ExtractHeadlines(finalText),
		Tickers:   ExtractTickers(finalText),
		SavedAt:   at.UTC(),
	}
}

// ExtractHeadlines returns emphasis-delimited spans followed by a colon, in
// order of first appearance. This is a heuristic, not a parser.
func ExtractHeadlines(text string) []string {
	seen := make(map[string]struct{})
	headlines := []string{}
	for _, m := range headlinePattern.FindAllStringSubmatch(text, -1) {
		h := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m[1]), ":"))
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		headlines = append(headlines, h)
	}
	return headlines
}

// ExtractTickers scans whitespace-delimited words for the ticker marker
// followed by 1-5 letters. Trailing punctuation is ignored; symbols are
// upper-cased and de-duplicated in order of first appearance.
func ExtractTickers(text string) []string {
	seen := make(map[string]struct{})
	tickers := []string{}
	for _, word := range strings.Fields(text) {
		symbol, ok := tickerFromWord(word)
		if !ok {
			continue
		}
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}
		tickers = append(tickers, symbol)
	}
	return tickers
}

func tickerFromWord(word string) (string, bool) {
	// Leading punctuation such as "(" or "*" may wrap the marker.
	word = strings.TrimLeftFunc(word, func(r rune) bool {
		return r != TickerMarker && (unicode.IsPunct(r) || unicode.IsSymbol(r))
	})
	runes := []rune(word)
	if len(runes) < 2 || runes[0] != TickerMarker {
		return "", false
	}
	n := 0
	for _, r := range runes[1:] {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			break
		}
		n++
	}
	if n == 0 || n > maxTickerLetters {
		return "", false
	}
	if rest := runes[1+n:]; len(rest) > 0 && unicode.IsDigit(rest[0]) {
		return "", false
	}
	return strings.ToUpper(string(runes[1 : 1+n])), true
}

// HistoryStore persists the single history record.
// Load never fails: a missing or malformed record yields the zero value.
type HistoryStore interface {
	Load(ctx context.Context) HistoryRecord
	Save(ctx context.Context, record HistoryRecord) error
}
