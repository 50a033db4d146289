package domain

import (
	"context"
	"fmt"
)

// QuoteSymbol names one instrument of the market snapshot.
type QuoteSymbol struct {
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol"`
}

// QuoteSnapshot is the latest price of one instrument. Available is false when
// the quote could not be fetched.
type QuoteSnapshot struct {
	Name      string
	Symbol    string
	Price     float64
	ChangePct float64
	Available bool
}

// Line renders the snapshot for the synthesis context.
func (q QuoteSnapshot) Line() string {
	if !q.Available {
		return fmt.Sprintf("⚠️ %s: Data unavailable", q.Name)
	}
	marker := "🟢"
	if q.ChangePct < 0 {
		marker = "🔴"
	}
	return fmt.Sprintf("%s %s: %.2f (%+.2f%%)", marker, q.Name, q.Price, q.ChangePct)
}

// QuoteSource returns one snapshot per requested symbol, in request order.
// Failures are reported per symbol through Available=false.
type QuoteSource interface {
	Snapshot(ctx context.Context, symbols []QuoteSymbol) []QuoteSnapshot
}
