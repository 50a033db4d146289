package domain

import "fmt"

// Key prefixes for the verifier's findings map.
const (
	DeepKeyPrefix   = "deep_"
	VerifyKeyPrefix = "verify_"
)

// DeepKey returns the findings key for the i-th dig-deeper target.
func DeepKey(i int) string { return fmt.Sprintf("%s%d", DeepKeyPrefix, i) }

// VerifyKey returns the findings key for the i-th fact-check target.
func VerifyKey(i int) string { return fmt.Sprintf("%s%d", VerifyKeyPrefix, i) }

// VerificationResult records whether a claim found credible coverage.
//
// Verified is a coverage proxy: it is true iff at least one result came back
// from an allow-listed domain. The claim is never compared to the result text.
type VerificationResult struct {
	Target     FactCheckTarget  `json:"target"`
	Verified   bool             `json:"verified"`
	Supporting []StoryCandidate `json:"supporting"`
}

// DeepDiveResult carries the follow-up candidates for a dig-deeper target.
type DeepDiveResult struct {
	Target   DigDeeperTarget  `json:"target"`
	Findings []StoryCandidate `json:"findings"`
}

// VerificationReport accumulates the verifier's work for one run.
// Findings is keyed by DeepKey/VerifyKey; the typed slices keep target order.
type VerificationReport struct {
	Findings   map[string][]StoryCandidate `json:"findings"`
	DeepDives  []DeepDiveResult            `json:"deep_dives"`
	FactChecks []VerificationResult        `json:"fact_checks"`
}

// VerifiedCount returns how many fact checks were marked verified.
func (r VerificationReport) VerifiedCount() int {
	n := 0
	for _, fc := range r.FactChecks {
		if fc.Verified {
			n++
		}
	}
	return n
}
