package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketcolor/internal/domain"
	"marketcolor/internal/usecase"
)

func verificationPolicy() domain.VerificationPolicy {
	return domain.VerificationPolicy{
		DeepDiveDays:        2,
		DeepDiveMaxResults:  4,
		FactCheckDays:       3,
		FactCheckMaxResults: 5,
		CredibleDomains:     []string{"reuters.com", "bloomberg.com", "sec.gov"},
	}
}

func TestClaimVerifier_VerifiedMeansAllowListedCoverage(t *testing.T) {
	curation := domain.CurationResult{
		FactCheck: []domain.FactCheckTarget{
			{Claim: "ACME buyout", SourceDomain: "reddit.com", Query: "acme buyout"},
			{Claim: "XYZ recall", SourceDomain: "x.com", Query: "xyz recall"},
			{Claim: "Nothing found", SourceDomain: "x.com", Query: "nothing"},
		},
	}
	searcher := &funcSearcher{fn: func(spec domain.SearchSpec) []domain.StoryCandidate {
		switch spec.Query {
		case "acme buyout":
			return []domain.StoryCandidate{
				candidate("ACME blog", "https://someblog.net/acme", domain.CategoryMainstream, spec.Name),
				candidate("ACME in talks", "https://www.reuters.com/acme", domain.CategoryMainstream, spec.Name),
			}
		case "xyz recall":
			// The provider ignored the domain filter.
			return []domain.StoryCandidate{candidate("XYZ rumor", "https://notreuters.com/xyz", domain.CategoryMainstream, spec.Name)}
		default:
			return nil
		}
	}}

	report := usecase.NewClaimVerifier(searcher, verificationPolicy(), 2, testLogger()).
		Verify(context.Background(), curation)

	require.Len(t, report.FactChecks, 3)
	assert.True(t, report.FactChecks[0].Verified)
	require.Len(t, report.FactChecks[0].Supporting, 1)
	assert.Equal(t, "https://www.reuters.com/acme", report.FactChecks[0].Supporting[0].URL)
	assert.False(t, report.FactChecks[1].Verified)
	assert.Empty(t, report.FactChecks[1].Supporting)
	assert.False(t, report.FactChecks[2].Verified)
	assert.Equal(t, 1, report.VerifiedCount())

	assert.Len(t, report.Findings["verify_0"], 2)
	assert.Len(t, report.Findings["verify_1"], 1)
	assert.Contains(t, report.Findings, "verify_2")
	assert.Equal(t, curation.FactCheck[1], report.FactChecks[1].Target)
}

func TestClaimVerifier_SearchSpecs(t *testing.T) {
	curation := domain.CurationResult{
		DigDeeper: []domain.DigDeeperTarget{{Topic: "fed", Query: "fed dots"}, {Topic: "oil", Query: "opec cut"}},
		FactCheck: []domain.FactCheckTarget{{Claim: "c", Query: "claim query"}},
	}
	searcher := &funcSearcher{fn: func(spec domain.SearchSpec) []domain.StoryCandidate {
		return []domain.StoryCandidate{candidate(spec.Query, "https://bloomberg.com/"+spec.Name, domain.CategoryMainstream, spec.Name)}
	}}

	report := usecase.NewClaimVerifier(searcher, verificationPolicy(), 0, testLogger()).
		Verify(context.Background(), curation)

	byName := make(map[string]domain.SearchSpec)
	for _, s := range searcher.seen() {
		byName[s.Name] = s
	}
	require.Len(t, byName, 3)

	deep := byName["deep_1"]
	assert.Equal(t, "opec cut", deep.Query)
	assert.Equal(t, domain.DepthAdvanced, deep.Depth)
	assert.Equal(t, 2, deep.Days)
	assert.Equal(t, 4, deep.MaxResults)
	assert.Empty(t, deep.IncludeDomains)

	check := byName["verify_0"]
	assert.Equal(t, "claim query", check.Query)
	assert.Equal(t, 3, check.Days)
	assert.Equal(t, verificationPolicy().CredibleDomains, check.IncludeDomains)

	require.Len(t, report.DeepDives, 2)
	assert.Equal(t, "fed", report.DeepDives[0].Target.Topic)
	assert.Len(t, report.DeepDives[1].Findings, 1)
	for key := range report.Findings {
		assert.True(t, strings.HasPrefix(key, "deep_") || strings.HasPrefix(key, "verify_"), key)
	}
}

func TestClaimVerifier_NoTargets(t *testing.T) {
	searcher := &funcSearcher{fn: func(domain.SearchSpec) []domain.StoryCandidate { return nil }}

	report := usecase.NewClaimVerifier(searcher, verificationPolicy(), 2, testLogger()).
		Verify(context.Background(), domain.EmptyCurationResult())

	assert.Empty(t, searcher.seen())
	assert.Empty(t, report.DeepDives)
	assert.Empty(t, report.FactChecks)
	assert.NotNil(t, report.Findings)
}
