package domain

import (
	"errors"
	"fmt"
)

// Policy is the versioned rule set handed to the planner, curator and
// synthesizer request builders. Editing it changes curation behavior without
// touching pipeline control flow.
type Policy struct {
	Version          string             `yaml:"version"`
	Planner          PlannerPolicy      `yaml:"planner"`
	Curation         CurationPolicy     `yaml:"curation"`
	Verification     VerificationPolicy `yaml:"verification"`
	Synthesis        SynthesisPolicy    `yaml:"synthesis"`
	ProfessionalFeed ProfessionalPolicy `yaml:"professional_feed"`
	RSSFeeds         []RSSFeed          `yaml:"rss_feeds"`
	MarketSnapshot   []QuoteSymbol      `yaml:"market_snapshot"`
	Roster           []SearchSpec       `yaml:"roster"`
}

type PlannerPolicy struct {
	MainstreamCount    int      `yaml:"mainstream_count"`
	AlphaCount         int      `yaml:"alpha_count"`
	FallbackMainstream []string `yaml:"fallback_mainstream"`
	FallbackAlpha      []string `yaml:"fallback_alpha"`
}

// CountRange is an inclusive target range for one shortlist category.
type CountRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

type CurationPolicy struct {
	StalenessHours    int                   `yaml:"staleness_hours"`
	MinDistinctTopics int                   `yaml:"min_distinct_topics"`
	Topics            []string              `yaml:"topics"`
	CategoryTargets   map[string]CountRange `yaml:"category_targets"`
	DigDeeperCap      int                   `yaml:"dig_deeper_cap"`
	FactCheckCap      int                   `yaml:"fact_check_cap"`
	SnippetChars      int                   `yaml:"snippet_chars"`
}

type VerificationPolicy struct {
	DeepDiveDays        int      `yaml:"deep_dive_days"`
	DeepDiveMaxResults  int      `yaml:"deep_dive_max_results"`
	FactCheckDays       int      `yaml:"fact_check_days"`
	FactCheckMaxResults int      `yaml:"fact_check_max_results"`
	CredibleDomains     []string `yaml:"credible_domains"`
}

// SlotBand assigns briefing slots [From, To] to a kind of story.
type SlotBand struct {
	From  int    `yaml:"from"`
	To    int    `yaml:"to"`
	Label string `yaml:"label"`
}

type SynthesisPolicy struct {
	StoryCount      int        `yaml:"story_count"`
	MaxTokens       int        `yaml:"max_tokens"`
	Slots           []SlotBand `yaml:"slots"`
	WatchLabel      string     `yaml:"watch_label"`
	SummaryLabel    string     `yaml:"summary_label"`
	HistoryGuidance string     `yaml:"history_guidance"`
}

type ProfessionalPolicy struct {
	PageSize int      `yaml:"page_size"`
	Denylist []string `yaml:"denylist"`
}

type RSSFeed struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	MaxItems int    `yaml:"max_items"`
}

// Validate rejects policies the pipeline cannot run with.
func (p *Policy) Validate() error {
	var errs []error
	if p.Version == "" {
		errs = append(errs, errors.New("version is required"))
	}
	if len(p.Roster) == 0 {
		errs = append(errs, errors.New("roster must not be empty"))
	}
	seen := make(map[string]struct{}, len(p.Roster))
	for i, spec := range p.Roster {
		if spec.Name == "" || spec.Query == "" {
			errs = append(errs, fmt.Errorf("roster[%d]: name and query are required", i))
			continue
		}
		if _, dup := seen[spec.Name]; dup {
			errs = append(errs, fmt.Errorf("roster[%d]: duplicate name %q", i, spec.Name))
		}
		seen[spec.Name] = struct{}{}
		if !spec.Category.Valid() {
			errs = append(errs, fmt.Errorf("roster[%d]: unknown category %q", i, spec.Category))
		}
	}
	if p.Curation.DigDeeperCap <= 0 || p.Curation.FactCheckCap <= 0 {
		errs = append(errs, errors.New("curation caps must be positive"))
	}
	if p.Synthesis.StoryCount <= 0 {
		errs = append(errs, errors.New("synthesis story_count must be positive"))
	}
	if p.Planner.MainstreamCount < 0 || p.Planner.AlphaCount < 0 {
		errs = append(errs, errors.New("planner counts must not be negative"))
	}
	if len(p.Planner.FallbackMainstream) < p.Planner.MainstreamCount ||
		len(p.Planner.FallbackAlpha) < p.Planner.AlphaCount {
		errs = append(errs, errors.New("planner fallback lists must cover the planner counts"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid policy: %w", errors.Join(errs...))
	}
	return nil
}
