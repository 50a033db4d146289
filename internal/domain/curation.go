package domain

// Impact is the curator's judgement of market impact.
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// StoryCategory is the shortlist category. It is narrower than SourceCategory:
// professional-feed items are ranked as mainstream or alpha.
type StoryCategory string

const (
	StoryMainstream StoryCategory = "mainstream"
	StoryAlpha      StoryCategory = "alpha"
	StorySocial     StoryCategory = "social"
)

// RankedStory is one shortlist entry. Order carries no guaranteed rank; final
// slot order is imposed by the synthesis formatting contract.
type RankedStory struct {
	Title     string        `json:"title"`
	Summary   string        `json:"summary"`
	SourceURL string        `json:"source_url"`
	Impact    Impact        `json:"impact"`
	Category  StoryCategory `json:"category"`
	Topic     string        `json:"topic,omitempty"`
}

// DigDeeperTarget asks the verifier for a follow-up search on a topic.
type DigDeeperTarget struct {
	Topic     string `json:"topic"`
	Query     string `json:"query"`
	Rationale string `json:"rationale"`
}

// FactCheckTarget is a claim that needs corroboration from a credible domain.
type FactCheckTarget struct {
	Claim        string `json:"claim"`
	SourceDomain string `json:"source_domain"`
	Query        string `json:"query"`
}

// CurationResult is the curator output handed to the verifier and synthesizer.
type CurationResult struct {
	TopStories []RankedStory     `json:"top_stories"`
	DigDeeper  []DigDeeperTarget `json:"dig_deeper"`
	FactCheck  []FactCheckTarget `json:"fact_check"`
}

// EmptyCurationResult is the documented fallback for unusable curator output.
func EmptyCurationResult() CurationResult {
	return CurationResult{
		TopStories: []RankedStory{},
		DigDeeper:  []DigDeeperTarget{},
		FactCheck:  []FactCheckTarget{},
	}
}

// Categories counts shortlist entries per category.
func (r CurationResult) Categories() map[StoryCategory]int {
	counts := make(map[StoryCategory]int)
	for _, s := range r.TopStories {
		counts[s.Category]++
	}
	return counts
}

// DistinctTopics returns how many distinct non-empty topics the shortlist spans.
func (r CurationResult) DistinctTopics() int {
	seen := make(map[string]struct{})
	for _, s := range r.TopStories {
		if s.Topic != "" {
			seen[s.Topic] = struct{}{}
		}
	}
	return len(seen)
}
