package usecase

import (
	"fmt"
	"sort"
	"strings"

	"marketcolor/internal/domain"
)

// categoryOrder fixes the order candidate groups appear in the curator request.
var categoryOrder = []domain.SourceCategory{
	domain.CategoryMainstream,
	domain.CategoryProfessional,
	domain.CategoryAlpha,
	domain.CategorySocial,
}

const defaultPromptSnippetChars = 280

func buildCuratorMessages(tc TimeContext, set *domain.CandidateSet, policy domain.CurationPolicy) []domain.Message {
	return []domain.Message{
		{Role: "system", Content: curatorInstructions(policy)},
		{Role: "user", Content: curatorCandidates(tc, set, policy)},
	}
}

func curatorInstructions(policy domain.CurationPolicy) string {
	var sb strings.Builder
	sb.WriteString("You are the news editor of a daily pre-market briefing for active traders.\n\n")

	sb.WriteString("### Rules\n")
	sb.WriteString(fmt.Sprintf("1. Freshness: exclude anything published more than %d hours before the current time. ", policy.StalenessHours))
	sb.WriteString("Items without a timestamp may stay only if their content is clearly current.\n")
	sb.WriteString("2. Deduplication: several candidates about one underlying event become ONE story. ")
	sb.WriteString("Never split one event into several angle stories.\n")
	if len(policy.Topics) > 0 {
		sb.WriteString(fmt.Sprintf("3. Diversity: the shortlist must span at least %d distinct topics from: %s. ",
			policy.MinDistinctTopics, strings.Join(policy.Topics, ", ")))
		sb.WriteString("A shortlist concentrated on one theme is wrong. Put the topic of each story in \"topic\".\n")
	}
	if targets := formatCategoryTargets(policy.CategoryTargets); targets != "" {
		sb.WriteString("4. Category mix: " + targets + ".\n")
	}
	sb.WriteString("5. Alpha and social stories must describe a concrete event (a trade, a filing, a price or volume spike). ")
	sb.WriteString("Never select instructional content such as how to scan for something.\n")
	sb.WriteString("6. Professional-feed items are ranked as mainstream or alpha depending on what they describe.\n")
	sb.WriteString(fmt.Sprintf("7. dig_deeper: up to %d stories that deserve a follow-up search, each with a precise query.\n", policy.DigDeeperCap))
	sb.WriteString(fmt.Sprintf("8. fact_check: up to %d claims from low-trust sources (social, blogs) that need confirmation from a major outlet, each with a verification query.\n\n", policy.FactCheckCap))

	sb.WriteString("### Response Format\n")
	sb.WriteString("Return only one JSON object:\n")
	sb.WriteString("{\n")
	sb.WriteString("  \"top_stories\": [{\"title\": \"...\", \"summary\": \"one line\", \"source_url\": \"https://...\", \"impact\": \"high|medium|low\", \"category\": \"mainstream|alpha|social\", \"topic\": \"macro\"}],\n")
	sb.WriteString("  \"dig_deeper\": [{\"topic\": \"...\", \"query\": \"...\", \"rationale\": \"...\"}],\n")
	sb.WriteString("  \"fact_check\": [{\"claim\": \"...\", \"source_domain\": \"reddit.com\", \"query\": \"...\"}]\n")
	sb.WriteString("}\n")
	return sb.String()
}

func formatCategoryTargets(targets map[string]domain.CountRange) string {
	if len(targets) == 0 {
		return ""
	}
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		r := targets[name]
		parts = append(parts, fmt.Sprintf("%d-%d %s", r.Min, r.Max, name))
	}
	return strings.Join(parts, ", ")
}

func curatorCandidates(tc TimeContext, set *domain.CandidateSet, policy domain.CurationPolicy) string {
	snippetChars := policy.SnippetChars
	if snippetChars <= 0 {
		snippetChars = defaultPromptSnippetChars
	}

	var sb strings.Builder
	sb.WriteString(tc.Describe())
	sb.WriteString(fmt.Sprintf("Staleness window: %d hours\n\n", policy.StalenessHours))

	grouped := set.ByCategory()
	if set.Total() == 0 {
		sb.WriteString("No candidates were retrieved in this run. Return empty lists.\n")
		return sb.String()
	}

	index := 1
	for _, cat := range categoryOrder {
		items := grouped[cat]
		if len(items) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("## %s (%d)\n", strings.ToUpper(string(cat)), len(items)))
		for _, c := range items {
			sb.WriteString(fmt.Sprintf("[%d] %s\n", index, c.Title))
			sb.WriteString(fmt.Sprintf("    url: %s\n", c.URL))
			if c.PublishedAt != "" {
				sb.WriteString(fmt.Sprintf("    published: %s\n", c.PublishedAt))
			}
			sb.WriteString(fmt.Sprintf("    via: %s\n", c.SearchName))
			if c.Snippet != "" {
				sb.WriteString("    " + domain.TruncateRunes(c.Snippet, snippetChars) + "\n")
			}
			index++
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
