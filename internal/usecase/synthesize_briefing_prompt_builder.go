package usecase

import (
	"fmt"
	"strings"

	"marketcolor/internal/domain"
)

const (
	defaultStoryCount     = 10
	defaultWatchLabel     = "What to watch"
	defaultSummaryLabel   = "Executive summary"
	findingsPerDeepDive   = 3
	findingsSnippetChars  = 240
	supportingPerFactItem = 2
)

func buildSynthesisMessages(tc TimeContext, in SynthesisInput, policy domain.SynthesisPolicy) []domain.Message {
	return []domain.Message{
		{Role: "system", Content: synthesisInstructions(policy)},
		{Role: "user", Content: synthesisContext(tc, in, policy)},
	}
}

// synthesisInstructions renders the formatting contract. Compliance is not
// checked afterwards; the returned text is delivered as is.
func synthesisInstructions(policy domain.SynthesisPolicy) string {
	count := positiveOr(policy.StoryCount, defaultStoryCount)
	watch := firstNonEmpty(policy.WatchLabel, defaultWatchLabel)
	summary := firstNonEmpty(policy.SummaryLabel, defaultSummaryLabel)

	var sb strings.Builder
	sb.WriteString("You write a pre-market briefing for active traders, delivered as a chat message.\n\n")
	sb.WriteString("### Format\n")
	sb.WriteString(fmt.Sprintf("- Start with \"%s\": three short sentences on what matters most today.\n", summary))
	sb.WriteString(fmt.Sprintf("- Then exactly %d stories, numbered 1. to %d.\n", count, count))
	for _, band := range policy.Slots {
		if band.From == band.To {
			sb.WriteString(fmt.Sprintf("- Slot %d: %s.\n", band.From, band.Label))
			continue
		}
		sb.WriteString(fmt.Sprintf("- Slots %d-%d: %s.\n", band.From, band.To, band.Label))
	}
	sb.WriteString("- Each story is \"N. *Headline*: two or three sentences\" followed by its source link on the next line.\n")
	sb.WriteString("- Every story MUST carry its source link. Never invent a link that is not in the shortlist or findings.\n")
	sb.WriteString("- Write tickers as $SYMBOL.\n")
	sb.WriteString("- Claims marked UNCONFIRMED must be worded as unconfirmed.\n")
	sb.WriteString(fmt.Sprintf("- End with exactly one \"%s\" line naming the single event to watch today.\n", watch))
	sb.WriteString("- Use Telegram Markdown: *bold* only, no headers, no tables.\n")
	return sb.String()
}

func synthesisContext(tc TimeContext, in SynthesisInput, policy domain.SynthesisPolicy) string {
	var sb strings.Builder
	sb.WriteString(tc.Describe())
	sb.WriteString("\n")

	if len(in.Quotes) > 0 {
		sb.WriteString("## Market snapshot\n")
		for _, q := range in.Quotes {
			sb.WriteString(q.Line() + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Shortlist\n")
	if len(in.Curation.TopStories) == 0 {
		sb.WriteString("The shortlist is empty today. Write a short briefing from the market snapshot and say coverage was thin.\n")
	}
	for i, s := range in.Curation.TopStories {
		sb.WriteString(fmt.Sprintf("%d. [%s/%s] %s\n", i+1, s.Category, s.Impact, s.Title))
		if s.Summary != "" {
			sb.WriteString("   " + s.Summary + "\n")
		}
		if s.SourceURL != "" {
			sb.WriteString("   " + s.SourceURL + "\n")
		}
	}
	sb.WriteString("\n")

	if len(in.Report.DeepDives) > 0 {
		sb.WriteString("## Deep dives\n")
		for _, dd := range in.Report.DeepDives {
			sb.WriteString(fmt.Sprintf("### %s (%s)\n", dd.Target.Topic, dd.Target.Query))
			if len(dd.Findings) == 0 {
				sb.WriteString("- no follow-up coverage found\n")
			}
			for i, f := range dd.Findings {
				if i == findingsPerDeepDive {
					break
				}
				sb.WriteString(fmt.Sprintf("- %s (%s)\n", f.Title, f.URL))
				if f.Snippet != "" {
					sb.WriteString("  " + domain.TruncateRunes(f.Snippet, findingsSnippetChars) + "\n")
				}
			}
		}
		sb.WriteString("\n")
	}

	if len(in.Report.FactChecks) > 0 {
		sb.WriteString("## Fact checks\n")
		for _, fc := range in.Report.FactChecks {
			label := "UNCONFIRMED"
			if fc.Verified {
				label = "CONFIRMED"
			}
			sb.WriteString(fmt.Sprintf("- %s: %s", label, fc.Target.Claim))
			if fc.Target.SourceDomain != "" {
				sb.WriteString(" (from " + fc.Target.SourceDomain + ")")
			}
			sb.WriteString("\n")
			for i, s := range fc.Supporting {
				if i == supportingPerFactItem {
					break
				}
				sb.WriteString("  " + s.URL + "\n")
			}
		}
		sb.WriteString("\n")
	}

	if !in.History.IsEmpty() {
		sb.WriteString("## Previous briefing\n")
		if policy.HistoryGuidance != "" {
			sb.WriteString(policy.HistoryGuidance + "\n")
		}
		if len(in.History.Headlines) > 0 {
			sb.WriteString("Headlines: " + strings.Join(in.History.Headlines, "; ") + "\n")
		}
		if len(in.History.Tickers) > 0 {
			sb.WriteString("Tickers: " + strings.Join(in.History.Tickers, ", ") + "\n")
		}
	}
	return sb.String()
}
