package secop

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type PlannerAction string

const (
	PlannerActionReport PlannerAction = "report"
	PlannerActionSearch PlannerAction = "search"
)

// PlannerDecision is the parsed output of the planner model.
type PlannerDecision struct {
	Action PlannerAction
	Query  string
}

const plannerSystemPrompt = "You plan web research about a party to Colombian public contracts. You must gather evidence from web searches before reporting. Never rely on internal knowledge alone - every fact must be grounded in search results. Prefer Spanish queries for Colombian sources (sanciones, multas, inhabilidades, fiscalía, contraloría, procuraduría) and verify that results actually describe the specific contractor, not a similarly named one. If findings contain [MISMATCH] or [NEEDS VERIFICATION] markers, search again with more specific queries, usually including the document number (NIT)."

const synthesizerSystemPrompt = "You compress web search findings about a public-procurement contractor into concise plain-text notes. ONLY include facts that appear in the provided results. Never add information from internal knowledge. Keep anything relevant to due diligence: sanctions, fines, disqualifications, ongoing investigations, news coverage, related companies and persons, and signs of a shell company (large contracts, minimal public footprint). Critically verify that results match the specific contractor - compare names, document numbers and locations. If results appear to describe a different entity, note the discrepancy and mark it [MISMATCH - NEEDS VERIFICATION]. Output plain text only."

const finalizerSystemPrompt = "You write the final investigation narrative about a party to Colombian public contracts, using only the collected findings. Structure it as: profile, contracting history, adverse findings (sanctions, investigations, news), mapped relationships if any, and an overall assessment. State clearly when the evidence is thin or inconclusive. Do not invent facts."

const extractorSystemPrompt = "You extract entities related to a public-procurement contractor from page text: companies, persons, government entities and their stated relationship. Output one entity per line as 'name - relationship'. Output nothing else. If the text names no related entities, output (none)."

func buildPlannerUserPrompt(d Dossier, remaining int) string {
	var b strings.Builder
	b.WriteString("Review the dossier and choose an action.\n")
	b.WriteString("IMPORTANT: You must search for evidence before reporting. Do NOT report using internal knowledge.\n")
	b.WriteString("IMPORTANT: Output ONLY the action line(s). Do NOT write the narrative here.\n\n")
	if strings.TrimSpace(d.Findings) == "" {
		b.WriteString("The findings section is empty - you MUST search first.\n")
		b.WriteString("Output exactly:\nAction: Search\nQuery: <your search query>\n\n")
	} else {
		b.WriteString("Check the findings for gaps or [NEEDS VERIFICATION] placeholders.\n")
		b.WriteString("If the findings are sufficient for a grounded narrative, output exactly: Action: Report\n")
		b.WriteString("Otherwise output exactly:\nAction: Search\nQuery: <your search query>\n\n")
	}
	b.WriteString(fmt.Sprintf("Search budget remaining: %d\n\n", remaining))
	b.WriteString("Dossier:\n")
	b.WriteString(d.Snapshot())
	return b.String()
}

func buildSynthesizerUserPrompt(d Dossier, query string, results []SearchResult) string {
	var b strings.Builder
	b.WriteString("Subject:\n")
	b.WriteString(d.Label())
	b.WriteString("\n\nExisting Findings:\n")
	if strings.TrimSpace(d.Findings) == "" {
		b.WriteString("(empty)\n")
	} else {
		b.WriteString(d.Findings)
		b.WriteString("\n")
	}
	b.WriteString("\nNew Search Query:\n")
	b.WriteString(query)
	b.WriteString("\n\nNew Search Results (title | url | snippet):\n")
	if len(results) == 0 {
		b.WriteString("(no results returned)\n")
	}
	for i, r := range results {
		b.WriteString(fmt.Sprintf("%d. %s | %s | %s\n", i+1, strings.TrimSpace(r.Title), strings.TrimSpace(r.URL), strings.TrimSpace(r.Snippet)))
	}
	b.WriteString("\nTask: Update the findings with concise, relevant facts in PLAIN TEXT. Remove noise and duplication. Verify the results are about this specific contractor - check name and document number. Respond with only the updated findings text.")
	return b.String()
}

func buildFinalizerUserPrompt(d Dossier) string {
	var b strings.Builder
	b.WriteString("Subject:\n")
	b.WriteString(d.Label())
	b.WriteString("\n\nFindings:\n")
	if strings.TrimSpace(d.Findings) == "" {
		b.WriteString("(empty)\n")
	} else {
		b.WriteString(d.Findings)
		b.WriteString("\n")
	}
	if len(d.Network) > 0 {
		b.WriteString("\nMapped network:\n")
		b.WriteString(strings.Join(d.Network, "\n"))
		b.WriteString("\n")
	}
	b.WriteString("\nWrite the investigation narrative. If the findings are insufficient, say so explicitly instead of speculating.")
	return b.String()
}

func buildExtractorUserPrompt(d Dossier, pageURL, pageText string) string {
	var b strings.Builder
	b.WriteString("Subject:\n")
	b.WriteString(d.Label())
	b.WriteString("\n\nPage URL:\n")
	b.WriteString(pageURL)
	b.WriteString("\n\nPage text:\n")
	b.WriteString(pageText)
	b.WriteString("\n\nList entities related to the subject, one per line as 'name - relationship'.")
	return b.String()
}

var queryRegex = regexp.MustCompile(`(?i)query\s*[:\-]\s*(.+)`) //nolint:gochecknoglobals
var thinkRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)   //nolint:gochecknoglobals

// StripThinkBlocks removes <think>...</think> blocks from LLM responses.
// Some models (like qwen3) output reasoning in these blocks.
func StripThinkBlocks(s string) string {
	return strings.TrimSpace(thinkRegex.ReplaceAllString(s, ""))
}

// parsePlannerDecision attempts to read the planner output.
func parsePlannerDecision(raw string) (PlannerDecision, error) {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)

	if strings.Contains(lower, "action: report") || strings.HasPrefix(lower, "report") {
		return PlannerDecision{Action: PlannerActionReport}, nil
	}

	// Models sometimes answer "Action: Answer" despite the instructions;
	// treat it as a report decision.
	if strings.Contains(lower, "action: answer") {
		return PlannerDecision{Action: PlannerActionReport}, nil
	}

	if strings.Contains(lower, "search") {
		query := extractQuery(trimmed)
		if query == "" {
			return PlannerDecision{}, errors.New("planner requested search but no query was found")
		}
		return PlannerDecision{Action: PlannerActionSearch, Query: query}, nil
	}

	return PlannerDecision{}, fmt.Errorf("unable to parse planner output: %q", raw)
}

func extractQuery(raw string) string {
	if m := queryRegex.FindStringSubmatch(raw); len(m) == 2 {
		return strings.TrimSpace(m[1])
	}

	lines := strings.Split(raw, "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(trimmed), "search") {
			return strings.TrimSpace(strings.TrimLeft(trimmed[len("search"):], ":- "))
		}
	}

	if idx := strings.Index(strings.ToLower(raw), "search"); idx >= 0 {
		tail := strings.TrimSpace(raw[idx+len("search"):])
		if tail != "" {
			return tail
		}
	}
	return ""
}
