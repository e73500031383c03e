package secop

import (
	"strings"
	"testing"
)

func TestParsePlannerDecision(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    PlannerDecision
		wantErr bool
	}{
		{
			name: "report",
			raw:  "Action: Report",
			want: PlannerDecision{Action: PlannerActionReport},
		},
		{
			name: "answer treated as report",
			raw:  "Action: Answer",
			want: PlannerDecision{Action: PlannerActionReport},
		},
		{
			name: "search with query line",
			raw:  "Action: Search\nQuery: \"EJEMPLO SAS\" sanciones",
			want: PlannerDecision{Action: PlannerActionSearch, Query: `"EJEMPLO SAS" sanciones`},
		},
		{
			name: "search prefix without query label",
			raw:  "Search: EJEMPLO SAS contraloría",
			want: PlannerDecision{Action: PlannerActionSearch, Query: "EJEMPLO SAS contraloría"},
		},
		{
			name:    "search without any query",
			raw:     "Action: Search",
			wantErr: true,
		},
		{
			name:    "garbage",
			raw:     "I am not sure what to do.",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parsePlannerDecision(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestStripThinkBlocks(t *testing.T) {
	in := "<think>razonando sobre el NIT</think>\nAction: Report"
	if got := StripThinkBlocks(in); got != "Action: Report" {
		t.Errorf("got %q", got)
	}
	if got := StripThinkBlocks("  sin bloques  "); got != "sin bloques" {
		t.Errorf("got %q", got)
	}
}

func TestDossierSeedsContractContext(t *testing.T) {
	d := NewDossier(testSubject)
	if !strings.Contains(d.Findings, testSubject.Context) {
		t.Errorf("findings do not carry the contract context: %q", d.Findings)
	}
	if !strings.Contains(d.Label(), "doc. 900123456") {
		t.Errorf("label = %q", d.Label())
	}
}

func TestDossierAddSourcesDeduplicates(t *testing.T) {
	d := NewDossier(Subject{Name: "X"})
	d.AddSources([]SearchResult{
		{URL: "https://a.example"},
		{URL: "https://a.example"},
		{URL: ""},
		{URL: "https://b.example"},
	})
	d.AddSources([]SearchResult{{URL: "https://b.example"}})
	if len(d.Sources) != 2 {
		t.Errorf("Sources = %v", d.Sources)
	}
}

func TestPlannerPromptShowsRemainingBudget(t *testing.T) {
	d := NewDossier(testSubject)
	d.SearchCount = 3
	prompt := buildPlannerUserPrompt(d, 47)
	if !strings.Contains(prompt, "Search budget remaining: 47") {
		t.Errorf("prompt is missing the remaining budget:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Searches used: 3") {
		t.Errorf("prompt is missing the search count:\n%s", prompt)
	}
}
