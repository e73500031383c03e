package secop

import (
	"context"
	"fmt"
	"strings"
)

// standardStrategy runs a fixed, bounded query plan: no planner calls, one
// synthesis pass per search, one finalization. It is the cheap verification
// mode.
type standardStrategy struct {
	inv *Investigator
}

func newStandardStrategy(inv *Investigator) (Strategy, error) {
	return &standardStrategy{inv: inv}, nil
}

func (s *standardStrategy) Name() string {
	return "standard"
}

func (s *standardStrategy) Run(ctx context.Context, subject Subject) (Report, error) {
	inv := s.inv
	if inv.searcher == nil {
		return Report{}, fmt.Errorf("standard strategy requires a search provider")
	}
	if inv.synthesizer == nil {
		return Report{}, fmt.Errorf("standard strategy requires a synthesizer model")
	}

	d := NewDossier(subject)
	var cost float64

	queries := standardQueryPlan(subject, inv.mode)
	if inv.maxSearches > 0 && len(queries) > inv.maxSearches {
		queries = queries[:inv.maxSearches]
	}

	for _, query := range queries {
		results, searchCost, err := inv.search(ctx, &d, query)
		if err != nil {
			return Report{}, err
		}
		cost += searchCost
		synthCost, err := inv.synthesize(ctx, &d, query, results)
		if err != nil {
			return Report{}, fmt.Errorf("synthesizer: %w", err)
		}
		cost += synthCost
	}

	narrative, finalCost, err := inv.finalize(ctx, d)
	if err != nil {
		return Report{}, fmt.Errorf("finalizer: %w", err)
	}
	cost += finalCost

	return Report{
		Narrative: narrative,
		Findings:  d.Findings,
		Sources:   d.Sources,
		Searches:  d.SearchCount,
		Cost:      cost,
	}, nil
}

// standardQueryPlan builds the fixed due-diligence queries for a subject.
// Spanish terms target Colombian oversight bodies and press.
func standardQueryPlan(subject Subject, mode Mode) []string {
	name := strings.TrimSpace(subject.Name)
	doc := strings.TrimSpace(subject.Document)

	ident := fmt.Sprintf("%q", name)
	if name == "" {
		ident = fmt.Sprintf("NIT %s", doc)
	}

	focus := "Colombia"
	if mode.GeographicFocus == "LATAM" {
		focus = "" // do not pin broader investigations to one country
	}

	queries := []string{
		strings.TrimSpace(fmt.Sprintf("%s contratos estatales %s", ident, focus)),
		fmt.Sprintf("%s sanciones OR multas OR inhabilidad", ident),
		fmt.Sprintf("%s investigación OR fiscalía OR contraloría", ident),
		fmt.Sprintf("%s noticias", ident),
	}
	if name != "" && doc != "" {
		queries = append(queries, fmt.Sprintf("%q NIT %s", name, doc))
	}
	return queries
}
