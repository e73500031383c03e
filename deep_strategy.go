package secop

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// deepStrategy is the planner-driven loop: the planner reads the dossier
// and either requests another search or decides the findings are enough
// for the narrative. The loop is bounded by the search budget.
type deepStrategy struct {
	inv *Investigator
}

func newDeepStrategy(inv *Investigator) (Strategy, error) {
	return &deepStrategy{inv: inv}, nil
}

func (s *deepStrategy) Name() string {
	return "deep"
}

func (s *deepStrategy) Run(ctx context.Context, subject Subject) (Report, error) {
	inv := s.inv
	if inv.planner == nil {
		return Report{}, errors.New("deep strategy requires a planner model")
	}
	if inv.synthesizer == nil {
		return Report{}, errors.New("deep strategy requires a synthesizer model")
	}
	if inv.searcher == nil {
		return Report{}, errors.New("deep strategy requires a search provider")
	}

	d := NewDossier(subject)
	var cost float64

	for d.SearchCount < inv.maxSearches {
		d.IterationCount++

		decision, planCost, err := inv.plan(ctx, d)
		cost += planCost
		if err != nil {
			return Report{}, fmt.Errorf("planner: %w", err)
		}

		switch decision.Action {
		case PlannerActionReport:
			// Grounding rule: at least one search must have run before the
			// narrative is written, even when contract context was injected.
			if d.SearchCount == 0 {
				query := strings.TrimSpace(fmt.Sprintf("%s %s", subject.Name, subject.Document))
				searchCost, err := s.searchAndSynthesize(ctx, &d, query)
				cost += searchCost
				if err != nil {
					return Report{}, err
				}
				continue
			}
			narrative, finalCost, err := inv.finalize(ctx, d)
			cost += finalCost
			if err != nil {
				return Report{}, fmt.Errorf("finalizer: %w", err)
			}
			return s.report(d, narrative, cost), nil
		case PlannerActionSearch:
			searchCost, err := s.searchAndSynthesize(ctx, &d, decision.Query)
			cost += searchCost
			if err != nil {
				return Report{}, err
			}
		default:
			return Report{}, fmt.Errorf("unknown planner action: %s", decision.Action)
		}
	}

	// Budget exhausted: best-effort finalization.
	narrative, finalCost, err := inv.finalize(ctx, d)
	cost += finalCost
	if err != nil {
		return Report{}, fmt.Errorf("search budget exhausted without narrative: %w", err)
	}
	return s.report(d, narrative, cost), errors.New("search budget exhausted; returning best-effort narrative")
}

func (s *deepStrategy) searchAndSynthesize(ctx context.Context, d *Dossier, query string) (float64, error) {
	results, cost, err := s.inv.search(ctx, d, query)
	if err != nil {
		return cost, err
	}
	synthCost, err := s.inv.synthesize(ctx, d, query, results)
	cost += synthCost
	if err != nil {
		return cost, fmt.Errorf("synthesizer: %w", err)
	}
	return cost, nil
}

func (s *deepStrategy) report(d Dossier, narrative string, cost float64) Report {
	return Report{
		Narrative: narrative,
		Findings:  d.Findings,
		Sources:   d.Sources,
		Searches:  d.SearchCount,
		Cost:      cost,
	}
}
