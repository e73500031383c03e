package secop

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// networkStrategy maps the subject's business network before writing the
// narrative: seed searches find the subject's footprint, the top result
// pages are fetched and an extractor model pulls out related companies and
// persons, and each mapped entity gets one follow-up search while the
// budget lasts.
type networkStrategy struct {
	inv *Investigator
}

func newNetworkStrategy(inv *Investigator) (Strategy, error) {
	return &networkStrategy{inv: inv}, nil
}

func (s *networkStrategy) Name() string {
	return "network"
}

func (s *networkStrategy) Run(ctx context.Context, subject Subject) (Report, error) {
	inv := s.inv
	if inv.searcher == nil {
		return Report{}, errors.New("network strategy requires a search provider")
	}
	if inv.synthesizer == nil {
		return Report{}, errors.New("network strategy requires a synthesizer model")
	}
	if inv.extractor == nil {
		return Report{}, errors.New("network strategy requires an extractor model")
	}

	d := NewDossier(subject)
	var cost float64

	// Phase 1: seed the dossier with the standard query plan.
	var seedResults []SearchResult
	for _, query := range standardQueryPlan(subject, inv.mode) {
		if d.SearchCount >= inv.maxSearches {
			break
		}
		results, searchCost, err := inv.search(ctx, &d, query)
		if err != nil {
			return Report{}, err
		}
		cost += searchCost
		seedResults = append(seedResults, results...)
		synthCost, err := inv.synthesize(ctx, &d, query, results)
		if err != nil {
			return Report{}, fmt.Errorf("synthesizer: %w", err)
		}
		cost += synthCost
	}

	// Phase 2: read pages behind the seed results and extract entities.
	extractCost, err := s.mapNetwork(ctx, &d, seedResults)
	cost += extractCost
	if err != nil {
		return Report{}, err
	}

	// Phase 3: one follow-up search per mapped entity, budget permitting.
	for _, entity := range d.Network {
		if d.SearchCount >= inv.maxSearches {
			break
		}
		name := entityName(entity)
		if name == "" {
			continue
		}
		query := fmt.Sprintf("%q %q relación contratos", name, subject.Name)
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
	cost += finalCost
	if err != nil {
		return Report{}, fmt.Errorf("finalizer: %w", err)
	}

	return Report{
		Narrative: narrative,
		Findings:  d.Findings,
		Sources:   d.Sources,
		Network:   d.Network,
		Searches:  d.SearchCount,
		Cost:      cost,
	}, nil
}

// mapNetwork fetches result pages and asks the extractor for related
// entities. Without a fetcher the snippets themselves are extracted from,
// so the strategy still works in a degraded form.
func (s *networkStrategy) mapNetwork(ctx context.Context, d *Dossier, results []SearchResult) (float64, error) {
	inv := s.inv
	var cost float64

	pages := 0
	seen := make(map[string]bool)
	for _, r := range results {
		if pages >= inv.networkPages {
			break
		}
		u := strings.TrimSpace(r.URL)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true

		text := r.Snippet
		if inv.fetcher != nil {
			if err := inv.wait(ctx); err != nil {
				return cost, err
			}
			fetched, err := inv.fetcher.Fetch(ctx, u)
			if err != nil {
				// A dead page is not fatal to the investigation.
				d.AppendHistory(fmt.Sprintf("fetch failed: %s", u))
				continue
			}
			text = fetched
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages++

		extracted, extractCost, err := inv.extract(ctx, *d, u, text)
		cost += extractCost
		if err != nil {
			return cost, fmt.Errorf("extractor: %w", err)
		}
		s.mergeEntities(d, extracted)
	}
	if len(d.Network) > 0 {
		d.AppendHistory(fmt.Sprintf("network: mapped %d related entities", len(d.Network)))
	}
	return cost, nil
}

// mergeEntities folds extractor output lines into the dossier network,
// skipping placeholders and duplicates.
func (s *networkStrategy) mergeEntities(d *Dossier, extracted string) {
	seen := make(map[string]bool, len(d.Network))
	for _, e := range d.Network {
		seen[strings.ToLower(entityName(e))] = true
	}
	for _, line := range strings.Split(extracted, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.EqualFold(line, "(none)") {
			continue
		}
		key := strings.ToLower(entityName(line))
		if key == "" || seen[key] || strings.EqualFold(entityName(line), d.Subject.Name) {
			continue
		}
		seen[key] = true
		d.Network = append(d.Network, line)
	}
}

// entityName returns the name part of a "name - relationship" line.
func entityName(line string) string {
	if idx := strings.Index(line, " - "); idx > 0 {
		return strings.TrimSpace(line[:idx])
	}
	return strings.TrimSpace(line)
}
