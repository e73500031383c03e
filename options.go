package secop

const defaultMaxSearches = 5
const defaultNetworkPages = 5

// Option configures an Investigator.
type Option func(*Investigator)

// WithSearchProvider sets the search implementation.
func WithSearchProvider(searcher SearchProvider) Option {
	return func(inv *Investigator) { inv.searcher = searcher }
}

// WithFetchProvider sets the optional page fetcher used by the network
// strategy.
func WithFetchProvider(fetcher FetchProvider) Option {
	return func(inv *Investigator) { inv.fetcher = fetcher }
}

// WithPlannerModel sets the model used by the deep strategy to decide the
// next search.
func WithPlannerModel(m LLMProvider) Option {
	return func(inv *Investigator) { inv.planner = m }
}

// WithSynthesizerModel sets the model used to compress search results into
// the dossier findings.
func WithSynthesizerModel(m LLMProvider) Option {
	return func(inv *Investigator) { inv.synthesizer = m }
}

// WithFinalizerModel overrides the model used to write the final narrative.
func WithFinalizerModel(m LLMProvider) Option {
	return func(inv *Investigator) { inv.finalizer = m }
}

// WithExtractorModel overrides the model used by the network strategy to
// pull related entities out of fetched pages.
func WithExtractorModel(m LLMProvider) Option {
	return func(inv *Investigator) { inv.extractor = m }
}

// WithMode applies a preset bundle (see ModeStandard, ModeDeep, ModeUltra).
// Options placed after WithMode override individual knobs.
func WithMode(mode Mode) Option {
	return func(inv *Investigator) {
		inv.mode = mode
		if mode.MaxSearches > 0 {
			inv.maxSearches = mode.MaxSearches
		}
		if mode.MaxNetworkPages > 0 {
			inv.networkPages = mode.MaxNetworkPages
		}
		if mode.Strategy != "" {
			inv.strategyName = mode.Strategy
		}
	}
}

// WithMaxSearches caps web searches for one investigation.
func WithMaxSearches(n int) Option {
	return func(inv *Investigator) {
		if n > 0 {
			inv.maxSearches = n
		}
	}
}

// WithGate sets the outbound rate-limit gate applied before every search
// and model call.
func WithGate(gate Gate) Option {
	return func(inv *Investigator) { inv.gate = gate }
}

// WithSearchCost sets the cost (in dollars) attributed to each search call.
func WithSearchCost(cost float64) Option {
	return func(inv *Investigator) {
		if cost > 0 {
			inv.searchCost = cost
		}
	}
}

// WithDebug enables debug logging of all LLM prompts and responses.
func WithDebug(enabled bool) Option {
	return func(inv *Investigator) { inv.debug = enabled }
}

// WithStrategy sets a custom strategy instance.
func WithStrategy(strategy Strategy) Option {
	return func(inv *Investigator) { inv.strategy = strategy }
}

// WithStrategyName selects a built-in or registered strategy by name.
func WithStrategyName(name string) Option {
	return func(inv *Investigator) { inv.strategyName = name }
}

// WithStrategyFactory registers a strategy factory by name.
func WithStrategyFactory(name string, factory StrategyFactory) Option {
	return func(inv *Investigator) {
		if inv.strategyFactories == nil {
			inv.strategyFactories = make(map[string]StrategyFactory)
		}
		inv.strategyFactories[name] = factory
	}
}
