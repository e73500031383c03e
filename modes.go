package secop

// Mode is a preset bundle of investigation knobs. Every knob can still be
// overridden with an individual Option after WithMode.
type Mode struct {
	Name        string
	Description string
	// MaxSearches caps web searches for one investigation.
	MaxSearches int
	// MaxNetworkPages caps pages read by the network strategy.
	MaxNetworkPages int
	// Strategy names the loop to run: "standard", "deep" or "network".
	Strategy string
	// Languages hints which languages search queries should use.
	Languages []string
	// GeographicFocus is an ISO country/region hint appended to queries.
	GeographicFocus string
}

// ModeStandard is a fast verification pass: a fixed query plan, Spanish
// sources, Colombian focus. Suited to quick contractor checks and initial
// exploratory analysis.
func ModeStandard() Mode {
	return Mode{
		Name:            "standard",
		Description:     "Quick investigation for basic contractor verification",
		MaxSearches:     5,
		Strategy:        "standard",
		Languages:       []string{"es"},
		GeographicFocus: "CO",
	}
}

// ModeDeep is a planner-driven loop with a larger search budget and
// bilingual queries. Suited to journalistic investigations and advanced
// due diligence.
func ModeDeep() Mode {
	return Mode{
		Name:            "deep",
		Description:     "In-depth investigation with planner-driven searching",
		MaxSearches:     50,
		Strategy:        "deep",
		Languages:       []string{"es", "en"},
		GeographicFocus: "CO",
	}
}

// ModeUltra adds network mapping on top of the deep loop: pages behind the
// top results are fetched and related companies and persons are extracted
// before the narrative is written.
func ModeUltra() Mode {
	return Mode{
		Name:            "ultra",
		Description:     "Exhaustive investigation with business-network mapping",
		MaxSearches:     200,
		MaxNetworkPages: 8,
		Strategy:        "network",
		Languages:       []string{"es", "en", "pt"},
		GeographicFocus: "LATAM",
	}
}
