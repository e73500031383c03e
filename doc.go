// Package secop is a research toolkit for Colombian public-procurement
// records. It queries the SECOP open-data dataset published through the
// Socrata API on datos.gov.co, aggregates the results into tabular
// reports, and can investigate a contractor by combining web searches
// with language-model synthesis into a narrative report.
//
// # Architecture
//
// The root package holds the Investigator, which runs one of three
// strategies over an evolving Dossier:
//
//  1. standard: a fixed plan of due-diligence queries (sanctions,
//     investigations, press coverage), one synthesis pass per search.
//  2. deep: a planner model reads the dossier each iteration and either
//     requests another search or decides the findings are sufficient.
//  3. network: seed searches plus page fetching and entity extraction to
//     map the contractor's related companies and persons.
//
// Supporting packages: socrata (dataset client and query builder), report
// (summaries and risk indicators), export (Excel/Parquet), search (Tavily
// and DuckDuckGo providers), llm (OpenAI-compatible provider), fetch
// (plain-text page fetcher) and ratelimit (rolling-window request gate).
//
// # Basic Usage
//
//	client := socrata.NewClient(socrata.WithAppToken(cfg.SocrataAppToken))
//	contracts, err := client.ContractsAll(ctx, socrata.Query{
//	    Departamento: "Chocó",
//	    ValorMinimo:  1_000_000_000,
//	})
//
//	inv := secop.NewInvestigator(
//	    secop.WithSearchProvider(search.NewTavily(cfg.TavilyAPIKey, "basic")),
//	    secop.WithSynthesizerModel(myLLM),
//	    secop.WithMode(secop.ModeStandard()),
//	    secop.WithGate(ratelimit.New(cfg.RequestsPerMinute)),
//	)
//	rep, err := inv.Investigate(ctx, secop.Subject{
//	    Name:     "CONSTRUCTORA EJEMPLO SAS",
//	    Document: "900123456",
//	    Context:  report.Summarize(contracts).Render(),
//	})
//
// # Interfaces
//
// Implement LLMProvider to connect any language model:
//
//	type LLMProvider interface {
//	    Generate(ctx context.Context, systemPrompt, userPrompt string) (LLMResponse, error)
//	}
//
// Implement SearchProvider to use any search backend:
//
//	type SearchProvider interface {
//	    Search(ctx context.Context, query string) ([]SearchResult, error)
//	}
//
// Missing credentials degrade behavior rather than failing: without a
// Tavily key the CLI falls back to DuckDuckGo, and without any language
// model Investigate returns a summary-only report built from the contract
// context.
package secop
