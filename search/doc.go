// Package search provides web-search providers for the investigator.
//
// Available providers:
//
//   - Tavily: requires TAVILY_API_KEY, supports basic/advanced depth and
//     domain restriction
//   - DuckDuckGo: free, no API key required (scrapes lite.duckduckgo.com);
//     the fallback when no Tavily key is configured
//
// # Tavily Example
//
//	provider := search.NewTavily("your-api-key", "advanced")
//	results, err := provider.Search(ctx, `"CONSTRUCTORA EJEMPLO SAS" sanciones`)
//
// # DuckDuckGo Example
//
//	provider := search.NewDuckDuckGo()
//	results, err := provider.Search(ctx, `"900123456" contratos`)
//
// # Custom Providers
//
// Implement the secop.SearchProvider interface to add another backend:
//
//	type SearchProvider interface {
//	    Search(ctx context.Context, query string) ([]secop.SearchResult, error)
//	}
package search
