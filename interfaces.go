package secop

import "context"

// SearchResult is a single item returned by a SearchProvider.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// SearchProvider executes a web query and returns results.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// FetchProvider retrieves raw content for a URL. The network strategy uses
// it to read full pages when snippets are not enough to extract entities.
type FetchProvider interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// LLMResponse is returned by LLMProvider.Generate and carries both the
// generated text and the cost (in dollars) of the call.
type LLMResponse struct {
	Text string
	Cost float64
}

// LLMProvider is implemented by user-supplied language model clients.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (LLMResponse, error)
}

// Gate blocks until an outbound request may be issued. ratelimit.Limiter
// satisfies it; an investigator without a gate never waits.
type Gate interface {
	Wait(ctx context.Context) error
}

// Subject identifies the contractor under investigation.
type Subject struct {
	// Name is the contractor's legal or natural-person name.
	Name string
	// Document is the tax/document id (NIT or cédula).
	Document string
	// Context is prior knowledge injected into the dossier before any
	// search runs, typically a rendered contract summary and risk flags
	// from the report package.
	Context string
}

// Report is the investigation artifact for one subject.
type Report struct {
	ID        string
	Subject   Subject
	Narrative string   // final narrative text
	Findings  string   // compressed knowledge state the narrative was built from
	Sources   []string // URLs the findings were grounded on
	Network   []string // related entities mapped by the network strategy
	Searches  int      // web searches issued
	Cost      float64  // accumulated LLM + search cost in dollars
	// SummaryOnly is set when no language model was configured and the
	// report was assembled from the contract context alone.
	SummaryOnly bool
}

// BatchFailure records one subject that could not be investigated.
type BatchFailure struct {
	Subject Subject
	Err     error
}

// BatchResult carries the reports that succeeded and the failures that
// were skipped. A failure never aborts the remaining subjects.
type BatchResult struct {
	Reports  []Report
	Failures []BatchFailure
}
