package secop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Investigator coordinates searches and language models to build an
// investigation report about a contractor.
type Investigator struct {
	searcher          SearchProvider
	fetcher           FetchProvider
	planner           LLMProvider
	synthesizer       LLMProvider
	finalizer         LLMProvider
	extractor         LLMProvider
	gate              Gate
	mode              Mode
	maxSearches       int
	networkPages      int
	debug             bool
	strategy          Strategy
	strategyName      string
	strategyFactories map[string]StrategyFactory
	searchCost        float64
}

// NewInvestigator constructs an Investigator with optional configuration.
// The default mode is Standard.
func NewInvestigator(opts ...Option) *Investigator {
	inv := &Investigator{
		mode:         ModeStandard(),
		maxSearches:  defaultMaxSearches,
		networkPages: defaultNetworkPages,
		strategyName: "standard",
		strategyFactories: map[string]StrategyFactory{
			"standard": newStandardStrategy,
			"deep":     newDeepStrategy,
			"network":  newNetworkStrategy,
		},
	}
	for _, opt := range opts {
		opt(inv)
	}
	if inv.finalizer == nil {
		inv.finalizer = inv.synthesizer
	}
	if inv.extractor == nil {
		inv.extractor = inv.synthesizer
	}
	return inv
}

// Investigate runs the configured strategy for one subject. When no
// language model is configured the report degrades to a summary-only
// artifact built from the subject's contract context.
func (inv *Investigator) Investigate(ctx context.Context, subject Subject) (Report, error) {
	if strings.TrimSpace(subject.Name) == "" && strings.TrimSpace(subject.Document) == "" {
		return Report{}, errors.New("subject has neither name nor document")
	}

	if inv.synthesizer == nil && inv.finalizer == nil {
		return inv.summaryOnlyReport(subject), nil
	}

	strategy, err := inv.resolveStrategy()
	if err != nil {
		return Report{}, err
	}
	report, err := strategy.Run(ctx, subject)
	if err == nil || report.Narrative != "" {
		// Best-effort narratives (budget exhausted) still get identity.
		report.ID = uuid.NewString()
		report.Subject = subject
	}
	return report, err
}

// InvestigateBatch investigates subjects sequentially. A failure is logged
// and recorded; it never aborts the remaining subjects.
func (inv *Investigator) InvestigateBatch(ctx context.Context, subjects []Subject) BatchResult {
	var batch BatchResult
	for _, subject := range subjects {
		if err := ctx.Err(); err != nil {
			batch.Failures = append(batch.Failures, BatchFailure{Subject: subject, Err: err})
			continue
		}
		report, err := inv.Investigate(ctx, subject)
		if err != nil {
			slog.Warn("investigation failed",
				"subject", subject.Name,
				"document", subject.Document,
				"error", err,
			)
			batch.Failures = append(batch.Failures, BatchFailure{Subject: subject, Err: err})
			continue
		}
		batch.Reports = append(batch.Reports, report)
	}
	return batch
}

// summaryOnlyReport is the degraded path when no LLM is available: the
// contract context becomes the narrative so a batch still produces output.
func (inv *Investigator) summaryOnlyReport(subject Subject) Report {
	narrative := strings.TrimSpace(subject.Context)
	if narrative == "" {
		narrative = "No language model configured and no contract context supplied."
	}
	return Report{
		ID:          uuid.NewString(),
		Subject:     subject,
		Narrative:   narrative,
		SummaryOnly: true,
	}
}

func (inv *Investigator) resolveStrategy() (Strategy, error) {
	if inv.strategy != nil {
		return inv.strategy, nil
	}
	name := strings.TrimSpace(inv.strategyName)
	if name == "" {
		name = "standard"
	}
	factory := inv.strategyFactories[name]
	if factory == nil {
		return nil, fmt.Errorf("unknown strategy: %s", name)
	}
	strategy, err := factory(inv)
	if err != nil {
		return nil, err
	}
	inv.strategy = strategy
	return strategy, nil
}

// wait applies the outbound gate, if any.
func (inv *Investigator) wait(ctx context.Context) error {
	if inv.gate == nil {
		return nil
	}
	return inv.gate.Wait(ctx)
}

// search issues one gated web search and records it in the dossier.
func (inv *Investigator) search(ctx context.Context, d *Dossier, query string) ([]SearchResult, float64, error) {
	if inv.searcher == nil {
		return nil, 0, errors.New("no search provider configured")
	}
	if err := inv.wait(ctx); err != nil {
		return nil, 0, err
	}
	results, err := inv.searcher.Search(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("search: %w", err)
	}
	d.SearchCount++
	d.AppendHistory(fmt.Sprintf("search[%d]: %s", d.SearchCount, query))
	d.AddSources(results)
	return results, inv.searchCost, nil
}

func (inv *Investigator) plan(ctx context.Context, d Dossier) (PlannerDecision, float64, error) {
	sys := plannerSystemPrompt
	user := buildPlannerUserPrompt(d, inv.maxSearches-d.SearchCount)
	resp, err := inv.generate(ctx, inv.planner, sys, user, "Planner")
	if err != nil {
		return PlannerDecision{}, 0, err
	}
	decision, err := parsePlannerDecision(StripThinkBlocks(resp.Text))
	return decision, resp.Cost, err
}

func (inv *Investigator) synthesize(ctx context.Context, d *Dossier, query string, results []SearchResult) (float64, error) {
	sys := synthesizerSystemPrompt
	user := buildSynthesizerUserPrompt(*d, query, results)
	resp, err := inv.generate(ctx, inv.synthesizer, sys, user, "Synthesizer")
	if err != nil {
		return 0, err
	}
	d.Findings = StripThinkBlocks(resp.Text)
	d.CurrentStep = fmt.Sprintf("Last query: %s", query)
	return resp.Cost, nil
}

func (inv *Investigator) finalize(ctx context.Context, d Dossier) (string, float64, error) {
	if inv.finalizer == nil {
		return "", 0, errors.New("finalizer model is not configured")
	}
	sys := finalizerSystemPrompt
	user := buildFinalizerUserPrompt(d)
	resp, err := inv.generate(ctx, inv.finalizer, sys, user, "Finalizer")
	if err != nil {
		return "", 0, err
	}
	return StripThinkBlocks(resp.Text), resp.Cost, nil
}

func (inv *Investigator) extract(ctx context.Context, d Dossier, pageURL, pageText string) (string, float64, error) {
	if inv.extractor == nil {
		return "", 0, errors.New("extractor model is not configured")
	}
	sys := extractorSystemPrompt
	user := buildExtractorUserPrompt(d, pageURL, pageText)
	resp, err := inv.generate(ctx, inv.extractor, sys, user, "Extractor")
	if err != nil {
		return "", 0, err
	}
	return StripThinkBlocks(resp.Text), resp.Cost, nil
}

// generate issues one gated LLM call, dumping prompts when debug is on.
func (inv *Investigator) generate(ctx context.Context, m LLMProvider, sys, user, label string) (LLMResponse, error) {
	if m == nil {
		return LLMResponse{}, fmt.Errorf("%s model is not configured", strings.ToLower(label))
	}
	if err := inv.wait(ctx); err != nil {
		return LLMResponse{}, err
	}
	if inv.debug {
		fmt.Printf("[SECOP DEBUG] %s System Prompt:\n%s\n", label, sys)
		fmt.Printf("[SECOP DEBUG] %s User Prompt:\n%s\n", label, user)
	}
	resp, err := m.Generate(ctx, sys, user)
	if err != nil {
		return LLMResponse{}, err
	}
	if inv.debug {
		fmt.Printf("[SECOP DEBUG] %s Response:\n%s\n", label, resp.Text)
	}
	return resp, nil
}
