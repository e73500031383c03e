package secop

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

// scriptedLLM returns canned responses keyed by system prompt. Each call
// pops the next response for that prompt; the last one repeats so fixed
// query plans do not need a response per call.
type scriptedLLM struct {
	mu      sync.Mutex
	scripts map[string][]string
	cost    float64
	calls   int
}

func newScriptedLLM() *scriptedLLM {
	return &scriptedLLM{scripts: make(map[string][]string)}
}

func (s *scriptedLLM) on(systemPrompt string, responses ...string) *scriptedLLM {
	s.scripts[systemPrompt] = append(s.scripts[systemPrompt], responses...)
	return s
}

func (s *scriptedLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (LLMResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	queue := s.scripts[systemPrompt]
	if len(queue) == 0 {
		return LLMResponse{}, errors.New("no scripted response for this system prompt")
	}
	text := queue[0]
	if len(queue) > 1 {
		s.scripts[systemPrompt] = queue[1:]
	}
	return LLMResponse{Text: text, Cost: s.cost}, nil
}

type fakeSearch struct {
	queries []string
	results []SearchResult
	err     error
}

func (f *fakeSearch) Search(ctx context.Context, query string) ([]SearchResult, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type countingGate struct {
	waits int
}

func (g *countingGate) Wait(ctx context.Context) error {
	g.waits++
	return nil
}

type fakeFetcher struct {
	pages   map[string]string
	fetched []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.fetched = append(f.fetched, url)
	text, ok := f.pages[url]
	if !ok {
		return "", errors.New("page not found")
	}
	return text, nil
}

var testSubject = Subject{
	Name:     "CONSTRUCTORA EJEMPLO SAS",
	Document: "900123456",
	Context:  "3 contratos con ALCALDIA DE QUIBDO por $4.500.000.000 COP.",
}

func TestStandardStrategyRunsFixedPlan(t *testing.T) {
	searcher := &fakeSearch{results: []SearchResult{
		{Title: "Registro", URL: "https://example.com/a", Snippet: "contratos"},
	}}
	llm := newScriptedLLM().
		on(synthesizerSystemPrompt, "notas actualizadas").
		on(finalizerSystemPrompt, "informe final")

	inv := NewInvestigator(
		WithSearchProvider(searcher),
		WithSynthesizerModel(llm),
	)

	report, err := inv.Investigate(context.Background(), testSubject)
	if err != nil {
		t.Fatalf("Investigate returned error: %v", err)
	}

	// Four themed queries plus the combined name+NIT query.
	if len(searcher.queries) != 5 {
		t.Fatalf("expected 5 searches, got %d: %v", len(searcher.queries), searcher.queries)
	}
	for _, q := range searcher.queries[:4] {
		if !strings.Contains(q, `"CONSTRUCTORA EJEMPLO SAS"`) {
			t.Errorf("query %q does not quote the subject name", q)
		}
	}
	if last := searcher.queries[4]; !strings.Contains(last, "900123456") {
		t.Errorf("combined query %q does not include the document", last)
	}

	if report.Narrative != "informe final" {
		t.Errorf("narrative = %q", report.Narrative)
	}
	if report.Searches != 5 {
		t.Errorf("Searches = %d, want 5", report.Searches)
	}
	if len(report.Sources) != 1 || report.Sources[0] != "https://example.com/a" {
		t.Errorf("Sources = %v", report.Sources)
	}
	if report.ID == "" {
		t.Error("report has no ID")
	}
	if report.Subject.Name != testSubject.Name {
		t.Errorf("Subject = %+v", report.Subject)
	}
	if report.SummaryOnly {
		t.Error("report should not be summary-only")
	}
}

func TestStandardStrategyHonorsSearchCap(t *testing.T) {
	searcher := &fakeSearch{}
	llm := newScriptedLLM().
		on(synthesizerSystemPrompt, "notas").
		on(finalizerSystemPrompt, "informe")

	inv := NewInvestigator(
		WithSearchProvider(searcher),
		WithSynthesizerModel(llm),
		WithMaxSearches(2),
	)

	report, err := inv.Investigate(context.Background(), testSubject)
	if err != nil {
		t.Fatalf("Investigate returned error: %v", err)
	}
	if len(searcher.queries) != 2 {
		t.Errorf("expected 2 searches, got %d", len(searcher.queries))
	}
	if report.Searches != 2 {
		t.Errorf("Searches = %d, want 2", report.Searches)
	}
}

func TestDeepStrategySearchesThenReports(t *testing.T) {
	searcher := &fakeSearch{results: []SearchResult{
		{Title: "Sanción", URL: "https://contraloria.gov.co/x", Snippet: "multa"},
	}}
	llm := newScriptedLLM().
		on(plannerSystemPrompt,
			"Action: Search\nQuery: \"CONSTRUCTORA EJEMPLO SAS\" sanciones contraloría",
			"Action: Report").
		on(synthesizerSystemPrompt, "hallazgo: multa en 2022").
		on(finalizerSystemPrompt, "informe con hallazgos")

	inv := NewInvestigator(
		WithSearchProvider(searcher),
		WithPlannerModel(llm),
		WithSynthesizerModel(llm),
		WithStrategyName("deep"),
	)

	report, err := inv.Investigate(context.Background(), testSubject)
	if err != nil {
		t.Fatalf("Investigate returned error: %v", err)
	}
	if len(searcher.queries) != 1 {
		t.Fatalf("expected 1 search, got %v", searcher.queries)
	}
	if !strings.Contains(searcher.queries[0], "sanciones") {
		t.Errorf("query = %q", searcher.queries[0])
	}
	if report.Narrative != "informe con hallazgos" {
		t.Errorf("narrative = %q", report.Narrative)
	}
	if report.Findings != "hallazgo: multa en 2022" {
		t.Errorf("findings = %q", report.Findings)
	}
	if len(report.Sources) != 1 {
		t.Errorf("Sources = %v", report.Sources)
	}
}

func TestDeepStrategyForcesSearchBeforeReport(t *testing.T) {
	searcher := &fakeSearch{}
	llm := newScriptedLLM().
		on(plannerSystemPrompt, "Action: Report", "Action: Report").
		on(synthesizerSystemPrompt, "notas").
		on(finalizerSystemPrompt, "informe")

	inv := NewInvestigator(
		WithSearchProvider(searcher),
		WithPlannerModel(llm),
		WithSynthesizerModel(llm),
		WithStrategyName("deep"),
	)

	report, err := inv.Investigate(context.Background(), testSubject)
	if err != nil {
		t.Fatalf("Investigate returned error: %v", err)
	}
	if len(searcher.queries) != 1 {
		t.Fatalf("expected 1 forced search, got %v", searcher.queries)
	}
	if !strings.Contains(searcher.queries[0], testSubject.Name) {
		t.Errorf("forced query = %q", searcher.queries[0])
	}
	if report.Searches != 1 {
		t.Errorf("Searches = %d, want 1", report.Searches)
	}
}

func TestDeepStrategyBudgetExhaustedIsBestEffort(t *testing.T) {
	searcher := &fakeSearch{}
	llm := newScriptedLLM().
		on(plannerSystemPrompt, "Action: Search\nQuery: más pistas").
		on(synthesizerSystemPrompt, "notas parciales").
		on(finalizerSystemPrompt, "informe parcial")

	inv := NewInvestigator(
		WithSearchProvider(searcher),
		WithPlannerModel(llm),
		WithSynthesizerModel(llm),
		WithStrategyName("deep"),
		WithMaxSearches(2),
	)

	report, err := inv.Investigate(context.Background(), testSubject)
	if err == nil {
		t.Fatal("expected a budget-exhausted error")
	}
	if report.Narrative != "informe parcial" {
		t.Errorf("best-effort narrative = %q", report.Narrative)
	}
	if report.ID == "" {
		t.Error("best-effort report should still get an ID")
	}
	if report.Searches != 2 {
		t.Errorf("Searches = %d, want 2", report.Searches)
	}
}

func TestNetworkStrategyMapsEntities(t *testing.T) {
	searcher := &fakeSearch{results: []SearchResult{
		{Title: "Perfil", URL: "https://example.com/perfil", Snippet: "empresa de Quibdó"},
	}}
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://example.com/perfil": "La empresa comparte accionistas con Inversiones Andinas SAS.",
	}}
	llm := newScriptedLLM().
		on(synthesizerSystemPrompt, "notas").
		on(finalizerSystemPrompt, "informe de red")
	extractor := newScriptedLLM().
		on(extractorSystemPrompt, "Inversiones Andinas SAS - accionista común")

	inv := NewInvestigator(
		WithSearchProvider(searcher),
		WithFetchProvider(fetcher),
		WithSynthesizerModel(llm),
		WithExtractorModel(extractor),
		WithStrategyName("network"),
		WithMaxSearches(6),
	)

	report, err := inv.Investigate(context.Background(), testSubject)
	if err != nil {
		t.Fatalf("Investigate returned error: %v", err)
	}

	if len(report.Network) != 1 || report.Network[0] != "Inversiones Andinas SAS - accionista común" {
		t.Fatalf("Network = %v", report.Network)
	}
	if len(fetcher.fetched) != 1 || fetcher.fetched[0] != "https://example.com/perfil" {
		t.Errorf("fetched = %v", fetcher.fetched)
	}
	// Five seed queries plus one follow-up for the mapped entity.
	if report.Searches != 6 {
		t.Errorf("Searches = %d, want 6", report.Searches)
	}
	last := searcher.queries[len(searcher.queries)-1]
	if !strings.Contains(last, "Inversiones Andinas SAS") {
		t.Errorf("follow-up query = %q", last)
	}
	if report.Narrative != "informe de red" {
		t.Errorf("narrative = %q", report.Narrative)
	}
}

func TestSummaryOnlyReportWithoutModels(t *testing.T) {
	inv := NewInvestigator()

	report, err := inv.Investigate(context.Background(), testSubject)
	if err != nil {
		t.Fatalf("Investigate returned error: %v", err)
	}
	if !report.SummaryOnly {
		t.Error("expected a summary-only report")
	}
	if report.Narrative != testSubject.Context {
		t.Errorf("narrative = %q", report.Narrative)
	}
	if report.ID == "" {
		t.Error("report has no ID")
	}
}

func TestInvestigateRejectsEmptySubject(t *testing.T) {
	inv := NewInvestigator()
	if _, err := inv.Investigate(context.Background(), Subject{Context: "solo contexto"}); err == nil {
		t.Fatal("expected an error for a subject with neither name nor document")
	}
}

func TestInvestigateUnknownStrategy(t *testing.T) {
	llm := newScriptedLLM().on(synthesizerSystemPrompt, "x")
	inv := NewInvestigator(
		WithSynthesizerModel(llm),
		WithStrategyName("quantum"),
	)
	if _, err := inv.Investigate(context.Background(), testSubject); err == nil {
		t.Fatal("expected an unknown-strategy error")
	}
}

type flakyStrategy struct {
	failName string
}

func (s *flakyStrategy) Name() string { return "flaky" }

func (s *flakyStrategy) Run(ctx context.Context, subject Subject) (Report, error) {
	if subject.Name == s.failName {
		return Report{}, errors.New("provider outage")
	}
	return Report{Narrative: "ok: " + subject.Name}, nil
}

func TestInvestigateBatchContinuesPastFailures(t *testing.T) {
	llm := newScriptedLLM().on(synthesizerSystemPrompt, "x")
	inv := NewInvestigator(
		WithSynthesizerModel(llm),
		WithStrategy(&flakyStrategy{failName: "FALLA SAS"}),
	)

	subjects := []Subject{
		{Name: "PRIMERA SAS"},
		{Name: "FALLA SAS"},
		{Name: "TERCERA SAS"},
	}
	batch := inv.InvestigateBatch(context.Background(), subjects)

	if len(batch.Reports) != 2 {
		t.Fatalf("Reports = %d, want 2", len(batch.Reports))
	}
	if len(batch.Failures) != 1 {
		t.Fatalf("Failures = %d, want 1", len(batch.Failures))
	}
	if batch.Failures[0].Subject.Name != "FALLA SAS" {
		t.Errorf("failed subject = %q", batch.Failures[0].Subject.Name)
	}
	if batch.Reports[0].Subject.Name != "PRIMERA SAS" || batch.Reports[1].Subject.Name != "TERCERA SAS" {
		t.Errorf("reports out of order: %v, %v", batch.Reports[0].Subject, batch.Reports[1].Subject)
	}
}

func TestGateAppliedToSearchAndModelCalls(t *testing.T) {
	gate := &countingGate{}
	searcher := &fakeSearch{}
	llm := newScriptedLLM().
		on(synthesizerSystemPrompt, "notas").
		on(finalizerSystemPrompt, "informe")

	inv := NewInvestigator(
		WithSearchProvider(searcher),
		WithSynthesizerModel(llm),
		WithGate(gate),
		WithMaxSearches(1),
	)

	if _, err := inv.Investigate(context.Background(), testSubject); err != nil {
		t.Fatalf("Investigate returned error: %v", err)
	}
	// One search, one synthesis, one finalization.
	if gate.waits != 3 {
		t.Errorf("gate waits = %d, want 3", gate.waits)
	}
}

func TestCostAccumulatesAcrossCalls(t *testing.T) {
	searcher := &fakeSearch{}
	llm := newScriptedLLM().
		on(synthesizerSystemPrompt, "notas").
		on(finalizerSystemPrompt, "informe")
	llm.cost = 0.005

	inv := NewInvestigator(
		WithSearchProvider(searcher),
		WithSynthesizerModel(llm),
		WithSearchCost(0.01),
		WithMaxSearches(2),
	)

	report, err := inv.Investigate(context.Background(), testSubject)
	if err != nil {
		t.Fatalf("Investigate returned error: %v", err)
	}
	// 2 searches at $0.01 plus 3 model calls at $0.005.
	want := 2*0.01 + 3*0.005
	if diff := report.Cost - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Cost = %v, want %v", report.Cost, want)
	}
}

func TestModePresetsConfigureInvestigator(t *testing.T) {
	inv := NewInvestigator(WithMode(ModeDeep()))
	if inv.maxSearches != 50 {
		t.Errorf("deep maxSearches = %d, want 50", inv.maxSearches)
	}
	if inv.strategyName != "deep" {
		t.Errorf("deep strategy = %q", inv.strategyName)
	}

	inv = NewInvestigator(WithMode(ModeUltra()))
	if inv.maxSearches != 200 {
		t.Errorf("ultra maxSearches = %d, want 200", inv.maxSearches)
	}
	if inv.strategyName != "network" {
		t.Errorf("ultra strategy = %q", inv.strategyName)
	}

	// Options after WithMode override its knobs.
	inv = NewInvestigator(WithMode(ModeDeep()), WithMaxSearches(3))
	if inv.maxSearches != 3 {
		t.Errorf("maxSearches = %d, want 3", inv.maxSearches)
	}
}
