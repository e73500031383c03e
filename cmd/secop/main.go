// Command secop queries the Colombian public-procurement open-data
// portal, prints descriptive statistics, exports results to Excel or
// Parquet, and optionally runs web investigations on contractors.
//
// Usage examples:
//
//	secop -departamento CHOCÓ -valor-minimo 1000000000
//	secop -entidad "ALCALDIA DE QUIBDO" -export xlsx -prefix quibdo
//	secop -documento 900123456 -investigar 900123456 -mode deep
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/opencontratos/secop"
	"github.com/opencontratos/secop/export"
	"github.com/opencontratos/secop/fetch"
	"github.com/opencontratos/secop/llm"
	"github.com/opencontratos/secop/ratelimit"
	"github.com/opencontratos/secop/report"
	"github.com/opencontratos/secop/search"
	"github.com/opencontratos/secop/socrata"
)

func main() {
	var (
		departamento = flag.String("departamento", "", "filter by department, e.g. CHOCÓ")
		municipio    = flag.String("municipio", "", "filter by municipality")
		entidad      = flag.String("entidad", "", "filter by contracting entity name")
		proveedor    = flag.String("proveedor", "", "filter by awarded contractor name")
		documento    = flag.String("documento", "", "filter by contractor document (NIT)")
		estado       = flag.String("estado", "", "filter by contract state")
		modalidad    = flag.String("modalidad", "", "filter by contracting modality")
		objeto       = flag.String("objeto", "", "free-text match on the contract object")
		valorMinimo  = flag.Float64("valor-minimo", 0, "minimum contract value in COP")
		valorMaximo  = flag.Float64("valor-maximo", 0, "maximum contract value in COP")
		desde        = flag.String("desde", "", "signature date lower bound, YYYY-MM-DD")
		hasta        = flag.String("hasta", "", "signature date upper bound, YYYY-MM-DD")
		limit        = flag.Int("limit", 1000, "maximum rows to fetch (0 for no cap)")

		exportFormat = flag.String("export", "", "export format: xlsx or parquet")
		prefix       = flag.String("prefix", "contratos", "export filename prefix")

		investigar = flag.String("investigar", "", "comma-separated NITs or names to investigate")
		mode       = flag.String("mode", "standard", "investigation mode: standard, deep or ultra")
		debug      = flag.Bool("debug", false, "log LLM prompts and responses")
		verbose    = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := secop.ConfigFromEnv()
	if err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	query, err := buildQuery(
		*departamento, *municipio, *entidad, *proveedor, *documento,
		*estado, *modalidad, *objeto, *desde, *hasta,
		*valorMinimo, *valorMaximo, *limit,
	)
	if err != nil {
		fatal(err)
	}

	gate := ratelimit.New(cfg.RequestsPerMinute)
	clientOpts := []socrata.ClientOption{
		socrata.WithAppToken(cfg.SocrataAppToken),
		socrata.WithGate(gate),
	}
	if cfg.CacheDir != "" {
		clientOpts = append(clientOpts, socrata.WithCache(cfg.CacheDir, cfg.CacheTTL))
	}
	client := socrata.NewClient(clientOpts...)

	slog.Info("querying SECOP dataset", "filters", query.Params().Encode())
	rows, err := client.ContractsAll(ctx, query)
	if err != nil {
		fatal(err)
	}
	slog.Info("fetched contracts", "rows", len(rows))

	summary := report.Summarize(rows)
	fmt.Println(summary.Render())

	switch *exportFormat {
	case "":
	case "xlsx":
		path, err := export.Excel(cfg.ExportDir, *prefix, rows, summary)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Exportado: %s\n", path)
	case "parquet":
		path, err := export.Parquet(cfg.ExportDir, *prefix, rows)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Exportado: %s\n", path)
	default:
		fatal(fmt.Errorf("unknown export format %q (want xlsx or parquet)", *exportFormat))
	}

	if *investigar == "" {
		return
	}
	if err := runInvestigations(ctx, cfg, gate, rows, *investigar, *mode, *debug); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	slog.Error("fatal", "error", err)
	os.Exit(1)
}

func buildQuery(departamento, municipio, entidad, proveedor, documento,
	estado, modalidad, objeto, desde, hasta string,
	valorMinimo, valorMaximo float64, limit int) (socrata.Query, error) {

	q := socrata.Query{
		Departamento:       departamento,
		Municipio:          municipio,
		Entidad:            entidad,
		Proveedor:          proveedor,
		DocumentoProveedor: documento,
		Estado:             estado,
		Modalidad:          modalidad,
		ObjetoContiene:     objeto,
		ValorMinimo:        valorMinimo,
		ValorMaximo:        valorMaximo,
		Limit:              limit,
		OrderBy:            "fecha_de_firma DESC",
	}

	var err error
	if q.FirmadoDesde, err = parseDate(desde); err != nil {
		return socrata.Query{}, fmt.Errorf("-desde: %w", err)
	}
	if q.FirmadoHasta, err = parseDate(hasta); err != nil {
		return socrata.Query{}, fmt.Errorf("-hasta: %w", err)
	}
	return q, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

// runInvestigations builds one subject per requested target from the
// fetched rows and runs the batch. Credentials degrade gracefully: no
// Tavily key falls back to DuckDuckGo, no OpenAI key produces
// summary-only reports.
func runInvestigations(ctx context.Context, cfg *secop.Config, gate secop.Gate,
	rows []socrata.Contract, targets, modeName string, debug bool) error {

	mode, err := resolveMode(modeName)
	if err != nil {
		return err
	}

	var subjects []secop.Subject
	for _, target := range strings.Split(targets, ",") {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		subjects = append(subjects, buildSubject(rows, target))
	}
	if len(subjects) == 0 {
		return fmt.Errorf("-investigar given but no targets parsed from %q", targets)
	}

	opts := []secop.Option{
		secop.WithMode(mode),
		secop.WithGate(gate),
		secop.WithDebug(debug),
	}

	if cfg.TavilyAPIKey != "" {
		opts = append(opts, secop.WithSearchProvider(search.NewTavily(cfg.TavilyAPIKey, "basic")))
	} else {
		slog.Warn("TAVILY_API_KEY not set, falling back to DuckDuckGo")
		opts = append(opts, secop.WithSearchProvider(search.NewDuckDuckGo()))
	}

	if cfg.OpenAIAPIKey != "" || cfg.OpenAIBaseURL != "" {
		model := llm.New(cfg.OpenAIBaseURL, cfg.Model, cfg.OpenAIAPIKey)
		opts = append(opts,
			secop.WithPlannerModel(model),
			secop.WithSynthesizerModel(model),
		)
	} else {
		slog.Warn("OPENAI_API_KEY not set, reports degrade to contract summaries")
	}

	if mode.Strategy == "network" {
		opts = append(opts, secop.WithFetchProvider(fetch.NewHTTP()))
	}

	inv := secop.NewInvestigator(opts...)
	batch := inv.InvestigateBatch(ctx, subjects)

	for _, r := range batch.Reports {
		fmt.Printf("\n=== %s (doc. %s) [%s]\n\n%s\n", r.Subject.Name, r.Subject.Document, r.ID, r.Narrative)
		if len(r.Network) > 0 {
			fmt.Printf("\nRed identificada:\n%s\n", strings.Join(r.Network, "\n"))
		}
		if len(r.Sources) > 0 {
			fmt.Printf("\nFuentes:\n%s\n", strings.Join(r.Sources, "\n"))
		}
	}
	for _, f := range batch.Failures {
		slog.Error("investigation failed", "subject", f.Subject.Name, "document", f.Subject.Document, "error", f.Err)
	}

	if len(batch.Reports) == 0 && len(batch.Failures) > 0 {
		return fmt.Errorf("all %d investigations failed", len(batch.Failures))
	}
	return nil
}

func resolveMode(name string) (secop.Mode, error) {
	switch name {
	case "standard":
		return secop.ModeStandard(), nil
	case "deep":
		return secop.ModeDeep(), nil
	case "ultra":
		return secop.ModeUltra(), nil
	default:
		return secop.Mode{}, fmt.Errorf("unknown mode %q (want standard, deep or ultra)", name)
	}
}

// buildSubject resolves a target (NIT or name) against the fetched rows
// and seeds the subject context with its contract summary and risk flags.
func buildSubject(rows []socrata.Contract, target string) secop.Subject {
	document, name := "", target
	if isDigits(target) {
		document, name = target, ""
	}

	matched := report.ForContractor(rows, document, name)
	if len(matched) > 0 {
		if name == "" {
			name = matched[0].Proveedor
		}
		if document == "" {
			document = matched[0].DocumentoProveedor
		}
	}

	var sb strings.Builder
	if len(matched) > 0 {
		sb.WriteString(report.Summarize(matched).Render())
		if flags := report.RiskFlags(rows, document, name); len(flags) > 0 {
			sb.WriteString("\n")
			sb.WriteString(report.RenderFlags(flags))
		}
	}

	return secop.Subject{
		Name:     name,
		Document: document,
		Context:  sb.String(),
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
