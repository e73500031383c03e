// Package report computes descriptive statistics and risk indicators over
// fetched contract rows. Summaries are transient: they are rendered into
// spreadsheets or investigation context and discarded.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/opencontratos/secop/socrata"
)

const topN = 10

// TopItem is one bucket of a grouped aggregation.
type TopItem struct {
	Label string
	Count int
	Total float64
}

// YearStat aggregates contracts signed in one year.
type YearStat struct {
	Year  int
	Count int
	Total float64
}

// Summary holds descriptive statistics for a result set.
type Summary struct {
	Contracts   int
	TotalValue  float64
	MeanValue   float64
	MaxValue    float64
	Entities    int // distinct contracting entities
	Contractors int // distinct awarded contractors

	TopContractors []TopItem // by summed value, descending
	TopEntities    []TopItem
	ByModalidad    []TopItem
	ByEstado       []TopItem
	ByYear         []YearStat // ascending by year
}

// Summarize computes the summary for a result set.
func Summarize(rows []socrata.Contract) Summary {
	s := Summary{Contracts: len(rows)}
	if len(rows) == 0 {
		return s
	}

	entities := make(map[string]bool)
	contractors := make(map[string]bool)
	byYear := make(map[int]*YearStat)

	for _, c := range rows {
		v := float64(c.Valor)
		s.TotalValue += v
		if v > s.MaxValue {
			s.MaxValue = v
		}
		if c.Entidad != "" {
			entities[c.Entidad] = true
		}
		if key := contractorKey(c); key != "" {
			contractors[key] = true
		}
		if y := c.Year(); y > 0 {
			stat, ok := byYear[y]
			if !ok {
				stat = &YearStat{Year: y}
				byYear[y] = stat
			}
			stat.Count++
			stat.Total += v
		}
	}

	s.MeanValue = s.TotalValue / float64(len(rows))
	s.Entities = len(entities)
	s.Contractors = len(contractors)

	s.TopContractors = topBy(rows, topN, func(c socrata.Contract) string { return c.Proveedor })
	s.TopEntities = topBy(rows, topN, func(c socrata.Contract) string { return c.Entidad })
	s.ByModalidad = topBy(rows, 0, func(c socrata.Contract) string { return c.Modalidad })
	s.ByEstado = topBy(rows, 0, func(c socrata.Contract) string { return c.Estado })

	for _, stat := range byYear {
		s.ByYear = append(s.ByYear, *stat)
	}
	sort.Slice(s.ByYear, func(i, j int) bool { return s.ByYear[i].Year < s.ByYear[j].Year })

	return s
}

// topBy groups rows by key in first-seen order, aggregates count and
// summed value, then sorts by value descending. limit 0 keeps everything.
func topBy(rows []socrata.Contract, limit int, key func(socrata.Contract) string) []TopItem {
	idx := make(map[string]int)
	var items []TopItem
	for _, c := range rows {
		k := strings.TrimSpace(key(c))
		if k == "" {
			continue
		}
		i, ok := idx[k]
		if !ok {
			i = len(items)
			idx[k] = i
			items = append(items, TopItem{Label: k})
		}
		items[i].Count++
		items[i].Total += float64(c.Valor)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Total > items[j].Total })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// contractorKey prefers the document id so name variants collapse.
func contractorKey(c socrata.Contract) string {
	if c.DocumentoProveedor != "" {
		return c.DocumentoProveedor
	}
	return c.Proveedor
}

// Render writes the summary as plain text, suitable as investigation
// context or terminal output.
func (s Summary) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Contracts: %d\n", s.Contracts)
	fmt.Fprintf(&b, "Total value: %s COP\n", FormatValue(s.TotalValue))
	if s.Contracts > 0 {
		fmt.Fprintf(&b, "Mean value: %s COP, max value: %s COP\n", FormatValue(s.MeanValue), FormatValue(s.MaxValue))
		fmt.Fprintf(&b, "Distinct entities: %d, distinct contractors: %d\n", s.Entities, s.Contractors)
	}
	if len(s.TopContractors) > 0 {
		b.WriteString("Top contractors by value:\n")
		for _, it := range s.TopContractors {
			fmt.Fprintf(&b, "  %s: %d contracts, %s COP\n", it.Label, it.Count, FormatValue(it.Total))
		}
	}
	if len(s.TopEntities) > 0 {
		b.WriteString("Top entities by value:\n")
		for _, it := range s.TopEntities {
			fmt.Fprintf(&b, "  %s: %d contracts, %s COP\n", it.Label, it.Count, FormatValue(it.Total))
		}
	}
	if len(s.ByYear) > 0 {
		b.WriteString("By signature year:\n")
		for _, y := range s.ByYear {
			fmt.Fprintf(&b, "  %d: %d contracts, %s COP\n", y.Year, y.Count, FormatValue(y.Total))
		}
	}
	return b.String()
}

// FormatValue renders a peso amount with thousands separators.
func FormatValue(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ".")
	if neg {
		out = "-" + out
	}
	return out
}
