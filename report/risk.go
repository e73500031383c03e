package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/opencontratos/secop/socrata"
)

// RiskLevel grades a risk flag.
type RiskLevel string

const (
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Thresholds for the pattern detectors.
const (
	concentrationShare = 0.60 // contractor's share of one entity's total
	dependenceShare    = 0.80 // share of the contractor's value from one entity
	growthRatio        = 6.0  // >500% year-over-year growth
)

// RiskFlag is one detected pattern with a human-readable description.
type RiskFlag struct {
	Code        string
	Level       RiskLevel
	Description string
}

// RiskFlags runs the pattern detectors for one contractor over a result
// set that may contain other contractors' rows (needed to compute entity
// totals). document identifies the contractor; name is the fallback when
// rows carry no document id.
func RiskFlags(rows []socrata.Contract, document, name string) []RiskFlag {
	subject := ForContractor(rows, document, name)
	if len(subject) == 0 {
		return nil
	}

	var flags []RiskFlag
	flags = append(flags, concentrationFlags(rows, subject)...)
	if f, ok := dependenceFlag(subject); ok {
		flags = append(flags, f)
	}
	if f, ok := growthFlag(subject); ok {
		flags = append(flags, f)
	}
	return flags
}

// concentrationFlags fires when the contractor holds more than 60% of an
// entity's total contracted value in the result set.
func concentrationFlags(all, subject []socrata.Contract) []RiskFlag {
	entityTotals := make(map[string]float64)
	for _, c := range all {
		entityTotals[c.Entidad] += float64(c.Valor)
	}
	subjectTotals := make(map[string]float64)
	for _, c := range subject {
		subjectTotals[c.Entidad] += float64(c.Valor)
	}

	entities := make([]string, 0, len(subjectTotals))
	for e := range subjectTotals {
		entities = append(entities, e)
	}
	sort.Strings(entities)

	var flags []RiskFlag
	for _, e := range entities {
		total := entityTotals[e]
		if e == "" || total <= 0 {
			continue
		}
		share := subjectTotals[e] / total
		if share > concentrationShare {
			flags = append(flags, RiskFlag{
				Code:  "contract_concentration",
				Level: RiskHigh,
				Description: fmt.Sprintf("holds %.0f%% of the contracted value of %s in this result set",
					share*100, e),
			})
		}
	}
	return flags
}

// dependenceFlag fires when more than 80% of the contractor's value comes
// from a single entity and there are enough rows to make that meaningful.
func dependenceFlag(subject []socrata.Contract) (RiskFlag, bool) {
	if len(subject) < 3 {
		return RiskFlag{}, false
	}
	var total float64
	perEntity := make(map[string]float64)
	for _, c := range subject {
		total += float64(c.Valor)
		perEntity[c.Entidad] += float64(c.Valor)
	}
	if total <= 0 {
		return RiskFlag{}, false
	}
	for e, v := range perEntity {
		if e != "" && v/total > dependenceShare {
			return RiskFlag{
				Code:  "single_entity_dependence",
				Level: RiskMedium,
				Description: fmt.Sprintf("%.0f%% of contracted value comes from a single entity (%s)",
					v/total*100, e),
			}, true
		}
	}
	return RiskFlag{}, false
}

// growthFlag fires on more than 500% growth of signed value between two
// consecutive years.
func growthFlag(subject []socrata.Contract) (RiskFlag, bool) {
	byYear := make(map[int]float64)
	for _, c := range subject {
		if y := c.Year(); y > 0 {
			byYear[y] += float64(c.Valor)
		}
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	for i := 1; i < len(years); i++ {
		prev, cur := years[i-1], years[i]
		if cur != prev+1 || byYear[prev] <= 0 {
			continue
		}
		if byYear[cur]/byYear[prev] > growthRatio {
			return RiskFlag{
				Code:  "rapid_growth",
				Level: RiskMedium,
				Description: fmt.Sprintf("contracted value grew more than 500%% from %d to %d (%s to %s COP)",
					prev, cur, FormatValue(byYear[prev]), FormatValue(byYear[cur])),
			}, true
		}
	}
	return RiskFlag{}, false
}

// RenderFlags writes the flags as plain text for investigation context.
func RenderFlags(flags []RiskFlag) string {
	if len(flags) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Risk indicators from contract data:\n")
	for _, f := range flags {
		fmt.Fprintf(&b, "  [%s] %s: %s\n", f.Level, f.Code, f.Description)
	}
	return b.String()
}
