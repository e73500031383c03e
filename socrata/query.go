package socrata

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Query holds keyword-style filters over the contracts dataset. The zero
// value selects everything.
type Query struct {
	Departamento       string // exact department match
	Municipio          string // exact municipality match
	Entidad            string // exact contracting-entity name match
	Proveedor          string // exact awarded-contractor name match
	DocumentoProveedor string // contractor tax/document id
	Estado             string // process status, e.g. "Activo"
	Modalidad          string // contracting modality

	// ObjetoContiene is a case-insensitive free-text match on the
	// contract object.
	ObjetoContiene string

	// Value range in pesos; zero means unbounded.
	ValorMinimo float64
	ValorMaximo float64

	// Signature-date range; zero times mean unbounded.
	FirmadoDesde time.Time
	FirmadoHasta time.Time

	Limit   int    // page size; 0 uses the client default
	Offset  int    // pagination offset
	OrderBy string // SoQL order clause, e.g. "fecha_de_firma DESC"
}

// Params maps the query deterministically onto Socrata request parameters:
// exact-match fields become bare field=value parameters and ranges plus
// free text are AND-combined into one $where clause.
func (q Query) Params() url.Values {
	v := url.Values{}

	setIf(v, "departamento", q.Departamento)
	setIf(v, "ciudad", q.Municipio)
	setIf(v, "nombre_entidad", q.Entidad)
	setIf(v, "proveedor_adjudicado", q.Proveedor)
	setIf(v, "documento_proveedor", q.DocumentoProveedor)
	setIf(v, "estado_contrato", q.Estado)
	setIf(v, "modalidad_de_contratacion", q.Modalidad)

	if where := q.whereClause(); where != "" {
		v.Set("$where", where)
	}
	if q.Limit > 0 {
		v.Set("$limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("$offset", strconv.Itoa(q.Offset))
	}
	if q.OrderBy != "" {
		v.Set("$order", q.OrderBy)
	}
	return v
}

func (q Query) whereClause() string {
	var parts []string
	if q.ValorMinimo > 0 {
		parts = append(parts, fmt.Sprintf("valor_del_contrato >= %s", formatNumber(q.ValorMinimo)))
	}
	if q.ValorMaximo > 0 {
		parts = append(parts, fmt.Sprintf("valor_del_contrato <= %s", formatNumber(q.ValorMaximo)))
	}
	if !q.FirmadoDesde.IsZero() {
		parts = append(parts, fmt.Sprintf("fecha_de_firma >= '%s'", q.FirmadoDesde.Format("2006-01-02")))
	}
	if !q.FirmadoHasta.IsZero() {
		parts = append(parts, fmt.Sprintf("fecha_de_firma <= '%s'", q.FirmadoHasta.Format("2006-01-02")))
	}
	if term := strings.TrimSpace(q.ObjetoContiene); term != "" {
		parts = append(parts, fmt.Sprintf("upper(objeto_del_contrato) like upper('%%%s%%')", escapeSoQL(term)))
	}
	return strings.Join(parts, " AND ")
}

// WithPage returns a copy of the query positioned at the given page.
func (q Query) WithPage(limit, offset int) Query {
	q.Limit = limit
	q.Offset = offset
	return q
}

func setIf(v url.Values, key, value string) {
	if strings.TrimSpace(value) != "" {
		v.Set(key, value)
	}
}

// escapeSoQL doubles single quotes inside string literals.
func escapeSoQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// formatNumber renders values without exponent notation so SoQL accepts
// them (for example 1000000000, not 1e+09).
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
