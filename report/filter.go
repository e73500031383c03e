package report

import (
	"strings"

	"github.com/opencontratos/secop/socrata"
)

// Matches reports whether a row satisfies every filter the query supplies.
// It mirrors the server-side parameter mapping, so it can verify fetched
// rows and filter already-downloaded result sets locally.
func Matches(c socrata.Contract, q socrata.Query) bool {
	if !equalsIf(c.Departamento, q.Departamento) {
		return false
	}
	if !equalsIf(c.Ciudad, q.Municipio) {
		return false
	}
	if !equalsIf(c.Entidad, q.Entidad) {
		return false
	}
	if !equalsIf(c.Proveedor, q.Proveedor) {
		return false
	}
	if !equalsIf(c.DocumentoProveedor, q.DocumentoProveedor) {
		return false
	}
	if !equalsIf(c.Estado, q.Estado) {
		return false
	}
	if !equalsIf(c.Modalidad, q.Modalidad) {
		return false
	}
	if term := strings.TrimSpace(q.ObjetoContiene); term != "" {
		if !strings.Contains(strings.ToUpper(c.Objeto), strings.ToUpper(term)) {
			return false
		}
	}
	if q.ValorMinimo > 0 && float64(c.Valor) < q.ValorMinimo {
		return false
	}
	if q.ValorMaximo > 0 && float64(c.Valor) > q.ValorMaximo {
		return false
	}
	if !q.FirmadoDesde.IsZero() && (c.FechaFirma.IsZero() || c.FechaFirma.Time.Before(q.FirmadoDesde)) {
		return false
	}
	if !q.FirmadoHasta.IsZero() && (c.FechaFirma.IsZero() || c.FechaFirma.Time.After(q.FirmadoHasta)) {
		return false
	}
	return true
}

// Filter returns the rows satisfying the query.
func Filter(rows []socrata.Contract, q socrata.Query) []socrata.Contract {
	out := make([]socrata.Contract, 0, len(rows))
	for _, c := range rows {
		if Matches(c, q) {
			out = append(out, c)
		}
	}
	return out
}

// ForContractor selects the rows awarded to a document id (or, when the
// id is empty, to an exact contractor name).
func ForContractor(rows []socrata.Contract, document, name string) []socrata.Contract {
	var out []socrata.Contract
	for _, c := range rows {
		if document != "" {
			if c.DocumentoProveedor == document {
				out = append(out, c)
			}
			continue
		}
		if strings.EqualFold(c.Proveedor, name) {
			out = append(out, c)
		}
	}
	return out
}

func equalsIf(value, filter string) bool {
	if strings.TrimSpace(filter) == "" {
		return true
	}
	return strings.EqualFold(value, filter)
}
