package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/opencontratos/secop/socrata"
)

func TestMatchesValueRange(t *testing.T) {
	q := socrata.Query{ValorMinimo: 100, ValorMaximo: 1000}

	assert.False(t, Matches(row("E", "X", "1", 99, 2023), q))
	assert.True(t, Matches(row("E", "X", "1", 100, 2023), q))
	assert.True(t, Matches(row("E", "X", "1", 1000, 2023), q))
	assert.False(t, Matches(row("E", "X", "1", 1001, 2023), q))
}

func TestMatchesExactFieldsCaseInsensitive(t *testing.T) {
	c := row("Alcaldía de Quibdó", "Constructora X", "900111", 100, 2023)
	c.Departamento = "Chocó"

	assert.True(t, Matches(c, socrata.Query{Departamento: "chocó"}))
	assert.False(t, Matches(c, socrata.Query{Departamento: "Nariño"}))
	assert.True(t, Matches(c, socrata.Query{DocumentoProveedor: "900111"}))
}

func TestMatchesObjetoContiene(t *testing.T) {
	c := row("E", "X", "1", 100, 2023)
	c.Objeto = "Construcción de acueducto veredal"

	assert.True(t, Matches(c, socrata.Query{ObjetoContiene: "ACUEDUCTO"}))
	assert.False(t, Matches(c, socrata.Query{ObjetoContiene: "puente"}))
}

func TestMatchesDateRange(t *testing.T) {
	c := row("E", "X", "1", 100, 2023) // signed 2023-06-01
	q := socrata.Query{
		FirmadoDesde: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		FirmadoHasta: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, Matches(c, q))

	q.FirmadoHasta = time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, Matches(c, q))

	// A row without a signature date cannot satisfy a date filter.
	undated := row("E", "X", "1", 100, 0)
	assert.False(t, Matches(undated, socrata.Query{FirmadoDesde: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}))
}

func TestFilterKeepsOnlyMatches(t *testing.T) {
	rows := []socrata.Contract{
		row("E", "X", "1", 50, 2023),
		row("E", "Y", "2", 500, 2023),
		row("E", "Z", "3", 5000, 2023),
	}

	got := Filter(rows, socrata.Query{ValorMinimo: 100})

	assert.Len(t, got, 2)
	for _, c := range got {
		assert.GreaterOrEqual(t, float64(c.Valor), 100.0)
	}
}

func TestForContractorPrefersDocument(t *testing.T) {
	rows := []socrata.Contract{
		row("E", "Constructora X", "900111", 100, 2023),
		row("E", "CONSTRUCTORA X", "", 200, 2023),
		row("E", "Otra SAS", "900222", 300, 2023),
	}

	byDoc := ForContractor(rows, "900111", "ignored")
	assert.Len(t, byDoc, 1)

	byName := ForContractor(rows, "", "constructora x")
	assert.Len(t, byName, 2)
}
