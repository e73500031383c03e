package socrata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePage = `[
  {
    "nombre_entidad": "ALCALDIA DE QUIBDO",
    "nit_entidad": "891680011",
    "departamento": "Chocó",
    "ciudad": "Quibdó",
    "id_contrato": "CO1.PCCNTR.111",
    "estado_contrato": "Activo",
    "objeto_del_contrato": "Construcción de acueducto veredal",
    "modalidad_de_contratacion": "Licitación pública",
    "fecha_de_firma": "2023-05-10T00:00:00.000",
    "proveedor_adjudicado": "CONSTRUCTORA EJEMPLO SAS",
    "documento_proveedor": "900123456",
    "valor_del_contrato": "1500000000",
    "urlproceso": {"url": "https://community.secop.gov.co/..."}
  }
]`

func TestContractsDecodesRows(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-App-Token")
		w.Write([]byte(fixturePage))
	}))
	defer srv.Close()

	c := NewClient(WithEndpoint(srv.URL), WithAppToken("token-123"))
	rows, err := c.Contracts(context.Background(), Query{Departamento: "Chocó"})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "token-123", gotToken)
	row := rows[0]
	assert.Equal(t, "ALCALDIA DE QUIBDO", row.Entidad)
	assert.Equal(t, "CONSTRUCTORA EJEMPLO SAS", row.Proveedor)
	assert.Equal(t, Money(1_500_000_000), row.Valor)
	assert.Equal(t, 2023, row.Year())
	assert.Equal(t, "https://community.secop.gov.co/...", row.URLProceso.URL)
}

func TestContractsAllPaginates(t *testing.T) {
	var offsets []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("$offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("$limit"))
		offsets = append(offsets, offset)

		// Serve 2 full pages of `limit` rows, then a short page of one.
		n := limit
		if offset >= 2*limit {
			n = 1
		}
		w.Write([]byte(pageOfRows(n)))
	}))
	defer srv.Close()

	c := NewClient(WithEndpoint(srv.URL), WithPageSize(2))
	rows, err := c.ContractsAll(context.Background(), Query{})
	require.NoError(t, err)

	assert.Len(t, rows, 5)
	assert.Equal(t, []int{0, 2, 4}, offsets)
}

func TestContractsAllHonorsCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("$limit"))
		w.Write([]byte(pageOfRows(limit)))
	}))
	defer srv.Close()

	c := NewClient(WithEndpoint(srv.URL), WithPageSize(2))
	rows, err := c.ContractsAll(context.Background(), Query{Limit: 3})
	require.NoError(t, err)

	assert.Len(t, rows, 3)
}

func TestContractsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "invalid SoQL"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(WithEndpoint(srv.URL))
	_, err := c.Contracts(context.Background(), Query{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "invalid SoQL")
}

func TestContractsCacheAvoidsSecondRequest(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(fixturePage))
	}))
	defer srv.Close()

	c := NewClient(WithEndpoint(srv.URL), WithCache(t.TempDir(), time.Hour))

	for i := 0; i < 3; i++ {
		rows, err := c.Contracts(context.Background(), Query{Departamento: "Chocó"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
	}

	assert.Equal(t, 1, hits)
}

type countingGate struct{ waits int }

func (g *countingGate) Wait(ctx context.Context) error {
	g.waits++
	return nil
}

func TestClientConsultsGate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	gate := &countingGate{}
	c := NewClient(WithEndpoint(srv.URL), WithGate(gate))

	_, err := c.Contracts(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, 1, gate.waits)
}

// pageOfRows builds n minimal rows.
func pageOfRows(n int) string {
	out := "["
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += `{"id_contrato": "CO1.` + strconv.Itoa(i) + `", "valor_del_contrato": "100"}`
	}
	return out + "]"
}
