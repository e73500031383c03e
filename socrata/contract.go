package socrata

import (
	"bytes"
	"strconv"
	"strings"
	"time"
)

// Contract is one SECOP II electronic-contract row. Rows are immutable
// once fetched; field names follow the dataset's column identifiers.
type Contract struct {
	Entidad            string  `json:"nombre_entidad"`
	NITEntidad         string  `json:"nit_entidad"`
	Departamento       string  `json:"departamento"`
	Ciudad             string  `json:"ciudad"`
	IDContrato         string  `json:"id_contrato"`
	Referencia         string  `json:"referencia_del_contrato"`
	Estado             string  `json:"estado_contrato"`
	Descripcion        string  `json:"descripcion_del_proceso"`
	Objeto             string  `json:"objeto_del_contrato"`
	TipoContrato       string  `json:"tipo_de_contrato"`
	Modalidad          string  `json:"modalidad_de_contratacion"`
	FechaFirma         Date    `json:"fecha_de_firma"`
	FechaInicio        Date    `json:"fecha_de_inicio_del_contrato"`
	FechaFin           Date    `json:"fecha_de_fin_del_contrato"`
	Proveedor          string  `json:"proveedor_adjudicado"`
	DocumentoProveedor string  `json:"documento_proveedor"`
	TipoDocProveedor   string  `json:"tipodocproveedor"`
	Valor              Money   `json:"valor_del_contrato"`
	URLProceso         Enlace  `json:"urlproceso"`
}

// Enlace is Socrata's url column type: {"url": "..."}.
type Enlace struct {
	URL string `json:"url"`
}

// Money is a contract value in Colombian pesos. Socrata serializes
// numeric columns as JSON strings, so both "1234.5" and 1234.5 decode.
type Money float64

func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(bytes.Trim(b, `"`)))
	if s == "" || s == "null" {
		*m = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*m = Money(f)
	return nil
}

// Date is a floating timestamp column. The dataset uses ISO timestamps
// with and without fractional seconds; bare dates also appear.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(bytes.Trim(b, `"`)))
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			d.Time = t
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// Year returns the signature year, or 0 when the date is missing.
func (c Contract) Year() int {
	if c.FechaFirma.IsZero() {
		return 0
	}
	return c.FechaFirma.Time.Year()
}
