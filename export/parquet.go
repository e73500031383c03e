package export

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/opencontratos/secop/socrata"
)

// parquetRow is the flat columnar shape of one contract. Dates are kept
// as ISO strings so downstream readers need no logical-type support.
type parquetRow struct {
	Entidad            string  `parquet:"nombre_entidad"`
	NITEntidad         string  `parquet:"nit_entidad"`
	Departamento       string  `parquet:"departamento"`
	Ciudad             string  `parquet:"ciudad"`
	IDContrato         string  `parquet:"id_contrato"`
	Referencia         string  `parquet:"referencia_del_contrato"`
	Estado             string  `parquet:"estado_contrato"`
	Objeto             string  `parquet:"objeto_del_contrato"`
	TipoContrato       string  `parquet:"tipo_de_contrato"`
	Modalidad          string  `parquet:"modalidad_de_contratacion"`
	FechaFirma         string  `parquet:"fecha_de_firma"`
	Proveedor          string  `parquet:"proveedor_adjudicado"`
	DocumentoProveedor string  `parquet:"documento_proveedor"`
	Valor              float64 `parquet:"valor_del_contrato"`
	URLProceso         string  `parquet:"urlproceso"`
}

// Parquet writes the rows to <dir>/<prefix>_<timestamp>.parquet and
// returns the full path.
func Parquet(dir, prefix string, rows []socrata.Contract) (string, error) {
	path, err := ensureDir(dir, Filename(prefix, "parquet"))
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create parquet file: %w", err)
	}

	w := parquet.NewGenericWriter[parquetRow](f)
	flat := make([]parquetRow, len(rows))
	for i, c := range rows {
		flat[i] = toParquetRow(c)
	}
	if len(flat) > 0 {
		if _, err := w.Write(flat); err != nil {
			f.Close()
			return "", fmt.Errorf("write parquet rows: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		f.Close()
		return "", fmt.Errorf("close parquet writer: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

func toParquetRow(c socrata.Contract) parquetRow {
	firma := ""
	if !c.FechaFirma.IsZero() {
		firma = c.FechaFirma.Time.Format("2006-01-02")
	}
	return parquetRow{
		Entidad:            c.Entidad,
		NITEntidad:         c.NITEntidad,
		Departamento:       c.Departamento,
		Ciudad:             c.Ciudad,
		IDContrato:         c.IDContrato,
		Referencia:         c.Referencia,
		Estado:             c.Estado,
		Objeto:             c.Objeto,
		TipoContrato:       c.TipoContrato,
		Modalidad:          c.Modalidad,
		FechaFirma:         firma,
		Proveedor:          c.Proveedor,
		DocumentoProveedor: c.DocumentoProveedor,
		Valor:              float64(c.Valor),
		URLProceso:         c.URLProceso.URL,
	}
}
