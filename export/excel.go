package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/opencontratos/secop/report"
	"github.com/opencontratos/secop/socrata"
)

var excelHeader = []string{
	"nombre_entidad", "nit_entidad", "departamento", "ciudad",
	"id_contrato", "referencia_del_contrato", "estado_contrato",
	"objeto_del_contrato", "tipo_de_contrato", "modalidad_de_contratacion",
	"fecha_de_firma", "proveedor_adjudicado", "documento_proveedor",
	"valor_del_contrato", "urlproceso",
}

// Excel writes the rows and their summary to
// <dir>/<prefix>_<timestamp>.xlsx and returns the full path. The workbook
// has a Contratos sheet with one row per contract and a Resumen sheet
// with the descriptive statistics.
func Excel(dir, prefix string, rows []socrata.Contract, summary report.Summary) (string, error) {
	path, err := ensureDir(dir, Filename(prefix, "xlsx"))
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const contracts = "Contratos"
	f.SetSheetName("Sheet1", contracts)
	if err := writeContractsSheet(f, contracts, rows); err != nil {
		return "", err
	}
	if err := writeSummarySheet(f, summary); err != nil {
		return "", err
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

func writeContractsSheet(f *excelize.File, sheet string, rows []socrata.Contract) error {
	for col, h := range excelHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for i, c := range rows {
		firma := ""
		if !c.FechaFirma.IsZero() {
			firma = c.FechaFirma.Time.Format("2006-01-02")
		}
		values := []any{
			c.Entidad, c.NITEntidad, c.Departamento, c.Ciudad,
			c.IDContrato, c.Referencia, c.Estado,
			c.Objeto, c.TipoContrato, c.Modalidad,
			firma, c.Proveedor, c.DocumentoProveedor,
			float64(c.Valor), c.URLProceso.URL,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, s report.Summary) error {
	const sheet = "Resumen"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	type kv struct {
		label string
		value any
	}
	lines := []kv{
		{"Contratos", s.Contracts},
		{"Valor total (COP)", s.TotalValue},
		{"Valor promedio (COP)", s.MeanValue},
		{"Valor máximo (COP)", s.MaxValue},
		{"Entidades distintas", s.Entities},
		{"Contratistas distintos", s.Contractors},
	}
	rowIdx := 1
	for _, l := range lines {
		if err := setPair(f, sheet, rowIdx, l.label, l.value); err != nil {
			return err
		}
		rowIdx++
	}

	rowIdx++
	if err := setPair(f, sheet, rowIdx, "Principales contratistas", "Valor (COP)"); err != nil {
		return err
	}
	rowIdx++
	for _, it := range s.TopContractors {
		if err := setPair(f, sheet, rowIdx, it.Label, it.Total); err != nil {
			return err
		}
		rowIdx++
	}
	return nil
}

func setPair(f *excelize.File, sheet string, row int, label string, value any) error {
	lc, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, lc, label); err != nil {
		return err
	}
	vc, err := excelize.CoordinatesToCellName(2, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, vc, value)
}
