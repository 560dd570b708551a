package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/c14220110/hospital-dashboard/internal/resources/models"
)

func (s *Schema) exportColumns() []Column {
	if len(s.Export) == 0 {
		return s.Columns
	}
	cols := make([]Column, 0, len(s.Export))
	for _, name := range s.Export {
		if c, ok := s.Column(name); ok {
			cols = append(cols, c)
		}
	}
	return cols
}

// ExportFilename is the attachment name for an export in the given extension.
func (s *Schema) ExportFilename(ext, stamp string) string {
	return fmt.Sprintf("%s_%s.%s", s.Table, stamp, ext)
}

func cellText(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// WriteCSV writes rows as CSV with a header of column labels.
func WriteCSV(w io.Writer, schema *Schema, rows []models.Row) error {
	cols := schema.exportColumns()
	cw := csv.NewWriter(w)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Label
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export csv: write header: %w", err)
	}

	record := make([]string, len(cols))
	for _, row := range rows {
		for i, c := range cols {
			record[i] = cellText(row[c.Name])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("export csv: write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// XLSX renders rows as a single-sheet workbook with a bold, frozen header.
func XLSX(schema *Schema, rows []models.Row) ([]byte, error) {
	cols := schema.exportColumns()
	f := excelize.NewFile()
	defer f.Close()

	sheet := schema.Entity + "s"
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("export xlsx: rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("export xlsx: header style: %w", err)
	}

	for i, c := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, c.Label); err != nil {
			return nil, fmt.Errorf("export xlsx: header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("export xlsx: header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, name, name, 20); err != nil {
			return nil, fmt.Errorf("export xlsx: column width: %w", err)
		}
	}

	for r, row := range rows {
		for i, c := range cols {
			v := row[c.Name]
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("export xlsx: cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("export xlsx: freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("export xlsx: write: %w", err)
	}
	return buf.Bytes(), nil
}
