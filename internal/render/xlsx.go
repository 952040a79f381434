package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"spinescan/internal/metadata"
)

// SheetName is the worksheet holding the exported matches.
const SheetName = "Matches"

var sheetHeaders = []string{"query_text", "source", "artist", "title", "cover_art_url", "id_key", "id"}

// WriteXLSX writes a workbook with one row per (query, match) pair. Queries
// without matches get a row with only query_text filled in.
func WriteXLSX(w io.Writer, set metadata.ResultSet) error {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(sheetHeaders))
	for i, h := range sheetHeaders {
		header[i] = h
	}
	if err := wb.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := wb.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(sheetHeaders), 1)
	if err != nil {
		return err
	}
	if err := wb.SetCellStyle(SheetName, "A1", lastHeader, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	row := 2
	for _, entry := range set {
		rows := xlsxRows(entry)
		for _, values := range rows {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := wb.SetSheetRow(SheetName, cell, &values); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
			row++
		}
	}

	if err := wb.SetColWidth(SheetName, "A", "A", 40); err != nil {
		return err
	}
	if err := wb.SetColWidth(SheetName, "C", "E", 32); err != nil {
		return err
	}
	if err := wb.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func xlsxRows(entry metadata.Entry) [][]any {
	if !entry.HasMatches() {
		return [][]any{{entry.QueryText}}
	}
	rows := make([][]any, 0, len(entry.Matches))
	for _, m := range entry.Matches {
		rows = append(rows, []any{entry.QueryText, m.Source, m.Artist, m.Title, m.CoverArtURL, m.IDKey, m.ID})
	}
	return rows
}
