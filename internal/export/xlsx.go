package export

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
)

// XLSXWriter implements SheetWriter by writing an Excel workbook to a file.
type XLSXWriter struct {
	path string
}

// NewXLSXWriter creates an XLSXWriter that overwrites path on every Write.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

// Write renders rows into a workbook and replaces the file at the writer's path.
func (w *XLSXWriter) Write(_ context.Context, rows []Row) error {
	tmp := w.path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}

	if err := WriteXLSX(out, rows); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		return fmt.Errorf("replacing %s: %w", w.path, err)
	}
	return nil
}

// WriteXLSX renders rows as a workbook with HISTORY and LATEST sheets.
func WriteXLSX(out io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(HistorySheet); err != nil {
		return fmt.Errorf("creating %s sheet: %w", HistorySheet, err)
	}
	if _, err := f.NewSheet(LatestSheet); err != nil {
		return fmt.Errorf("creating %s sheet: %w", LatestSheet, err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}
	historyIdx, err := f.GetSheetIndex(HistorySheet)
	if err != nil {
		return fmt.Errorf("locating %s sheet: %w", HistorySheet, err)
	}
	f.SetActiveSheet(historyIdx)

	if err := setRows(f, HistorySheet, buildHistory(rows)); err != nil {
		return err
	}
	if err := setRows(f, LatestSheet, buildLatest(rows)); err != nil {
		return err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"D9EAD3"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	for _, sheet := range []string{HistorySheet, LatestSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, header); err != nil {
			return fmt.Errorf("styling %s header: %w", sheet, err)
		}
	}

	if err := f.SetPanes(HistorySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing %s header: %w", HistorySheet, err)
	}

	if err := f.SetColWidth(HistorySheet, "A", "H", 16); err != nil {
		return fmt.Errorf("sizing %s columns: %w", HistorySheet, err)
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setRows(f *excelize.File, sheet string, data [][]any) error {
	for i, row := range data {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("computing cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
