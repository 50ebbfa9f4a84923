package reader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/nao1215/tallyfetch/internal/model"
	"github.com/xuri/excelize/v2"
)

// ErrNoSheet is returned when a workbook has no sheet.
var ErrNoSheet = errors.New("workbook has no sheet")

// SpreadsheetReader reads the first sheet of a workbook and returns every
// cell, row-major. Unlike DelimitedReader it does not skip a header row.
//
// Rows are padded with empty strings to the width of the widest row, so
// empty cells are counted as "". Legacy .xls files are read with
// github.com/extrame/xls, anything else with excelize.
type SpreadsheetReader struct {
	// Charset is passed to the .xls decoder for non-Unicode strings.
	Charset string
}

// NewSpreadsheetReader returns a SpreadsheetReader.
func NewSpreadsheetReader() *SpreadsheetReader {
	return &SpreadsheetReader{Charset: "utf-8"}
}

// Read implements Reader.
func (r *SpreadsheetReader) Read(path string) ([]model.Value, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, openError(path, err)
	}

	var (
		rows [][]string
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".xls") {
		rows, err = r.readXLS(path)
	} else {
		rows, err = readXLSX(path)
	}
	if err != nil {
		return nil, model.NewFormatError("parse", path, err)
	}

	return cellValues(rows), nil
}

// readXLS reads the first sheet of a BIFF workbook.
func (r *SpreadsheetReader) readXLS(path string) (rows [][]string, err error) {
	// the BIFF decoder panics on some malformed files
	defer func() {
		if p := recover(); p != nil {
			rows = nil
			err = fmt.Errorf("malformed workbook: %v", p)
		}
	}()

	wb, err := xls.Open(path, r.Charset)
	if err != nil {
		return nil, err
	}
	if wb.NumSheets() == 0 {
		return nil, ErrNoSheet
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, ErrNoSheet
	}

	rows = make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheetRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := range cells {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return trimTrailingEmptyRows(rows), nil
}

// sheetRow returns row i of sheet, or nil when the sheet stores no record
// for it. (*xls.WorkSheet).Row dereferences missing rows.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// readXLSX reads the first sheet of an Office Open XML workbook.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}
	return f.GetRows(sheets[0])
}

// cellValues pads rows to a common width and flattens them row-major.
func cellValues(rows [][]string) []model.Value {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	values := make([]model.Value, 0, len(rows)*width)
	for _, row := range rows {
		for j := 0; j < width; j++ {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			values = append(values, model.StringValue(cell))
		}
	}
	return values
}

func trimTrailingEmptyRows(rows [][]string) [][]string {
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows
}
