package fetcher

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXOptions selects the worksheet to read.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // matched case-insensitively; overrides SheetIndex
}

// ReadXLSXBinary opens an in-memory workbook and returns the displayed text
// of every cell in one worksheet, row by row. Empty trailing cells and rows,
// which spreadsheet editors leave behind after formatting, are dropped.
func ReadXLSXBinary(data []byte, opts XLSXOptions) ([][]string, error) {
	wb, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open workbook")
	}

	ws, err := pickSheet(wb, opts)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(ws.Rows))
	for _, r := range ws.Rows {
		rows = append(rows, displayedCells(r))
	}
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

func pickSheet(wb *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		names := make([]string, 0, len(wb.Sheets))
		for _, ws := range wb.Sheets {
			if strings.EqualFold(strings.TrimSpace(ws.Name), strings.TrimSpace(opts.SheetName)) {
				return ws, nil
			}
			names = append(names, ws.Name)
		}
		return nil, eris.Errorf("xlsx: sheet %q not found (have %s)", opts.SheetName, strings.Join(names, ", "))
	}

	if opts.SheetIndex < 0 || opts.SheetIndex >= len(wb.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (workbook has %d sheets)", opts.SheetIndex, len(wb.Sheets))
	}
	return wb.Sheets[opts.SheetIndex], nil
}

// displayedCells renders a row as shown in the editor, minus trailing blanks.
func displayedCells(r *xlsx.Row) []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.Cells))
	last := -1
	for i, c := range r.Cells {
		out[i] = c.String()
		if strings.TrimSpace(out[i]) != "" {
			last = i
		}
	}
	return out[:last+1]
}
