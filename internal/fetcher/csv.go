// Package fetcher downloads the value sheet and decodes its CSV, XLSX and
// JSON exports into rows of cells.
package fetcher

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is one decoded record. Line is the 1-based line where it starts.
type Row struct {
	Line  int
	Cells []string
}

// CSVOptions configures CSV decoding of a sheet export.
type CSVOptions struct {
	Delimiter  rune // default ','
	LazyQuotes bool // tolerate stray quotes in hand-edited cells
	MaxRows    int  // 0 means unlimited
}

// StreamCSV decodes r on a goroutine and sends each record on the row
// channel. Records may have differing widths. A leading UTF-8 BOM, which
// spreadsheet exports often carry, is dropped. Both channels are closed when
// decoding stops; at most one error is sent.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan Row, <-chan error) {
	rowCh := make(chan Row, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		br := bufio.NewReader(r)
		if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			_, _ = br.Discard(len(utf8BOM))
		}

		reader := csv.NewReader(br)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1

		n := 0
		for {
			if err := ctx.Err(); err != nil {
				errCh <- eris.Wrap(err, "csv: decode cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read record")
				return
			}

			n++
			if opts.MaxRows > 0 && n > opts.MaxRows {
				errCh <- eris.Errorf("csv: sheet exceeds %d rows", opts.MaxRows)
				return
			}

			line, _ := reader.FieldPos(0)
			select {
			case rowCh <- Row{Line: line, Cells: record}:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: decode cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// ReadCSV decodes the whole export into memory, header row included.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions) ([][]string, error) {
	rowCh, errCh := StreamCSV(ctx, r, opts)

	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row.Cells)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return rows, nil
}
