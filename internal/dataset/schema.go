// Package dataset loads the item value sheet and caches it for the life of the process.
package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/value-bot/internal/field"
	"github.com/sells-group/value-bot/internal/model"
)

// Column names every sheet must provide. Other columns are ignored.
const (
	ColName   = "Name"
	ColValue  = "Value"
	ColDemand = "Demand"
	ColStatus = "Status"
)

var requiredColumns = []string{ColName, ColValue, ColDemand, ColStatus}

// SchemaError reports required columns missing from the sheet header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: missing required columns %s", strings.Join(e.Missing, ", "))
}

// columnIndex maps each required column to its position in header. Header
// cells are matched case-insensitively after trimming; the first match wins.
func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(requiredColumns))
	for i, h := range header {
		key := strings.TrimSpace(h)
		for _, col := range requiredColumns {
			if _, seen := idx[col]; !seen && strings.EqualFold(key, col) {
				idx[col] = i
			}
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return idx, nil
}

// FromRows builds a Dataset from a table whose first row is the header.
// Short rows are padded with empty cells and fully blank rows are dropped.
func FromRows(rows [][]string) (*model.Dataset, error) {
	if len(rows) == 0 {
		return nil, eris.New("dataset: no header row")
	}
	idx, err := columnIndex(rows[0])
	if err != nil {
		return nil, eris.Wrap(err, "dataset: header")
	}

	cell := func(row []string, col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return row[i]
	}

	items := make([]model.Item, 0, len(rows)-1)
	for _, row := range rows[1:] {
		it, ok := newItem(cell(row, ColName), cell(row, ColValue), cell(row, ColDemand), cell(row, ColStatus))
		if ok {
			items = append(items, it)
		}
	}
	return model.NewDataset(items), nil
}

// FromRecords builds a Dataset from row objects such as a sheet-to-JSON
// export. Keys are matched like header cells. Every required column must
// appear in at least one record; records lacking a key get an empty cell.
func FromRecords(records []map[string]any) (*model.Dataset, error) {
	seen := make(map[string]bool, len(requiredColumns))
	rows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		row := make(map[string]string, len(requiredColumns))
		for k, v := range rec {
			for _, col := range requiredColumns {
				if _, dup := row[col]; !dup && strings.EqualFold(strings.TrimSpace(k), col) {
					row[col] = stringify(v)
					seen[col] = true
				}
			}
		}
		rows = append(rows, row)
	}

	if len(records) > 0 {
		var missing []string
		for _, col := range requiredColumns {
			if !seen[col] {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			return nil, eris.Wrap(&SchemaError{Missing: missing}, "dataset: records")
		}
	}

	items := make([]model.Item, 0, len(rows))
	for _, row := range rows {
		it, ok := newItem(row[ColName], row[ColValue], row[ColDemand], row[ColStatus])
		if ok {
			items = append(items, it)
		}
	}
	return model.NewDataset(items), nil
}

func newItem(name, value, demand, status string) (model.Item, bool) {
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	demand = strings.TrimSpace(demand)
	status = strings.TrimSpace(status)
	if name == "" && value == "" && demand == "" && status == "" {
		return model.Item{}, false
	}

	v, ok := field.ParseValue(value)
	return model.Item{
		Name:     name,
		RawValue: value,
		Value:    v,
		ValueOK:  ok,
		Demand:   demand,
		Status:   status,
	}, true
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
