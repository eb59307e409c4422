// Package reference reads fasit files: flat delimited text or spreadsheets whose
// columns are mapped to named fields by a Layout.
package reference

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Field names a Layout can map.
const (
	FieldName                     = "name"
	FieldAddress                  = "address"
	FieldPostalCode               = "postal_code"
	FieldCity                     = "city"
	FieldElectricalType           = "electrical_type"
	FieldFireSystem               = "fire_system"
	FieldFireOperationType        = "fire_operation_type"
	FieldLastElectricalInspection = "last_electrical_inspection"
	FieldNextElectricalInspection = "next_electrical_inspection"
	FieldLastFireInspection       = "last_fire_inspection"
	FieldNextFireInspection       = "next_fire_inspection"
)

// ErrUnknownLayout is returned by LayoutByName for unregistered names.
var ErrUnknownLayout = errors.New("unknown reference layout")

// Row is one decoded reference row keyed by field name.
type Row map[string]string

// Get returns the trimmed value of field, or "" when absent.
func (r Row) Get(field string) string {
	return strings.TrimSpace(r[field])
}

// Layout describes one generation of the reference file.
type Layout struct {
	Name      string
	Delimiter rune
	// SkipRows is the number of leading header rows.
	SkipRows int
	// Columns maps field name to zero-based column index.
	Columns map[string]int
}

// LayoutV1 is the first fasit export: semicolon separated, one header row,
// electrical fields only.
var LayoutV1 = Layout{
	Name:      "v1",
	Delimiter: ';',
	SkipRows:  1,
	Columns: map[string]int{
		FieldName:                     0,
		FieldAddress:                  1,
		FieldPostalCode:               2,
		FieldCity:                     3,
		FieldElectricalType:           4,
		FieldLastElectricalInspection: 5,
		FieldNextElectricalInspection: 6,
	},
}

// LayoutV2 is the current fasit export: comma separated, a title row plus a header
// row, customer number in column 0.
var LayoutV2 = Layout{
	Name:      "v2",
	Delimiter: ',',
	SkipRows:  2,
	Columns: map[string]int{
		FieldName:                     1,
		FieldAddress:                  2,
		FieldPostalCode:               3,
		FieldCity:                     4,
		FieldElectricalType:           5,
		FieldFireSystem:               6,
		FieldFireOperationType:        7,
		FieldLastElectricalInspection: 8,
		FieldNextElectricalInspection: 9,
		FieldLastFireInspection:       10,
		FieldNextFireInspection:       11,
	},
}

var layouts = map[string]Layout{
	LayoutV1.Name: LayoutV1,
	LayoutV2.Name: LayoutV2,
}

// LayoutByName returns a registered layout.
func LayoutByName(name string) (Layout, error) {
	l, ok := layouts[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Layout{}, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
	}
	return l, nil
}

// Decode parses delimited text using layout.
func Decode(r io.Reader, layout Layout) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read reference: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = layout.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse reference: %w", err)
	}
	return DecodeRecords(records, layout), nil
}

// DecodeRecords maps raw records to rows. Header rows are skipped and rows without a
// name are dropped; columns beyond a short record decode as "".
func DecodeRecords(records [][]string, layout Layout) []Row {
	if layout.SkipRows >= len(records) {
		return nil
	}
	rows := make([]Row, 0, len(records)-layout.SkipRows)
	for _, rec := range records[layout.SkipRows:] {
		row := make(Row, len(layout.Columns))
		for field, idx := range layout.Columns {
			if idx >= 0 && idx < len(rec) {
				row[field] = strings.TrimSpace(rec[idx])
			}
		}
		if row.Get(FieldName) == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// ReadXLSX decodes the first sheet of a spreadsheet using layout. The delimiter is ignored.
func ReadXLSX(path string, layout Layout) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", path)
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return DecodeRecords(records, layout), nil
}

// ReadFile decodes path, picking the spreadsheet reader for .xlsx files.
func ReadFile(path string, layout Layout) ([]Row, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(path, layout)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference: %w", err)
	}
	defer f.Close()
	return Decode(f, layout)
}
