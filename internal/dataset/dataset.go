// Package dataset handles tabular report parsing and joining. Headers are
// canonicalized (trimmed, lower-cased) at parse time so downstream code can
// address columns without caring how the export tool cased them.
package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Dataset is one parsed tabular report: an ordered header list plus one
// string map per data row. Unrecognized columns are kept and pass through.
type Dataset struct {
	Columns []string
	Rows    []map[string]string
}

// Parse decodes raw report bytes. The format is chosen from the object key
// extension; anything that is not .xlsx is treated as CSV.
func Parse(data []byte, key string) (*Dataset, error) {
	if strings.HasSuffix(strings.ToLower(key), ".xlsx") {
		return FromXLSX(bytes.NewReader(data))
	}
	return FromCSV(bytes.NewReader(data))
}

// FromCSV parses comma-separated tabular text with a header row. Ragged rows
// are tolerated: missing cells stay absent from the row map and short fills
// absorb them via the coercion defaults, trailing extras are ignored.
func FromCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	headers = normalizeHeaders(headers)

	ds := &Dataset{Columns: headers}
	lineNum := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", lineNum+1, err)
		}

		row := make(map[string]string)
		for i, value := range record {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		ds.Rows = append(ds.Rows, row)
		lineNum++
	}

	return ds, nil
}

// FromXLSX parses the first sheet of an Excel workbook.
func FromXLSX(r io.Reader) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	excelRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(excelRows) == 0 {
		return nil, fmt.Errorf("sheet has no header row")
	}

	headers := normalizeHeaders(excelRows[0])
	ds := &Dataset{Columns: headers}

	for _, excelRow := range excelRows[1:] {
		row := make(map[string]string)
		for i, value := range excelRow {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		ds.Rows = append(ds.Rows, row)
	}

	return ds, nil
}

func normalizeHeaders(headers []string) []string {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = strings.TrimSpace(strings.ToLower(h))
	}
	return normalized
}

// HasColumn reports whether the dataset carries the given (normalized) column.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// InnerJoin joins d with other on the given column. Only rows whose key
// appears on both sides survive; duplicate keys on the right produce one
// output row per match. On column-name collision the left side keeps the
// bare name and the right-side column is renamed with the suffix.
func (d *Dataset) InnerJoin(other *Dataset, on, suffix string) (*Dataset, error) {
	if !d.HasColumn(on) {
		return nil, fmt.Errorf("join column %q missing from left dataset", on)
	}
	if !other.HasColumn(on) {
		return nil, fmt.Errorf("join column %q missing from right dataset", on)
	}

	leftCols := make(map[string]bool, len(d.Columns))
	for _, c := range d.Columns {
		leftCols[c] = true
	}

	joined := &Dataset{Columns: append([]string(nil), d.Columns...)}
	for _, c := range other.Columns {
		if c == on {
			continue
		}
		if leftCols[c] {
			joined.Columns = append(joined.Columns, c+suffix)
		} else {
			joined.Columns = append(joined.Columns, c)
		}
	}

	rightByKey := make(map[string][]map[string]string, len(other.Rows))
	for _, row := range other.Rows {
		key := row[on]
		rightByKey[key] = append(rightByKey[key], row)
	}

	for _, left := range d.Rows {
		matches, ok := rightByKey[left[on]]
		if !ok {
			continue
		}
		for _, right := range matches {
			row := make(map[string]string, len(left)+len(right))
			for k, v := range left {
				row[k] = v
			}
			for k, v := range right {
				if k == on {
					continue
				}
				if leftCols[k] {
					row[k+suffix] = v
				} else {
					row[k] = v
				}
			}
			joined.Rows = append(joined.Rows, row)
		}
	}

	return joined, nil
}
