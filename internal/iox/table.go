package iox

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrEmptyTable is returned when a table holds a header but no data rows, or
// nothing at all.
var ErrEmptyTable = errors.New("table has no data rows")

// Table is a delimited numeric table: one header row plus float columns.
type Table struct {
	Header []string
	Rows   [][]float64
}

// ReadTable parses a delimited file with a single header row and numeric
// data columns.
func ReadTable(path string, sep rune) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = sep
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) < 2 {
		return Table{}, fmt.Errorf("%s: %w", path, ErrEmptyTable)
	}

	t := Table{Header: records[0], Rows: make([][]float64, 0, len(records)-1)}
	for i, rec := range records[1:] {
		row := make([]float64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return Table{}, fmt.Errorf("%s row %d col %d: %w", path, i+2, j+1, err)
			}
			row[j] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Column returns data column i, which must exist in every row.
func (t Table) Column(i int) []float64 {
	col := make([]float64, len(t.Rows))
	for r, row := range t.Rows {
		col[r] = row[i]
	}
	return col
}

// WriteTable writes a delimited table atomically. Cells are already
// formatted by the caller.
func WriteTable(path string, sep rune, header []string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = sep
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return WriteFileAtomic(path, buf.Bytes())
}

// FormatFloat renders a value the way the output tables expect: fixed
// precision with trailing zeros trimmed.
func FormatFloat(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	return trimZeros(s)
}

func trimZeros(s string) string {
	if !strings.ContainsRune(s, '.') {
		return s
	}
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i--
	}
	return s[:i]
}
