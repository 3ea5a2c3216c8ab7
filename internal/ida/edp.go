package ida

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/asfrava/asfrava/internal/iox"
)

// ErrColumnMismatch signals a logic defect: the per-row output columns ended
// the sweep with different lengths.
var ErrColumnMismatch = errors.New("edp column lengths are not equal")

// Status records whether a (record, scale) step intersected the capacity curve.
type Status string

const (
	Intersected    Status = "intersected"
	NotIntersected Status = "not intersected"
)

// EDPRow is one engineering-demand-parameter observation: the spectral
// displacement and acceleration at the performance point for one record at
// one scale, plus the per-damage-state exceedance flags.
type EDPRow struct {
	Sd     float64
	PGA    float64
	SA     float64
	Status Status
	GMR    string
	DS1    int
	DS2    int
	DS3    int
}

// EDPTable is the assembled result of an incremental dynamic analysis sweep.
type EDPTable struct {
	Rows []EDPRow

	DS1Threshold float64
	DS2Threshold float64
	DS3Threshold float64
}

// Header is the column layout of the persisted EDP table.
func (t *EDPTable) Header() []string {
	return []string{"Sd", "PGA", "SA", "Status", "GMR", "ds1", "ds2", "ds3"}
}

// WriteCSV persists the table as a delimited file, values rounded to four
// decimals.
func (t *EDPTable) WriteCSV(path string, sep rune) error {
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = []string{
			iox.FormatFloat(r.Sd, 4),
			iox.FormatFloat(r.PGA, 4),
			iox.FormatFloat(r.SA, 4),
			string(r.Status),
			r.GMR,
			iox.FormatFloat(float64(r.DS1), 0),
			iox.FormatFloat(float64(r.DS2), 0),
			iox.FormatFloat(float64(r.DS3), 0),
		}
	}
	return iox.WriteTable(path, sep, t.Header(), rows)
}

// ReadCSV loads a previously persisted EDP table. Thresholds are not part of
// the file and stay zero.
func ReadCSV(path string, sep rune) (*EDPTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = sep
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: %w", path, iox.ErrEmptyTable)
	}

	t := &EDPTable{Rows: make([]EDPRow, 0, len(records)-1)}
	for i, rec := range records[1:] {
		if len(rec) != 8 {
			return nil, fmt.Errorf("%s row %d: want 8 columns, got %d", path, i+2, len(rec))
		}
		var row EDPRow
		var errs [6]error
		row.Sd, errs[0] = strconv.ParseFloat(rec[0], 64)
		row.PGA, errs[1] = strconv.ParseFloat(rec[1], 64)
		row.SA, errs[2] = strconv.ParseFloat(rec[2], 64)
		row.Status = Status(rec[3])
		row.GMR = rec[4]
		row.DS1, errs[3] = strconv.Atoi(rec[5])
		row.DS2, errs[4] = strconv.Atoi(rec[6])
		row.DS3, errs[5] = strconv.Atoi(rec[7])
		for _, e := range errs {
			if e != nil {
				return nil, fmt.Errorf("%s row %d: %w", path, i+2, e)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Records returns the distinct ground-motion record names in row order.
func (t *EDPTable) Records() []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range t.Rows {
		if !seen[r.GMR] {
			seen[r.GMR] = true
			names = append(names, r.GMR)
		}
	}
	return names
}
