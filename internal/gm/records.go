// Package gm loads ground-motion acceleration histories from a record folder.
package gm

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/asfrava/asfrava/internal/iox"
)

// ErrNoRecords is returned when the record folder holds no eligible files.
var ErrNoRecords = errors.New("no ground-motion records found")

// Record is one ground-motion history: a fixed time step and the acceleration
// series, normalized so the peak acceleration equals one.
type Record struct {
	Name string
	DT   float64
	Acc  []float64
}

// ListRecordFiles returns the eligible record files in dir, sorted by name.
// Eligibility matches the original tool: .txt or .csv, case-insensitive.
func ListRecordFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".txt", ".csv":
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoRecords, dir)
	}
	sort.Strings(files)
	return files, nil
}

// Load reads a single two-column (time, acceleration) record file and
// normalizes its peak acceleration to one.
func Load(dir, name string, sep rune) (Record, error) {
	tab, err := iox.ReadTable(filepath.Join(dir, name), sep)
	if err != nil {
		return Record{}, err
	}
	if len(tab.Rows) < 2 {
		return Record{}, fmt.Errorf("record %s: need at least two samples", name)
	}
	for i, row := range tab.Rows {
		if len(row) < 2 {
			return Record{}, fmt.Errorf("record %s row %d: want two columns", name, i+2)
		}
	}

	dt := math.Abs(tab.Rows[1][0] - tab.Rows[0][0])
	if dt == 0 {
		return Record{}, fmt.Errorf("record %s: zero time step", name)
	}

	acc := tab.Column(1)
	peak := acc[0]
	for _, a := range acc[1:] {
		if a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return Record{}, fmt.Errorf("record %s: peak acceleration is zero", name)
	}
	norm := make([]float64, len(acc))
	for i, a := range acc {
		norm[i] = a / peak
	}
	return Record{Name: name, DT: dt, Acc: norm}, nil
}

// LoadAll loads every eligible record in dir. A file that fails to parse is
// logged and skipped so one bad record never sinks the batch; it is an error
// only when nothing loads.
func LoadAll(dir string, sep rune) ([]Record, error) {
	names, err := ListRecordFiles(dir)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(names))
	for _, name := range names {
		rec, err := Load(dir, name, sep)
		if err != nil {
			log.Warn().Err(err).Str("record", name).Msg("skipping unreadable record")
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: every file in %s failed to load", ErrNoRecords, dir)
	}
	return records, nil
}

// PGA returns the peak ground acceleration the record applies at the given
// scale factor. Records are peak-normalized, so this is the scale itself.
func (r Record) PGA(scale float64) float64 {
	return scale
}
