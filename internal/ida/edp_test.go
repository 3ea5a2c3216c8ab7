package ida

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *EDPTable {
	return &EDPTable{
		Rows: []EDPRow{
			{Sd: 0.0123, PGA: 0.1, SA: 0.2456, Status: Intersected, GMR: "eq1.csv"},
			{Sd: 0.0388, PGA: 0.2, SA: 0.49, Status: Intersected, GMR: "eq1.csv", DS1: 1},
			{Sd: 0.101, PGA: 0.3, SA: 0.52, Status: NotIntersected, GMR: "eq2.csv", DS1: 1, DS2: 1, DS3: 1},
		},
		DS1Threshold: 0.0375,
		DS2Threshold: 0.0688,
		DS3Threshold: 0.1,
	}
}

func TestEDPTableRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "EDPs_data_capacity.csv")
	require.NoError(t, sampleTable().WriteCSV(path, ';'))

	got, err := ReadCSV(path, ';')
	require.NoError(t, err)
	require.Len(t, got.Rows, 3)
	assert.Equal(t, sampleTable().Rows, got.Rows)

	// Thresholds are not persisted.
	assert.Zero(t, got.DS1Threshold)
}

func TestEDPTableHeaderOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edp.csv")
	require.NoError(t, sampleTable().WriteCSV(path, ';'))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	first := strings.SplitN(string(data), "\n", 2)[0]
	assert.Equal(t, "Sd;PGA;SA;Status;GMR;ds1;ds2;ds3", strings.TrimRight(first, "\r"))
}

func TestReadCSVRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	short := filepath.Join(dir, "short.csv")
	require.NoError(t, os.WriteFile(short, []byte("Sd;PGA\n"), 0o644))
	_, err := ReadCSV(short, ';')
	assert.Error(t, err)

	badNum := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(badNum,
		[]byte("Sd;PGA;SA;Status;GMR;ds1;ds2;ds3\nx;0.1;0.2;intersected;eq1.csv;0;0;0\n"), 0o644))
	_, err = ReadCSV(badNum, ';')
	assert.Error(t, err)

	_, err = ReadCSV(filepath.Join(dir, "missing.csv"), ';')
	assert.Error(t, err)
}

func TestRecordsDistinctInOrder(t *testing.T) {
	assert.Equal(t, []string{"eq1.csv", "eq2.csv"}, sampleTable().Records())
}
