package iox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTableSemicolon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capacity.csv")
	require.NoError(t, os.WriteFile(path, []byte("Dt(m);Vb(kN)\n0;0\n0.05;500\n0.10;520\n"), 0o644))

	tab, err := ReadTable(path, ';')
	require.NoError(t, err)
	assert.Equal(t, []string{"Dt(m)", "Vb(kN)"}, tab.Header)
	require.Len(t, tab.Rows, 3)
	assert.Equal(t, []float64{0, 0.05, 0.10}, tab.Column(0))
	assert.Equal(t, []float64{0, 500, 520}, tab.Column(1))
}

func TestReadTableCommaAndErrors(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "ok.csv")
	require.NoError(t, os.WriteFile(path, []byte("t,a\n0.0,0.1\n0.01,0.2\n"), 0o644))
	tab, err := ReadTable(path, ',')
	require.NoError(t, err)
	assert.InDelta(t, 0.2, tab.Rows[1][1], 1e-12)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte("t,a\n"), 0o644))
	_, err = ReadTable(empty, ',')
	assert.ErrorIs(t, err, ErrEmptyTable)

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("t,a\n0.0,abc\n"), 0o644))
	_, err = ReadTable(bad, ',')
	assert.Error(t, err)

	_, err = ReadTable(filepath.Join(dir, "missing.csv"), ',')
	assert.Error(t, err)
}

func TestWriteTableRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "edps.csv")
	header := []string{"Sd", "PGA"}
	rows := [][]string{{"0.0123", "0.1"}, {"0.0456", "0.2"}}
	require.NoError(t, WriteTable(path, ';', header, rows))

	tab, err := ReadTable(path, ';')
	require.NoError(t, err)
	assert.Equal(t, header, tab.Header)
	assert.InDelta(t, 0.0456, tab.Rows[1][0], 1e-12)

	// No temp file left behind.
	_, statErr := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(statErr))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "0.0538", FormatFloat(0.05381234, 4))
	assert.Equal(t, "0.1", FormatFloat(0.1, 4))
	assert.Equal(t, "0", FormatFloat(0, 4))
	assert.Equal(t, "520", FormatFloat(520.00001, 4))
}
