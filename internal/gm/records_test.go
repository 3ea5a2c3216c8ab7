package gm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRecord(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestListRecordFiles(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "eq_b.TXT", "t;a\n0;0.1\n0.01;0.2\n")
	writeRecord(t, dir, "eq_a.csv", "t;a\n0;0.1\n0.01;0.2\n")
	writeRecord(t, dir, "notes.md", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	files, err := ListRecordFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"eq_a.csv", "eq_b.TXT"}, files)
}

func TestListRecordFilesEmpty(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "readme.md", "nothing to see")
	_, err := ListRecordFiles(dir)
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestLoadNormalizesPeak(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "eq.csv", "Time;Acc\n0;0.5\n0.02;2.0\n0.04;-1.0\n0.06;1.0\n")

	rec, err := Load(dir, "eq.csv", ';')
	require.NoError(t, err)
	assert.InDelta(t, 0.02, rec.DT, 1e-12)
	require.Len(t, rec.Acc, 4)
	assert.InDelta(t, 0.25, rec.Acc[0], 1e-12)
	assert.InDelta(t, 1.0, rec.Acc[1], 1e-12)
	assert.InDelta(t, -0.5, rec.Acc[2], 1e-12)

	assert.InDelta(t, 0.3, rec.PGA(0.3), 1e-12)
}

func TestLoadAllSkipsMalformedRecords(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "bad.csv", "t;a\n0;not-a-number\n0.01;1\n")
	writeRecord(t, dir, "good.csv", "t;a\n0;0.5\n0.01;1.0\n")

	records, err := LoadAll(dir, ';')
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "good.csv", records[0].Name)
}

func TestLoadAllAllMalformed(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "bad1.csv", "t;a\n0;x\n0.01;1\n")
	writeRecord(t, dir, "bad2.csv", "t;a\n0;1\n")

	_, err := LoadAll(dir, ';')
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	writeRecord(t, dir, "short.csv", "t;a\n0;1\n")
	_, err := Load(dir, "short.csv", ';')
	assert.Error(t, err)

	writeRecord(t, dir, "zerodt.csv", "t;a\n0;1\n0;2\n")
	_, err = Load(dir, "zerodt.csv", ';')
	assert.Error(t, err)

	writeRecord(t, dir, "flat.csv", "t;a\n0;0\n0.01;0\n")
	_, err = Load(dir, "flat.csv", ';')
	assert.Error(t, err)
}
