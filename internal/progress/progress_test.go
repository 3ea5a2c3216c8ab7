package progress

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrinterModes(t *testing.T) {
	var buf bytes.Buffer

	p, err := NewPrinter("plain", &buf)
	require.NoError(t, err)
	assert.IsType(t, &PlainPrinter{}, p)

	p, err = NewPrinter("json", &buf)
	require.NoError(t, err)
	assert.IsType(t, &JSONPrinter{}, p)

	// Auto on a non-file writer falls back to JSON.
	p, err = NewPrinter("auto", &buf)
	require.NoError(t, err)
	assert.IsType(t, &JSONPrinter{}, p)

	_, err = NewPrinter("fancy", &buf)
	assert.Error(t, err)
}

func TestJSONPrinterEvents(t *testing.T) {
	var buf bytes.Buffer
	p := &JSONPrinter{w: &buf}

	p.Start(4)
	p.Step(1, 4)
	p.Complete(1500 * time.Millisecond)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var start map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &start))
	assert.Equal(t, "sweep_start", start["event"])
	assert.Equal(t, float64(4), start["total_steps"])

	var step map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &step))
	assert.Equal(t, float64(1), step["done"])

	var done map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &done))
	assert.Equal(t, float64(1500), done["duration_ms"])
}

func TestPlainPrinterDedupesPercent(t *testing.T) {
	var buf bytes.Buffer
	p := &PlainPrinter{w: &buf}

	p.Start(1000)
	p.Step(1, 1000) // 0%
	p.Step(2, 1000) // still 0%, suppressed
	p.Step(10, 1000)

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "(1/1000)"))
	assert.NotContains(t, out, "(2/1000)")
	assert.Contains(t, out, "(10/1000)")
}

func TestTrackerDeliversAllTicks(t *testing.T) {
	var buf bytes.Buffer
	p := &JSONPrinter{w: &buf}

	tr := NewTracker(3)
	go tr.Drain(p)
	tr.Tick()
	tr.Tick()
	tr.Tick()
	tr.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// start + 3 steps + complete
	require.Len(t, lines, 5)

	var last map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &last))
	assert.Equal(t, float64(3), last["done"])
}
