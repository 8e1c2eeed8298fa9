package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngChunkTypes(t *testing.T, path string) []string {
	t.Helper()
	cs, err := parsePNG(path)
	require.NoError(t, err)
	var types []string
	for _, c := range cs.Chunks() {
		types = append(types, c.Type)
	}
	return types
}

func TestPNGWriter_StampIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Screenshot_20221231-235959.png")
	writeTestPNG(t, path, nil)
	ts := time.Date(2022, 12, 31, 23, 59, 59, 0, time.UTC)
	w := NewPNGWriter()

	_, ok, err := w.ReadCaptureTime(path)
	require.NoError(t, err)
	assert.False(t, ok)

	outcome, err := Stamp(w, path, ts, false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)

	got, ok, err := w.ReadCaptureTime(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(ts))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	outcome, err = Stamp(w, path, ts, false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyMatches, outcome)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPNGWriter_PreservesOtherChunks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Screenshot_20221231-235959.png")
	writeTestPNG(t, path, map[string]string{"Software": "Android"})
	pixels := decodePixels(t, path)

	require.NoError(t, NewPNGWriter().WriteCaptureTime(path, time.Date(2022, 12, 31, 23, 59, 59, 0, time.UTC)))

	assert.Equal(t, pixels, decodePixels(t, path))

	cs, err := parsePNG(path)
	require.NoError(t, err)
	text := PNGText(cs)
	assert.Equal(t, "Android", text["Software"])
	assert.Equal(t, "2022-12-31 23:59:59", text[CreationTimeKey])

	types := pngChunkTypes(t, path)
	assert.Equal(t, "IHDR", types[0])
	assert.Equal(t, "IEND", types[len(types)-1])
}

func TestPNGWriter_ReplacesExistingEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Screenshot_20221231-235959.png")
	writeTestPNG(t, path, map[string]string{CreationTimeKey: "Sat, 01 Jan 2000 10:00:00 GMT"})

	// A value in a foreign layout is treated as absent
	_, ok, err := NewPNGWriter().ReadCaptureTime(path)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, NewPNGWriter().WriteCaptureTime(path, time.Date(2022, 12, 31, 23, 59, 59, 0, time.UTC)))

	count := 0
	cs, err := parsePNG(path)
	require.NoError(t, err)
	for _, c := range cs.Chunks() {
		if key, value, ok := splitText(c); ok && key == CreationTimeKey {
			count++
			assert.Equal(t, "2022-12-31 23:59:59", value)
		}
	}
	assert.Equal(t, 1, count)
}

func TestPNGWriter_ContainerMismatch(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2022, 12, 31, 23, 59, 59, 0, time.UTC)

	corrupt := filepath.Join(dir, "Screenshot_20221231-235959.png")
	writeCorruptFile(t, corrupt)
	outcome, err := Stamp(NewPNGWriter(), corrupt, ts, false)
	assert.Equal(t, OutcomeWriteFailed, outcome)
	assert.ErrorIs(t, err, ErrContainerMismatch)

	jpg := filepath.Join(dir, "Screenshot_20221231-235958.png")
	writeTestJPEG(t, jpg)
	outcome, err = Stamp(NewPNGWriter(), jpg, ts, false)
	assert.Equal(t, OutcomeWriteFailed, outcome)
	assert.ErrorIs(t, err, ErrContainerMismatch)
}

func TestPNGWriter_NormalizesNearMatches(t *testing.T) {
	ts := time.Date(2023, 6, 15, 4, 30, 0, 0, time.UTC)
	stored := []string{
		"2023-06-15 04:30:00.999", // fractional seconds
		"2023-06-15 4:30:00",      // unpadded hour
		" 2023-06-15 04:30:00",
	}

	for _, value := range stored {
		t.Run(value, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "Screenshot_20230615-043000.png")
			writeTestPNG(t, path, map[string]string{CreationTimeKey: value})

			outcome, err := Stamp(NewPNGWriter(), path, ts, false)
			require.NoError(t, err)
			assert.Equal(t, OutcomeUpdated, outcome)

			cs, err := parsePNG(path)
			require.NoError(t, err)
			assert.Equal(t, "2023-06-15 04:30:00", PNGText(cs)[CreationTimeKey])
		})
	}
}

func TestPNGWriter_Truncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Screenshot_20221231-235959.png")
	writeTestPNG(t, path, nil)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Drop the IEND chunk: the signature still sniffs as PNG
	truncated := data[:len(data)-12]
	require.NoError(t, os.WriteFile(path, truncated, 0644))

	outcome, err := Stamp(NewPNGWriter(), path, time.Date(2022, 12, 31, 23, 59, 59, 0, time.UTC), false)
	assert.Equal(t, OutcomeWriteFailed, outcome)
	assert.Error(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, truncated, after)
}
