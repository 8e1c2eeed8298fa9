package internal

import (
	"bytes"
	"fmt"
	"os"
	"time"

	pngstructure "github.com/dsoprea/go-png-image-structure/v2"
)

const (
	mimePNG = "image/png"

	// CreationTimeKey is the tEXt keyword holding the capture time.
	CreationTimeKey = "Creation Time"
)

// PNGWriter stores the capture time in a tEXt chunk. Every other chunk,
// including other text entries and IDAT, is written back unchanged.
type PNGWriter struct{}

func NewPNGWriter() *PNGWriter {
	return &PNGWriter{}
}

func (w *PNGWriter) Name() string { return "png" }

func (w *PNGWriter) ReadCaptureTime(path string) (time.Time, bool, error) {
	if err := checkContainer(path, mimePNG); err != nil {
		return time.Time{}, false, err
	}
	cs, err := parsePNG(path)
	if err != nil {
		return time.Time{}, false, err
	}
	value, ok := PNGText(cs)[CreationTimeKey]
	if !ok {
		return time.Time{}, false, nil
	}
	// Only the exact text we write counts; anything else gets overwritten.
	ts, err := time.Parse(pngLayout, value)
	if err != nil || ts.Format(pngLayout) != value {
		return time.Time{}, false, nil
	}
	return ts, true, nil
}

func (w *PNGWriter) WriteCaptureTime(path string, ts time.Time) error {
	if err := checkContainer(path, mimePNG); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	cs, err := parsePNG(path)
	if err != nil {
		return err
	}

	chunk := newTextChunk(CreationTimeKey, ts.Format(pngLayout))
	chunks := make([]*pngstructure.Chunk, 0, len(cs.Chunks())+1)
	placed := false
	for _, c := range cs.Chunks() {
		if key, _, ok := splitText(c); ok && key == CreationTimeKey {
			if !placed {
				chunks = append(chunks, chunk)
				placed = true
			}
			continue
		}
		if c.Type == "IEND" && !placed {
			chunks = append(chunks, chunk)
			placed = true
		}
		chunks = append(chunks, c)
	}
	if !placed {
		return fmt.Errorf("failed to place %s: png has no IEND chunk", CreationTimeKey)
	}

	var buf bytes.Buffer
	if err := pngstructure.NewChunkSlice(chunks).WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), info.Mode().Perm())
}

// PNGText returns the tEXt entries of a parsed PNG. For repeated keys the
// first entry wins.
func PNGText(cs *pngstructure.ChunkSlice) map[string]string {
	text := make(map[string]string)
	for _, c := range cs.Chunks() {
		key, value, ok := splitText(c)
		if !ok {
			continue
		}
		if _, seen := text[key]; !seen {
			text[key] = value
		}
	}
	return text
}

func parsePNG(path string) (*pngstructure.ChunkSlice, error) {
	pmp := pngstructure.NewPngMediaParser()
	mc, err := pmp.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse png chunks: %w", err)
	}
	cs, ok := mc.(*pngstructure.ChunkSlice)
	if !ok {
		return nil, fmt.Errorf("unexpected png media context %T", mc)
	}
	return cs, nil
}

// splitText decodes a tEXt chunk: keyword, NUL, Latin-1 text.
func splitText(c *pngstructure.Chunk) (key, value string, ok bool) {
	if c.Type != "tEXt" {
		return "", "", false
	}
	i := bytes.IndexByte(c.Data, 0)
	if i <= 0 {
		return "", "", false
	}
	return string(c.Data[:i]), string(c.Data[i+1:]), true
}

func newTextChunk(key, value string) *pngstructure.Chunk {
	data := make([]byte, 0, len(key)+1+len(value))
	data = append(data, key...)
	data = append(data, 0)
	data = append(data, value...)

	c := &pngstructure.Chunk{
		Type:   "tEXt",
		Length: uint32(len(data)),
		Data:   data,
	}
	c.UpdateCrc32()
	return c
}
