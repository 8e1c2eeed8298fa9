package internal

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	pngstructure "github.com/dsoprea/go-png-image-structure/v2"
	"github.com/stretchr/testify/require"
)

// createTestImage creates a test image with a simple gradient pattern
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / width),
				G: uint8((y * 255) / height),
				B: uint8((x + y) % 255),
				A: 255,
			})
		}
	}
	return img
}

// writeTestJPEG writes a JPEG without any EXIF segment.
func writeTestJPEG(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, createTestImage(64, 48), &jpeg.Options{Quality: 90}))
}

// writeTestPNG writes a PNG carrying the given tEXt entries.
func writeTestPNG(t *testing.T, path string, text map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, createTestImage(64, 48)))
	if len(text) == 0 {
		require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
		return
	}

	mc, err := pngstructure.NewPngMediaParser().ParseBytes(buf.Bytes())
	require.NoError(t, err)
	cs := mc.(*pngstructure.ChunkSlice)

	var chunks []*pngstructure.Chunk
	for _, c := range cs.Chunks() {
		if c.Type == "IEND" {
			for k, v := range text {
				chunks = append(chunks, newTextChunk(k, v))
			}
		}
		chunks = append(chunks, c)
	}
	var out bytes.Buffer
	require.NoError(t, pngstructure.NewChunkSlice(chunks).WriteTo(&out))
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0644))
}

// writeCorruptFile writes bytes that are no image container at all.
func writeCorruptFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("this is not an image, just some text bytes"), 0644))
}

// decodePixels returns the decoded RGBA pixels of an image file.
func decodePixels(t *testing.T, path string) []uint8 {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, _, err := image.Decode(f)
	require.NoError(t, err)

	b := img.Bounds()
	rgba := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}
	return rgba.Pix
}
