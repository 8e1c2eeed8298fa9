package internal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/barasher/go-exiftool"
)

// ExifToolWriter delegates JPEG metadata to a stay-open exiftool process.
// A single process is shared by all workers; go-exiftool serializes calls.
type ExifToolWriter struct {
	et *exiftool.Exiftool
}

// NewExifToolWriter starts exiftool. It fails when the binary is not on PATH.
func NewExifToolWriter() (*ExifToolWriter, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("failed to start exiftool: %w", err)
	}
	return &ExifToolWriter{et: et}, nil
}

func (w *ExifToolWriter) Name() string { return "exiftool" }

func (w *ExifToolWriter) ReadCaptureTime(path string) (time.Time, bool, error) {
	if err := checkContainer(path, mimeJPEG); err != nil {
		return time.Time{}, false, err
	}
	fms := w.et.ExtractMetadata(path)
	if len(fms) != 1 {
		return time.Time{}, false, fmt.Errorf("exiftool returned %d records for %s", len(fms), path)
	}
	if fms[0].Err != nil {
		return time.Time{}, false, fms[0].Err
	}

	value, err := fms[0].GetString("DateTimeOriginal")
	if err != nil {
		if errors.Is(err, exiftool.ErrKeyNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	ts, err := time.Parse(exifLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse DateTimeOriginal %q: %w", value, err)
	}
	return ts, true, nil
}

func (w *ExifToolWriter) WriteCaptureTime(path string, ts time.Time) error {
	if err := checkContainer(path, mimeJPEG); err != nil {
		return err
	}
	value := ts.Format(exifLayout)
	fm := exiftool.FileMetadata{File: path, Fields: map[string]interface{}{}}
	fm.SetString("DateTimeOriginal", value)
	// exiftool names EXIF DateTimeDigitized (0x9004) CreateDate.
	fm.SetString("CreateDate", value)

	fms := []exiftool.FileMetadata{fm}
	w.et.WriteMetadata(fms)
	if fms[0].Err != nil {
		return fmt.Errorf("exiftool write failed: %w", fms[0].Err)
	}
	return nil
}

// Close stops the exiftool process.
func (w *ExifToolWriter) Close() error {
	return w.et.Close()
}
