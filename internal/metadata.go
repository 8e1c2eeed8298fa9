package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sourcegraph/conc/panics"
)

// Writer reads and writes the capture time stored in one container format.
type Writer interface {
	Name() string
	// ReadCaptureTime returns the stored naive capture time; ok is false
	// when the container holds none.
	ReadCaptureTime(path string) (ts time.Time, ok bool, err error)
	// WriteCaptureTime rewrites the file in place with ts as capture time.
	WriteCaptureTime(path string, ts time.Time) error
}

// Stamp makes the stored capture time at path equal ts. The file is only
// rewritten when the stored value differs.
func Stamp(w Writer, path string, ts time.Time, dryRun bool) (outcome Outcome, err error) {
	var pc panics.Catcher
	pc.Try(func() {
		outcome, err = stamp(w, path, ts, dryRun)
	})
	if rec := pc.Recovered(); rec != nil {
		return OutcomeWriteFailed, fmt.Errorf("%s writer: %w", w.Name(), rec.AsError())
	}
	return outcome, err
}

func stamp(w Writer, path string, ts time.Time, dryRun bool) (Outcome, error) {
	current, ok, err := w.ReadCaptureTime(path)
	if err != nil {
		return OutcomeWriteFailed, err
	}
	if ok && sameSecond(current, ts) {
		return OutcomeAlreadyMatches, nil
	}
	if dryRun {
		return OutcomeWouldUpdate, nil
	}
	if err := w.WriteCaptureTime(path, ts); err != nil {
		return OutcomeWriteFailed, err
	}
	return OutcomeUpdated, nil
}

// WriterSet maps lower-case extensions to writers.
type WriterSet map[string]Writer

// NewWriterSet maps the JPEG extensions to jpegWriter and .png to the PNG writer.
func NewWriterSet(jpegWriter Writer) WriterSet {
	png := NewPNGWriter()
	return WriterSet{
		".jpg":  jpegWriter,
		".jpeg": jpegWriter,
		".png":  png,
	}
}

// OpenWriters builds the writer set selected by cfg. The returned close
// function releases the exiftool process when that backend is used.
func OpenWriters(cfg *Config) (WriterSet, func() error, error) {
	if cfg.JPEGBackend == BackendExifTool {
		et, err := NewExifToolWriter()
		if err != nil {
			return nil, nil, err
		}
		return NewWriterSet(et), et.Close, nil
	}
	return NewWriterSet(NewJPEGWriter(cfg.CreateMissingExif)), func() error { return nil }, nil
}

// For returns the writer for ext, matched case-insensitively.
func (ws WriterSet) For(ext string) (Writer, bool) {
	w, ok := ws[strings.ToLower(ext)]
	return w, ok
}

// checkContainer sniffs the file content and fails when it is not want.
func checkContainer(path, want string) error {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !mtype.Is(want) {
		return fmt.Errorf("%w: found %s, want %s", ErrContainerMismatch, mtype.String(), want)
	}
	return nil
}
