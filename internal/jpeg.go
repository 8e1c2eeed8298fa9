package internal

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	exifbuild "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
	dlog "github.com/dsoprea/go-logging"
	"github.com/rwcarlsen/goexif/exif"
)

const (
	mimeJPEG    = "image/jpeg"
	exifIfdPath = "IFD/Exif"
)

// JPEGWriter stores the capture time in the EXIF DateTimeOriginal and
// DateTimeDigitized tags, leaving every other segment untouched.
type JPEGWriter struct {
	// CreateMissingExif adds an EXIF segment to JPEGs that have none;
	// otherwise such files fail with ErrNoExif.
	CreateMissingExif bool
}

func NewJPEGWriter(createMissingExif bool) *JPEGWriter {
	return &JPEGWriter{CreateMissingExif: createMissingExif}
}

func (w *JPEGWriter) Name() string { return "jpeg" }

func (w *JPEGWriter) ReadCaptureTime(path string) (time.Time, bool, error) {
	if err := checkContainer(path, mimeJPEG); err != nil {
		return time.Time{}, false, err
	}
	sl, err := parseJPEG(path)
	if err != nil {
		return time.Time{}, false, err
	}
	if _, _, err := sl.FindExif(); err != nil {
		// Stripped JPEGs fail at read time unless creation is enabled.
		if isNoExif(err) && w.CreateMissingExif {
			return time.Time{}, false, nil
		}
		if isNoExif(err) {
			return time.Time{}, false, ErrNoExif
		}
		return time.Time{}, false, fmt.Errorf("failed to locate exif: %w", err)
	}
	return getExifDateOriginal(path)
}

func (w *JPEGWriter) WriteCaptureTime(path string, ts time.Time) error {
	if err := checkContainer(path, mimeJPEG); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	sl, err := parseJPEG(path)
	if err != nil {
		return err
	}

	rootIb, err := w.exifBuilder(sl)
	if err != nil {
		return err
	}
	exifIb, err := exifbuild.GetOrCreateIbFromRootIb(rootIb, exifIfdPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", exifIfdPath, err)
	}

	value := ts.Format(exifLayout)
	for _, tag := range []string{"DateTimeOriginal", "DateTimeDigitized"} {
		if err := exifIb.SetStandardWithName(tag, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", tag, err)
		}
	}

	if err := sl.SetExif(rootIb); err != nil {
		return fmt.Errorf("failed to encode exif: %w", err)
	}

	var buf bytes.Buffer
	if err := sl.Write(&buf); err != nil {
		return fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), info.Mode().Perm())
}

// exifBuilder returns a builder seeded with the existing EXIF tags, or an
// empty one when the file has none and creation is allowed.
func (w *JPEGWriter) exifBuilder(sl *jpegstructure.SegmentList) (*exifbuild.IfdBuilder, error) {
	_, _, err := sl.FindExif()
	if err == nil {
		rootIb, err := sl.ConstructExifBuilder()
		if err != nil {
			return nil, fmt.Errorf("failed to decode exif: %w", err)
		}
		return rootIb, nil
	}
	if !isNoExif(err) {
		return nil, fmt.Errorf("failed to locate exif: %w", err)
	}
	if !w.CreateMissingExif {
		return nil, ErrNoExif
	}

	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return nil, fmt.Errorf("failed to load ifd mapping: %w", err)
	}
	ti := exifbuild.NewTagIndex()
	return exifbuild.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder), nil
}

func parseJPEG(path string) (*jpegstructure.SegmentList, error) {
	jmp := jpegstructure.NewJpegMediaParser()
	mc, err := jmp.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jpeg segments: %w", err)
	}
	sl, ok := mc.(*jpegstructure.SegmentList)
	if !ok {
		return nil, fmt.Errorf("unexpected jpeg media context %T", mc)
	}
	return sl, nil
}

func isNoExif(err error) bool {
	return errors.Is(err, exifbuild.ErrNoExif) || dlog.Is(err, exifbuild.ErrNoExif)
}

// getExifDateOriginal extracts the DateTimeOriginal from EXIF metadata
func getExifDateOriginal(path string) (time.Time, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return time.Time{}, false, fmt.Errorf("failed to decode exif: %w", err)
	}

	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		if exif.IsTagNotPresentError(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}

	dateStr, err := tag.StringVal()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read DateTimeOriginal: %w", err)
	}

	t, err := time.Parse(exifLayout, strings.TrimRight(dateStr, "\x00 "))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse DateTimeOriginal %q: %w", dateStr, err)
	}
	return t, true, nil
}
