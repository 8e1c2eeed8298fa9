package internal

import (
	"fmt"
	"os"
	"time"
)

// Layouts used for the stored capture time of each container.
const (
	exifLayout = "2006:01:02 15:04:05"
	pngLayout  = "2006-01-02 15:04:05"
)

// getFileModTime fallback to file modification time
func getFileModTime(path string) (time.Time, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return naive(fi.ModTime()), nil
}

// naive keeps the local wall clock of t, truncated to whole seconds, and
// drops the offset. UTC is only the carrier for the wall-clock fields.
func naive(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// civil builds a naive timestamp and rejects values time.Date would
// normalize (month 13, February 30, hour 24) as well as year 0.
func civil(year, month, day, hour, min, sec int) (time.Time, error) {
	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
	if year < 1 || t.Year() != year || int(t.Month()) != month || t.Day() != day ||
		t.Hour() != hour || t.Minute() != min || t.Second() != sec {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d %02d:%02d:%02d",
			ErrInvalidDate, year, month, day, hour, min, sec)
	}
	return t, nil
}

// sameSecond reports whether two naive timestamps share the same wall clock.
func sameSecond(a, b time.Time) bool {
	return a.Format(pngLayout) == b.Format(pngLayout)
}
