package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// maxListed caps the unmatched and invalid name lists in a census.
const maxListed = 20

// Census summarizes which filename conventions a tree follows, without
// touching any file.
type Census struct {
	FolderPath   string             `json:"folder_path"`
	TotalFiles   int                `json:"total_files"`
	TotalSize    int64              `json:"total_size_bytes"`
	Inferred     int                `json:"inferred"`
	ByConvention map[Convention]int `json:"by_convention"`
	ByExtension  map[string]int     `json:"by_extension"`
	DateRange    *DateRange         `json:"date_range,omitempty"`
	Unmatched    []string           `json:"unmatched,omitempty"`
	InvalidDates []string           `json:"invalid_dates,omitempty"`
	ScanDuration time.Duration      `json:"scan_duration"`
}

type DateRange struct {
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

// TakeCensus runs inference over every image under root.
func TakeCensus(root string, exts []string) (*Census, error) {
	abs, err := checkRoot(root)
	if err != nil {
		return nil, err
	}
	started := time.Now()

	files, err := ScanImageFiles(abs, exts, nil)
	if err != nil {
		return nil, err
	}

	c := &Census{
		FolderPath:   abs,
		ByConvention: make(map[Convention]int),
		ByExtension:  make(map[string]int),
	}
	for _, path := range files {
		c.TotalFiles++
		if info, err := os.Stat(path); err == nil {
			c.TotalSize += info.Size()
		}
		c.ByExtension[strings.ToLower(filepath.Ext(path))]++

		rel, _ := filepath.Rel(abs, path)
		inf, err := InferTimestamp(filepath.Base(path), path)
		c.ByConvention[inf.Convention]++
		switch {
		case err != nil:
			c.InvalidDates = appendCapped(c.InvalidDates, rel)
		case inf.Found():
			c.Inferred++
			c.observe(inf.Time)
		case inf.Convention == ConventionNone:
			c.Unmatched = appendCapped(c.Unmatched, rel)
		}
	}

	c.ScanDuration = time.Since(started)
	return c, nil
}

func (c *Census) observe(ts time.Time) {
	if c.DateRange == nil {
		c.DateRange = &DateRange{Earliest: ts, Latest: ts}
		return
	}
	if ts.Before(c.DateRange.Earliest) {
		c.DateRange.Earliest = ts
	}
	if ts.After(c.DateRange.Latest) {
		c.DateRange.Latest = ts
	}
}

func appendCapped(list []string, s string) []string {
	if len(list) >= maxListed {
		return list
	}
	return append(list, s)
}

// DisplayCensus writes the census as a table or as JSON.
func DisplayCensus(w io.Writer, c *Census, format string) error {
	if format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(c)
	}
	return displayCensusTable(w, c)
}

func displayCensusTable(w io.Writer, c *Census) error {
	fmt.Fprintf(w, "=== backdate scan: %s ===\n\n", c.FolderPath)
	fmt.Fprintf(w, "Overview:\n")
	fmt.Fprintf(w, "  - %s image files (%s)\n", humanize.Comma(int64(c.TotalFiles)), humanize.Bytes(uint64(c.TotalSize)))
	fmt.Fprintf(w, "  - %s with an inferable capture time\n", humanize.Comma(int64(c.Inferred)))
	fmt.Fprintf(w, "  - Scan completed in %v\n\n", c.ScanDuration.Round(time.Millisecond))

	fmt.Fprintf(w, "Conventions:\n")
	type row struct {
		name  string
		count int
	}
	var rows []row
	for conv, n := range c.ByConvention {
		rows = append(rows, row{string(conv), n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].name < rows[j].name
	})
	for _, r := range rows {
		fmt.Fprintf(w, "  %-12s %8s  %3d%%\n", r.name, humanize.Comma(int64(r.count)), percentage(r.count, c.TotalFiles))
	}

	fmt.Fprintf(w, "\nExtensions:\n")
	exts := make([]string, 0, len(c.ByExtension))
	for ext := range c.ByExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		fmt.Fprintf(w, "  %-12s %8s\n", ext, humanize.Comma(int64(c.ByExtension[ext])))
	}

	if c.DateRange != nil {
		fmt.Fprintf(w, "\nDate range: %s to %s\n", c.DateRange.Earliest.Format(pngLayout), c.DateRange.Latest.Format(pngLayout))
	}
	if len(c.InvalidDates) > 0 {
		fmt.Fprintf(w, "\nInvalid dates in filename:\n")
		for _, name := range c.InvalidDates {
			fmt.Fprintf(w, "  - %s\n", name)
		}
	}
	if len(c.Unmatched) > 0 {
		fmt.Fprintf(w, "\nUnrecognized names (first %d):\n", maxListed)
		for _, name := range c.Unmatched {
			fmt.Fprintf(w, "  - %s\n", name)
		}
	}
	return nil
}

func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return (part * 100) / total
}
