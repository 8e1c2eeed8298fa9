package internal

import (
	"fmt"
	"time"
)

// Outcome is the closed set of per-file results.
type Outcome int

const (
	OutcomeAlreadyMatches Outcome = iota
	OutcomeUpdated
	OutcomeWouldUpdate
	OutcomeNoDate
	OutcomeUnsupportedConvention
	OutcomeUnsupportedType
	OutcomeInvalidDate
	OutcomeWriteFailed
	OutcomeWorkerFailed
)

// Success reports whether the outcome counts toward the processed tally.
func (o Outcome) Success() bool {
	switch o {
	case OutcomeAlreadyMatches, OutcomeUpdated, OutcomeWouldUpdate:
		return true
	}
	return false
}

func (o Outcome) String() string {
	switch o {
	case OutcomeAlreadyMatches:
		return "already_matches"
	case OutcomeUpdated:
		return "updated"
	case OutcomeWouldUpdate:
		return "would_update"
	case OutcomeNoDate:
		return "no_date"
	case OutcomeUnsupportedConvention:
		return "unsupported_convention"
	case OutcomeUnsupportedType:
		return "unsupported_type"
	case OutcomeInvalidDate:
		return "invalid_date"
	case OutcomeWriteFailed:
		return "write_failed"
	case OutcomeWorkerFailed:
		return "worker_failed"
	default:
		return "unknown"
	}
}

// Result is the single reported outcome of one file.
type Result struct {
	Path       string
	RelPath    string
	Outcome    Outcome
	Convention Convention
	Timestamp  time.Time
	Err        error
}

// Status renders the outcome as the text shown next to the file.
func (r Result) Status() string {
	switch r.Outcome {
	case OutcomeAlreadyMatches:
		return "Already matches"
	case OutcomeUpdated:
		return "Updated"
	case OutcomeWouldUpdate:
		return "Would update to " + r.Timestamp.Format(pngLayout)
	case OutcomeNoDate:
		return "No valid date in filename"
	case OutcomeUnsupportedConvention:
		return "Snapchat filenames unsupported for metadata updates"
	case OutcomeUnsupportedType:
		return "Unsupported file type"
	case OutcomeInvalidDate:
		return fmt.Sprintf("Invalid date in filename: %v", r.Err)
	case OutcomeWriteFailed:
		return fmt.Sprintf("Failed: %v", r.Err)
	case OutcomeWorkerFailed:
		return fmt.Sprintf("Unexpected error: %v", r.Err)
	default:
		return r.Outcome.String()
	}
}

// Failure pairs a relative path with the reason it failed.
type Failure struct {
	RelPath string
	Reason  string
}

// Summary is the final tally of a batch run.
type Summary struct {
	Root      string
	Total     int
	Succeeded int
	Failures  []Failure
	ByOutcome map[Outcome]int
	Errors    *ErrorStats
	Duration  time.Duration
}

func newSummary(root string, total int) *Summary {
	return &Summary{
		Root:      root,
		Total:     total,
		ByOutcome: make(map[Outcome]int),
		Errors:    NewErrorStats(),
	}
}

// add folds one result into the summary. Only the collecting goroutine calls it.
func (s *Summary) add(r Result) {
	s.ByOutcome[r.Outcome]++
	if r.Outcome.Success() {
		s.Succeeded++
		s.Errors.ResetConsecutive()
		return
	}
	s.Failures = append(s.Failures, Failure{RelPath: r.RelPath, Reason: r.Status()})
	s.Errors.Add(CategorizeResult(r))
	s.Errors.Consecutive++
}

// Failed returns the number of failed files.
func (s *Summary) Failed() int {
	return len(s.Failures)
}
