package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"syscall"
)

var (
	// ErrInvalidRoot is returned when the batch root is missing or not a directory.
	ErrInvalidRoot = errors.New("invalid folder path")
	// ErrInvalidDate marks filename digits that do not form a calendar date.
	ErrInvalidDate = errors.New("invalid calendar date")
	// ErrNoExif is returned when a JPEG has no EXIF segment and creating one is disabled.
	ErrNoExif = errors.New("no exif segment")
	// ErrContainerMismatch is returned when the file content does not match its extension.
	ErrContainerMismatch = errors.New("container does not match extension")
)

// ErrorCategory represents the type of error encountered
type ErrorCategory string

const (
	ErrorCategoryNoMatch     ErrorCategory = "no_match"               // Filename matches no convention
	ErrorCategoryConvention  ErrorCategory = "unsupported_convention" // Known but unsupported convention
	ErrorCategoryUnsupported ErrorCategory = "unsupported_format"     // Extension has no writer
	ErrorCategoryDate        ErrorCategory = "invalid_date"           // Digits are not a calendar date
	ErrorCategoryIO          ErrorCategory = "io_error"               // File system, permissions, disk space
	ErrorCategoryMetadata    ErrorCategory = "metadata_error"         // EXIF/PNG decode or encode failed
	ErrorCategoryWorker      ErrorCategory = "worker_error"           // Panic escaped a task
)

// ErrorSeverity indicates how critical the error is
type ErrorSeverity string

const (
	ErrorSeverityCritical ErrorSeverity = "critical" // System-level issues (disk full, permissions)
	ErrorSeverityError    ErrorSeverity = "error"    // File-level issues (corruption, unreadable)
	ErrorSeverityWarning  ErrorSeverity = "warning"  // Nothing to write for this file
)

// ProcessError represents a categorized failure of one file
type ProcessError struct {
	FilePath    string
	Category    ErrorCategory
	Severity    ErrorSeverity
	OriginalErr error
	Suggestion  string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("[%s/%s] %s: %v", e.Severity, e.Category, e.FilePath, e.OriginalErr)
}

func (e *ProcessError) Unwrap() error {
	return e.OriginalErr
}

// CategorizeResult classifies a failed result by outcome and, for write
// failures, by the wrapped cause.
func CategorizeResult(r Result) *ProcessError {
	if r.Outcome.Success() {
		return nil
	}

	procErr := &ProcessError{
		FilePath:    r.RelPath,
		OriginalErr: r.Err,
	}
	if procErr.OriginalErr == nil {
		procErr.OriginalErr = errors.New(r.Status())
	}

	switch r.Outcome {
	case OutcomeNoDate:
		procErr.Category = ErrorCategoryNoMatch
		procErr.Severity = ErrorSeverityWarning
		procErr.Suggestion = "Filename carries no recognized date - rename or tag manually"

	case OutcomeUnsupportedConvention:
		procErr.Category = ErrorCategoryConvention
		procErr.Severity = ErrorSeverityWarning
		procErr.Suggestion = "Snapchat exports carry no capture time in the name"

	case OutcomeUnsupportedType:
		procErr.Category = ErrorCategoryUnsupported
		procErr.Severity = ErrorSeverityWarning
		procErr.Suggestion = "Only JPEG and PNG files can be updated"

	case OutcomeInvalidDate:
		procErr.Category = ErrorCategoryDate
		procErr.Severity = ErrorSeverityWarning
		procErr.Suggestion = "Filename digits do not form a valid date - check the name"

	case OutcomeWorkerFailed:
		procErr.Category = ErrorCategoryWorker
		procErr.Severity = ErrorSeverityError
		procErr.Suggestion = "Unexpected error - check logs for details"

	default:
		categorizeWriteError(procErr, r.Err)
	}

	return procErr
}

func categorizeWriteError(procErr *ProcessError, err error) {
	switch {
	case errors.Is(err, syscall.ENOSPC):
		procErr.Category = ErrorCategoryIO
		procErr.Severity = ErrorSeverityCritical
		procErr.Suggestion = "Free up disk space and rerun - files may be partially written"

	case errors.Is(err, fs.ErrPermission), errors.Is(err, syscall.EROFS):
		procErr.Category = ErrorCategoryIO
		procErr.Severity = ErrorSeverityCritical
		procErr.Suggestion = "Check write permissions on the image files and their folders"

	case errors.Is(err, fs.ErrNotExist):
		procErr.Category = ErrorCategoryIO
		procErr.Severity = ErrorSeverityError
		procErr.Suggestion = "File disappeared during the run - check if an external drive disconnected"

	case errors.Is(err, ErrContainerMismatch):
		procErr.Category = ErrorCategoryMetadata
		procErr.Severity = ErrorSeverityError
		procErr.Suggestion = "File content does not match its extension - the file may be corrupt or misnamed"

	case errors.Is(err, ErrNoExif):
		procErr.Category = ErrorCategoryMetadata
		procErr.Severity = ErrorSeverityError
		procErr.Suggestion = "Rerun with --create-exif (or create_missing_exif = true) to add an EXIF block to stripped images"

	default:
		procErr.Category = ErrorCategoryMetadata
		procErr.Severity = ErrorSeverityError
		procErr.Suggestion = "Metadata could not be read or written - try the --exiftool backend"
	}
}

// ErrorStats tracks error statistics during a run
type ErrorStats struct {
	Total       int
	Critical    int
	Errors      int
	Warnings    int
	ByCategory  map[ErrorCategory]int
	LastErrors  []*ProcessError // Last 5 errors for quick diagnosis
	Consecutive int
}

func NewErrorStats() *ErrorStats {
	return &ErrorStats{
		ByCategory: make(map[ErrorCategory]int),
		LastErrors: make([]*ProcessError, 0, 5),
	}
}

func (s *ErrorStats) Add(err *ProcessError) {
	if err == nil {
		return
	}
	s.Total++
	s.ByCategory[err.Category]++

	switch err.Severity {
	case ErrorSeverityCritical:
		s.Critical++
	case ErrorSeverityError:
		s.Errors++
	case ErrorSeverityWarning:
		s.Warnings++
	}

	if len(s.LastErrors) >= 5 {
		s.LastErrors = s.LastErrors[1:]
	}
	s.LastErrors = append(s.LastErrors, err)
}

func (s *ErrorStats) ResetConsecutive() {
	s.Consecutive = 0
}

// GenerateReport creates a human-readable error report
func (s *ErrorStats) GenerateReport() string {
	var report strings.Builder

	fmt.Fprintf(&report, "Run encountered %d failures:\n\n", s.Total)

	if s.Critical > 0 {
		fmt.Fprintf(&report, "  Critical: %d (system-level issues)\n", s.Critical)
	}
	if s.Errors > 0 {
		fmt.Fprintf(&report, "  Errors:   %d (file-level issues)\n", s.Errors)
	}
	if s.Warnings > 0 {
		fmt.Fprintf(&report, "  Warnings: %d (nothing to write)\n", s.Warnings)
	}

	report.WriteString("\nFailure categories:\n")
	cats := make([]string, 0, len(s.ByCategory))
	for cat := range s.ByCategory {
		cats = append(cats, string(cat))
	}
	sort.Strings(cats)
	for _, cat := range cats {
		fmt.Fprintf(&report, "  - %s: %d\n", cat, s.ByCategory[ErrorCategory(cat)])
	}

	report.WriteString("\nRecent failures:\n")
	for i, err := range s.LastErrors {
		fmt.Fprintf(&report, "\n%d. %s\n", i+1, err.FilePath)
		fmt.Fprintf(&report, "   Category: %s | Severity: %s\n", err.Category, err.Severity)
		fmt.Fprintf(&report, "   Error: %v\n", err.OriginalErr)
		if err.Suggestion != "" {
			fmt.Fprintf(&report, "   Suggestion: %s\n", err.Suggestion)
		}
	}

	report.WriteString("\n")
	report.WriteString(s.generateSuggestions())

	return report.String()
}

func (s *ErrorStats) generateSuggestions() string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggested next steps:\n")

	if s.ByCategory[ErrorCategoryIO] > 0 {
		suggestions.WriteString("  - Check disk space and permissions\n")
	}
	if s.ByCategory[ErrorCategoryMetadata] > s.Total/2 {
		suggestions.WriteString("  - Many metadata errors - consider using --exiftool for better compatibility\n")
	}
	if s.ByCategory[ErrorCategoryNoMatch] > 0 {
		suggestions.WriteString("  - Run `backdate scan` to see which filename conventions were recognized\n")
	}
	if s.Consecutive >= 5 {
		suggestions.WriteString("  - Multiple consecutive failures suggest a systemic issue - check system resources\n")
	}

	suggestions.WriteString("  - Check the run journal for the full per-file log\n")

	return suggestions.String()
}
