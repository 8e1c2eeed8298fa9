package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RunSession records one batch run as an append-only JSONL manifest.
type RunSession struct {
	ID           string   // Session ID (timestamp: 2025-01-15-103045)
	SessionDir   string   // Full path to session directory
	ManifestFile *os.File // Open file handle for manifest.jsonl
	Root         string   // Directory being processed
}

// ManifestEvent represents a single event in the manifest log
type ManifestEvent struct {
	Event      string `json:"event"`
	Ts         string `json:"ts"`
	Src        string `json:"src,omitempty"`
	Convention string `json:"convention,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`
	Status     string `json:"status,omitempty"`

	// Failure details
	Error           string `json:"error,omitempty"`
	ErrorCategory   string `json:"error_category,omitempty"`
	ErrorSeverity   string `json:"error_severity,omitempty"`
	ErrorSuggestion string `json:"error_suggestion,omitempty"`

	// Session start/end fields
	Root       string         `json:"root,omitempty"`
	TotalFiles int            `json:"total_files,omitempty"`
	Workers    int            `json:"workers,omitempty"`
	DryRun     bool           `json:"dry_run,omitempty"`
	Succeeded  int            `json:"succeeded,omitempty"`
	Failed     int            `json:"failed,omitempty"`
	ByOutcome  map[string]int `json:"by_outcome,omitempty"`
	DurationMs int64          `json:"duration_ms,omitempty"`
}

// NewRunSession creates <journalDir>/<session id>/manifest.jsonl
func NewRunSession(journalDir, root string) (*RunSession, error) {
	if err := os.MkdirAll(journalDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	base := time.Now().Format("2006-01-02-150405")
	sessionID := base
	sessionDir := filepath.Join(journalDir, sessionID)
	for i := 2; ; i++ {
		err := os.Mkdir(sessionDir, 0755)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to create session directory: %w", err)
		}
		sessionID = fmt.Sprintf("%s_%d", base, i)
		sessionDir = filepath.Join(journalDir, sessionID)
	}

	manifestPath := filepath.Join(sessionDir, "manifest.jsonl")
	manifestFile, err := os.OpenFile(manifestPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create manifest file: %w", err)
	}

	return &RunSession{
		ID:           sessionID,
		SessionDir:   sessionDir,
		ManifestFile: manifestFile,
		Root:         root,
	}, nil
}

// LogSessionStart writes the session start event to manifest
func (s *RunSession) LogSessionStart(totalFiles, workers int, dryRun bool) error {
	return s.writeEvent(ManifestEvent{
		Event:      "session_start",
		Ts:         time.Now().UTC().Format(time.RFC3339),
		Root:       s.Root,
		TotalFiles: totalFiles,
		Workers:    workers,
		DryRun:     dryRun,
	})
}

// LogResult writes one event per processed file.
func (s *RunSession) LogResult(r Result) error {
	event := ManifestEvent{
		Event:      r.Outcome.String(),
		Ts:         time.Now().UTC().Format(time.RFC3339),
		Src:        r.RelPath,
		Convention: string(r.Convention),
		Status:     r.Status(),
	}
	if !r.Timestamp.IsZero() {
		event.Timestamp = r.Timestamp.Format(pngLayout)
	}
	if procErr := CategorizeResult(r); procErr != nil {
		event.Event = "failed"
		event.Error = procErr.OriginalErr.Error()
		event.ErrorCategory = string(procErr.Category)
		event.ErrorSeverity = string(procErr.Severity)
		event.ErrorSuggestion = procErr.Suggestion
	}
	return s.writeEvent(event)
}

// LogSessionEnd writes the session end event to manifest
func (s *RunSession) LogSessionEnd(summary *Summary) error {
	byOutcome := make(map[string]int, len(summary.ByOutcome))
	for o, n := range summary.ByOutcome {
		byOutcome[o.String()] = n
	}
	return s.writeEvent(ManifestEvent{
		Event:      "session_end",
		Ts:         time.Now().UTC().Format(time.RFC3339),
		TotalFiles: summary.Total,
		Succeeded:  summary.Succeeded,
		Failed:     summary.Failed(),
		ByOutcome:  byOutcome,
		DurationMs: summary.Duration.Milliseconds(),
	})
}

// Close closes the manifest file and session
func (s *RunSession) Close() error {
	if s.ManifestFile != nil {
		return s.ManifestFile.Close()
	}
	return nil
}

// writeEvent writes a manifest event as a JSON line
func (s *RunSession) writeEvent(event ManifestEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := s.ManifestFile.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write to manifest: %w", err)
	}

	// Flush to ensure data is written
	return s.ManifestFile.Sync()
}
