package internal

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func readManifest(t *testing.T, path string) []ManifestEvent {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open manifest: %v", err)
	}
	defer f.Close()

	var events []ManifestEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event ManifestEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			t.Fatalf("Invalid JSON line %q: %v", scanner.Text(), err)
		}
		events = append(events, event)
	}
	return events
}

func TestNewRunSession(t *testing.T) {
	journalDir := filepath.Join(t.TempDir(), "journal")

	session, err := NewRunSession(journalDir, "/photos")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	defer session.Close()

	// Verify session directory created
	if _, err := os.Stat(session.SessionDir); os.IsNotExist(err) {
		t.Errorf("Session directory not created: %s", session.SessionDir)
	}

	// Verify manifest file created
	manifestPath := filepath.Join(session.SessionDir, "manifest.jsonl")
	if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
		t.Errorf("Manifest file not created: %s", manifestPath)
	}

	// Verify session ID format (YYYY-MM-DD-HHMMSS)
	if len(session.ID) != 17 {
		t.Errorf("Session ID wrong length: %s (expected 17 chars)", session.ID)
	}
	if session.Root != "/photos" {
		t.Errorf("Expected root /photos, got %s", session.Root)
	}
}

func TestNewRunSession_Collision(t *testing.T) {
	journalDir := t.TempDir()

	first, err := NewRunSession(journalDir, "/photos")
	if err != nil {
		t.Fatal(err)
	}
	defer first.Close()

	second, err := NewRunSession(journalDir, "/photos")
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	if first.SessionDir == second.SessionDir {
		t.Errorf("Sessions created in the same second must not share a directory")
	}
	// Either the clock ticked or the second one got a suffix
	if !strings.HasPrefix(second.ID, first.ID[:10]) {
		t.Errorf("Unexpected session ID %s after %s", second.ID, first.ID)
	}
}

func TestRunSession_Events(t *testing.T) {
	session, err := NewRunSession(t.TempDir(), "/photos")
	if err != nil {
		t.Fatal(err)
	}

	if err := session.LogSessionStart(3, 8, true); err != nil {
		t.Fatalf("LogSessionStart failed: %v", err)
	}

	updated := Result{
		RelPath:    "PXL_20230615_143000.jpg",
		Outcome:    OutcomeWouldUpdate,
		Convention: ConventionPixel,
		Timestamp:  time.Date(2023, 6, 15, 14, 30, 0, 0, time.UTC),
	}
	failed := Result{
		RelPath:    "IMG_20240315_143022.jpg",
		Outcome:    OutcomeWriteFailed,
		Convention: ConventionCamera,
		Err:        errors.New("failed to parse jpeg segments"),
	}
	for _, r := range []Result{updated, failed} {
		if err := session.LogResult(r); err != nil {
			t.Fatalf("LogResult failed: %v", err)
		}
	}

	summary := newSummary("/photos", 2)
	summary.add(updated)
	summary.add(failed)
	if err := session.LogSessionEnd(summary); err != nil {
		t.Fatalf("LogSessionEnd failed: %v", err)
	}
	session.Close()

	events := readManifest(t, filepath.Join(session.SessionDir, "manifest.jsonl"))
	if len(events) != 4 {
		t.Fatalf("Expected 4 events, got %d", len(events))
	}

	if events[0].Event != "session_start" || !events[0].DryRun || events[0].Workers != 8 {
		t.Errorf("Unexpected start event: %+v", events[0])
	}
	if events[1].Event != "would_update" || events[1].Timestamp != "2023-06-15 14:30:00" {
		t.Errorf("Unexpected result event: %+v", events[1])
	}
	if events[1].Convention != "pixel" {
		t.Errorf("Expected convention pixel, got %s", events[1].Convention)
	}
	if events[2].Event != "failed" || events[2].ErrorCategory != string(ErrorCategoryMetadata) {
		t.Errorf("Unexpected failure event: %+v", events[2])
	}
	if events[2].Error != "failed to parse jpeg segments" {
		t.Errorf("Expected original error text, got %s", events[2].Error)
	}
	end := events[3]
	if end.Event != "session_end" || end.Succeeded != 1 || end.Failed != 1 {
		t.Errorf("Unexpected end event: %+v", end)
	}
	if end.ByOutcome["write_failed"] != 1 || end.ByOutcome["would_update"] != 1 {
		t.Errorf("Unexpected outcome counts: %v", end.ByOutcome)
	}
}
