package ops

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestScanRecordsVersions(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()

	path := writeFile(t, dir, "f.txt", "line1\nline2\n")
	if _, err := Track(ctx, database, testConfig(), TrackInput{Path: path}); err != nil {
		t.Fatalf("Track failed: %v", err)
	}

	out, err := Scan(ctx, database, testConfig(), ScanInput{})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(out.Changed) != 1 || out.Changed[0].Version != 1 {
		t.Fatalf("first scan Changed = %+v, want one v1", out.Changed)
	}

	// Unchanged content: no new version.
	out, err = Scan(ctx, database, testConfig(), ScanInput{})
	if err != nil {
		t.Fatalf("second Scan failed: %v", err)
	}
	if len(out.Changed) != 0 {
		t.Errorf("scan of unchanged file Changed = %+v, want none", out.Changed)
	}

	// Modified content: v2.
	writeFile(t, dir, "f.txt", "line1\nline2X\n")
	out, err = Scan(ctx, database, testConfig(), ScanInput{})
	if err != nil {
		t.Fatalf("third Scan failed: %v", err)
	}
	if len(out.Changed) != 1 || out.Changed[0].Version != 2 {
		t.Errorf("scan after edit Changed = %+v, want one v2", out.Changed)
	}
}

func TestScanSkipsOversizeFile(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()

	path := writeFile(t, dir, "big.txt", strings.Repeat("x", 100)+"\n")
	if _, err := Track(ctx, database, testConfig(), TrackInput{Path: path}); err != nil {
		t.Fatalf("Track failed: %v", err)
	}

	cfg := testConfig()
	cfg.MaxFileBytes = 10

	out, err := Scan(ctx, database, cfg, ScanInput{})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(out.Changed) != 0 {
		t.Errorf("oversize file versioned: %+v", out.Changed)
	}
	if len(out.Skipped) != 1 || out.Skipped[0].Path != path {
		t.Fatalf("Skipped = %+v, want the oversize file", out.Skipped)
	}
	if !strings.Contains(out.Skipped[0].Reason, "exceeds") {
		t.Errorf("skip reason = %q", out.Skipped[0].Reason)
	}
}

func TestScanSkipsFileTurnedBinary(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()

	path := writeFile(t, dir, "f.txt", "text\n")
	if _, err := Track(ctx, database, testConfig(), TrackInput{Path: path}); err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if _, err := Scan(ctx, database, testConfig(), ScanInput{}); err != nil {
		t.Fatalf("first Scan failed: %v", err)
	}

	// The tracked file becomes binary; the scan skips it cleanly instead
	// of recording garbage.
	if err := os.WriteFile(path, []byte{0, 1, 2, 3}, 0644); err != nil {
		t.Fatalf("write binary failed: %v", err)
	}

	out, err := Scan(ctx, database, testConfig(), ScanInput{})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(out.Changed) != 0 {
		t.Errorf("binary content versioned: %+v", out.Changed)
	}
	if len(out.Skipped) != 1 {
		t.Fatalf("Skipped = %+v, want one entry", out.Skipped)
	}

	// The chain still ends at the last good version.
	hist, err := History(ctx, database, HistoryInput{Path: path})
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(hist.Versions) != 1 {
		t.Errorf("history has %d versions, want 1", len(hist.Versions))
	}
}

func TestScanIgnoresDeletedFile(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()

	path := writeFile(t, dir, "f.txt", "x\n")
	if _, err := Track(ctx, database, testConfig(), TrackInput{Path: path}); err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	out, err := Scan(ctx, database, testConfig(), ScanInput{})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(out.Changed) != 0 || len(out.Skipped) != 0 {
		t.Errorf("deleted file produced output: %+v", out)
	}
}

func TestScanDirectoryPicksUpNewFiles(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()

	writeFile(t, dir, "a.txt", "a\n")
	if _, err := Track(ctx, database, testConfig(), TrackInput{Path: dir}); err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if _, err := Scan(ctx, database, testConfig(), ScanInput{}); err != nil {
		t.Fatalf("first Scan failed: %v", err)
	}

	// A file created after tracking is picked up by the next scan.
	newFile := writeFile(t, dir, filepath.Join("sub", "new.txt"), "new\n")

	out, err := Scan(ctx, database, testConfig(), ScanInput{})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(out.Changed) != 1 || out.Changed[0].Path != newFile {
		t.Errorf("Changed = %+v, want only the new file", out.Changed)
	}
}

func TestScanSpecificPaths(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()

	a := writeFile(t, dir, "a.txt", "a\n")
	b := writeFile(t, dir, "b.txt", "b\n")
	for _, p := range []string{a, b} {
		if _, err := Track(ctx, database, testConfig(), TrackInput{Path: p}); err != nil {
			t.Fatalf("Track failed: %v", err)
		}
	}

	// Restricting to one path leaves the other unscanned.
	out, err := Scan(ctx, database, testConfig(), ScanInput{Paths: []string{a}})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(out.Changed) != 1 || out.Changed[0].Path != a {
		t.Errorf("Changed = %+v, want only %s", out.Changed, a)
	}

	// An untracked path is not eligible even when named explicitly.
	c := writeFile(t, dir, "c.txt", "c\n")
	out, err = Scan(ctx, database, testConfig(), ScanInput{Paths: []string{c}})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(out.Changed) != 0 {
		t.Errorf("untracked explicit path versioned: %+v", out.Changed)
	}
}
