package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ekm507/chroni/internal/fsio"
)

// TestFullWorkflow exercises the whole lifecycle end to end: track, scan,
// edit, history, snapshot, restore, forget.
func TestFullWorkflow(t *testing.T) {
	database := setupTestDB(t)
	cfg := testConfig()
	ctx := context.Background()
	dir := t.TempDir()

	path := writeFile(t, dir, "doc.txt", "line1\nline2\n")

	// Track the file.
	trackOut, err := Track(ctx, database, cfg, TrackInput{Path: path})
	require.NoError(t, err)
	require.False(t, trackOut.AlreadyTracked)

	listOut, err := List(ctx, database)
	require.NoError(t, err)
	require.Equal(t, 1, listOut.Total)

	// First scan records v1 as a full version.
	scanOut, err := Scan(ctx, database, cfg, ScanInput{})
	require.NoError(t, err)
	require.Len(t, scanOut.Changed, 1)
	require.Equal(t, 1, scanOut.Changed[0].Version)

	// Edit and rescan: v2.
	writeFile(t, dir, "doc.txt", "line1\nline2X\n")
	scanOut, err = Scan(ctx, database, cfg, ScanInput{})
	require.NoError(t, err)
	require.Len(t, scanOut.Changed, 1)
	require.Equal(t, 2, scanOut.Changed[0].Version)

	// Snapshot the current state.
	snapOut, err := SnapshotCreate(ctx, database, SnapshotCreateInput{Name: "checkpoint"})
	require.NoError(t, err)
	require.Equal(t, 1, snapOut.Files)

	// Keep editing: v3.
	writeFile(t, dir, "doc.txt", "line1\nline2X\nline3\n")
	scanOut, err = Scan(ctx, database, cfg, ScanInput{})
	require.NoError(t, err)
	require.Equal(t, 3, scanOut.Changed[0].Version)

	// History shows all three versions ascending.
	histOut, err := History(ctx, database, HistoryInput{Path: path})
	require.NoError(t, err)
	require.Len(t, histOut.Versions, 3)
	require.Equal(t, 1, histOut.Versions[0].Version)
	require.Equal(t, 3, histOut.Versions[2].Version)

	// Show materializes any version exactly.
	v := 2
	showOut, err := Show(ctx, database, ShowInput{Path: path, Version: &v})
	require.NoError(t, err)
	require.Equal(t, "line1\nline2X\n", showOut.Content)

	// Snapshot restore rolls the working file back to v2.
	restoreOut, err := SnapshotRestore(ctx, database, SnapshotRestoreInput{Name: "checkpoint"})
	require.NoError(t, err)
	require.Len(t, restoreOut.Restored, 1)
	require.Empty(t, restoreOut.Failed)

	content, err := fsio.ReadText(path)
	require.NoError(t, err)
	require.Equal(t, "line1\nline2X\n", content)

	// The rollback becomes v4 on the next scan (content differs from v3).
	scanOut, err = Scan(ctx, database, cfg, ScanInput{})
	require.NoError(t, err)
	require.Len(t, scanOut.Changed, 1)
	require.Equal(t, 4, scanOut.Changed[0].Version)

	// Forget wipes everything.
	forgetOut, err := Forget(ctx, database, cfg, ForgetInput{Path: path})
	require.NoError(t, err)
	require.True(t, forgetOut.Forgotten)

	listOut, err = List(ctx, database)
	require.NoError(t, err)
	require.Equal(t, 0, listOut.Total)
}
