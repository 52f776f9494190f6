package resume

import (
	"os"
	"path/filepath"
	"testing"

	"pig/internal/backup/fs"
	"pig/internal/backup/manifest"
)

func TestUsableBothFull(t *testing.T) {
	temp := manifest.New()
	temp.BackupSet("version", manifest.String("1"))
	temp.BackupSet("type", manifest.String("full"))
	next := manifest.New()
	next.BackupSet("version", manifest.String("1"))
	next.BackupSet("type", manifest.String("full"))
	if !Usable(temp, next) {
		t.Fatalf("expected two full manifests with matching version to be usable")
	}
}

func TestUsableVersionMismatch(t *testing.T) {
	temp := manifest.New()
	temp.BackupSet("version", manifest.String("1"))
	temp.BackupSet("type", manifest.String("full"))
	next := manifest.New()
	next.BackupSet("version", manifest.String("2"))
	next.BackupSet("type", manifest.String("full"))
	if Usable(temp, next) {
		t.Fatalf("expected version mismatch to be unusable")
	}
}

func TestUsableSameTypeAndPrior(t *testing.T) {
	temp := manifest.New()
	temp.BackupSet("version", manifest.String("1"))
	temp.BackupSet("type", manifest.String("incr"))
	temp.BackupSet("prior", manifest.String("P1"))
	next := manifest.New()
	next.BackupSet("version", manifest.String("1"))
	next.BackupSet("type", manifest.String("incr"))
	next.BackupSet("prior", manifest.String("P1"))
	if !Usable(temp, next) {
		t.Fatalf("expected matching type+prior to be usable")
	}

	next.BackupSet("prior", manifest.String("P2"))
	if Usable(temp, next) {
		t.Fatalf("expected differing prior to be unusable")
	}
}

func TestUsableDoesNotUseVacuousPresenceCheck(t *testing.T) {
	// Regression test for the corrected Open Question bug: a field
	// present-but-empty must compare unequal to a field that's simply
	// absent, not collapse to the same "truthy" signal.
	temp := manifest.New()
	temp.BackupSet("version", manifest.String("1"))
	temp.BackupSet("type", manifest.String("incr"))
	temp.BackupSet("prior", manifest.String("")) // present, empty
	next := manifest.New()
	next.BackupSet("version", manifest.String("1"))
	next.BackupSet("type", manifest.String("incr"))
	// prior absent entirely
	if Usable(temp, next) {
		t.Fatalf("present-empty prior must not be treated as equal to an absent prior")
	}
}

func TestCleanRemovesPgXlogAndPgTblspcUnconditionally(t *testing.T) {
	tempRoot := t.TempDir()
	mustWrite(t, filepath.Join(tempRoot, "base", "pg_xlog", "seg1"), "x")
	mustWrite(t, filepath.Join(tempRoot, "base", "pg_tblspc", "16401"), "x")
	mustWrite(t, filepath.Join(tempRoot, "base", "PG_VERSION"), "17")

	next := manifest.New()
	next.Set("base:file", "PG_VERSION", "size", manifest.IntVal(2))
	next.Set("base:file", "PG_VERSION", "modification_time", manifest.IntVal(statMTime(t, filepath.Join(tempRoot, "base", "PG_VERSION"))))

	f := fs.NewLocal(nil)
	if err := Clean(f, tempRoot, next); err != nil {
		t.Fatalf("clean failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tempRoot, "base", "pg_xlog")); !os.IsNotExist(err) {
		t.Fatalf("expected pg_xlog to be removed unconditionally")
	}
	if _, err := os.Stat(filepath.Join(tempRoot, "base", "pg_tblspc")); !os.IsNotExist(err) {
		t.Fatalf("expected pg_tblspc to be removed unconditionally")
	}
}

func TestCleanMarksMatchingFileExists(t *testing.T) {
	tempRoot := t.TempDir()
	path := filepath.Join(tempRoot, "base", "PG_VERSION")
	mustWrite(t, path, "17")
	mt := statMTime(t, path)

	next := manifest.New()
	next.Set("base:file", "PG_VERSION", "size", manifest.IntVal(2))
	next.Set("base:file", "PG_VERSION", "modification_time", manifest.IntVal(mt))

	f := fs.NewLocal(nil)
	if err := Clean(f, tempRoot, next); err != nil {
		t.Fatalf("clean failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected matching temp file to survive: %v", err)
	}
	entry, _ := next.Entry("base:file", "PG_VERSION")
	if !entry["exists"].Bool {
		t.Fatalf("expected exists marker to be set on matching entry")
	}
}

func TestCleanMarksMatchingNestedFileExists(t *testing.T) {
	// Regression test: a file below the first directory level (the normal
	// cluster layout, e.g. base/A/1.dat) must be keyed by its full
	// relative path, not just its first path component.
	tempRoot := t.TempDir()
	path := filepath.Join(tempRoot, "base", "A", "1.dat")
	mustWrite(t, path, "data")
	mt := statMTime(t, path)

	next := manifest.New()
	next.Set("base:file", filepath.Join("A", "1.dat"), "size", manifest.IntVal(4))
	next.Set("base:file", filepath.Join("A", "1.dat"), "modification_time", manifest.IntVal(mt))

	f := fs.NewLocal(nil)
	if err := Clean(f, tempRoot, next); err != nil {
		t.Fatalf("clean failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected matching nested temp file to survive: %v", err)
	}
	entry, ok := next.Entry("base:file", filepath.Join("A", "1.dat"))
	if !ok || !entry["exists"].Bool {
		t.Fatalf("expected exists marker to be set on nested file entry")
	}
}

func TestCleanMarksMatchingTablespaceNestedFileExists(t *testing.T) {
	tempRoot := t.TempDir()
	path := filepath.Join(tempRoot, "tablespace", "fastdisk", "A", "1.dat")
	mustWrite(t, path, "data")
	mt := statMTime(t, path)

	next := manifest.New()
	key := filepath.Join("A", "1.dat")
	next.Set("tablespace:fastdisk:file", key, "size", manifest.IntVal(4))
	next.Set("tablespace:fastdisk:file", key, "modification_time", manifest.IntVal(mt))

	f := fs.NewLocal(nil)
	if err := Clean(f, tempRoot, next); err != nil {
		t.Fatalf("clean failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected matching tablespace file to survive: %v", err)
	}
	entry, ok := next.Entry("tablespace:fastdisk:file", key)
	if !ok || !entry["exists"].Bool {
		t.Fatalf("expected exists marker to be set on tablespace file entry")
	}
}

func TestCleanDeletesStaleFile(t *testing.T) {
	tempRoot := t.TempDir()
	path := filepath.Join(tempRoot, "base", "PG_VERSION")
	mustWrite(t, path, "17")

	next := manifest.New()
	next.Set("base:file", "PG_VERSION", "size", manifest.IntVal(999)) // mismatched
	next.Set("base:file", "PG_VERSION", "modification_time", manifest.IntVal(statMTime(t, path)))

	f := fs.NewLocal(nil)
	if err := Clean(f, tempRoot, next); err != nil {
		t.Fatalf("clean failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected stale temp file to be removed")
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func statMTime(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	return info.ModTime().Unix()
}
