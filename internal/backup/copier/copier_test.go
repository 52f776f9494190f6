package copier

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pig/internal/backup/fs"
	"pig/internal/backup/manifest"
	"pig/internal/backup/planner"
)

func TestWorkerCountClampsAndCaps(t *testing.T) {
	if got := WorkerCount(100, 1000); got != 32 {
		t.Fatalf("expected hard ceiling of 32, got %d", got)
	}
	if got := WorkerCount(8, 20); got != 2 {
		t.Fatalf("expected ceil(20/10)=2 cap, got %d", got)
	}
	if got := WorkerCount(8, 1); got != 1 {
		t.Fatalf("expected small backup to stay single-worker, got %d", got)
	}
	if got := WorkerCount(0, 5); got != 1 {
		t.Fatalf("expected non-positive request to clamp to 1, got %d", got)
	}
}

func TestPartitionDistributesAcrossWorkers(t *testing.T) {
	jobs := []planner.Job{
		{Key: "a", Size: 70000},
		{Key: "b", Size: 70000},
		{Key: "c", Size: 10},
		{Key: "d", Size: 10},
	}
	buckets := partition(jobs, 2)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	total := 0
	for _, b := range buckets {
		total += len(b)
	}
	if total != len(jobs) {
		t.Fatalf("expected all %d jobs distributed, got %d", len(jobs), total)
	}
}

func TestRunCopiesFilesAndAppliesChecksum(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "a.dat")
	if err := os.WriteFile(srcPath, []byte("hello"), 0644); err != nil {
		t.Fatalf("write fixture failed: %v", err)
	}

	m := manifest.New()
	m.Set("base:file", "a.dat", "size", manifest.IntVal(5))

	job := planner.Job{
		Section: "base:file",
		Key:     "a.dat",
		SrcPath: srcPath,
		DstPath: filepath.Join(dstDir, "a.dat"),
		Size:    5,
		Action:  planner.ActionCopy,
	}

	f := fs.NewLocal(nil)
	if err := Run(context.Background(), m, []planner.Job{job}, f, Options{Workers: 2, Checksum: true}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, err := os.Stat(job.DstPath); err != nil {
		t.Fatalf("expected destination file to exist: %v", err)
	}
	entry, _ := m.Entry("base:file", "a.dat")
	if entry["checksum"].Str == "" {
		t.Fatalf("expected checksum to be recorded, got %+v", entry)
	}
}

func TestRunTreatsMissingSourceAsRemoveNotError(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	m := manifest.New()
	m.Set("base:file", "gone.dat", "size", manifest.IntVal(5))

	job := planner.Job{
		Section: "base:file",
		Key:     "gone.dat",
		SrcPath: filepath.Join(srcDir, "gone.dat"), // never created
		DstPath: filepath.Join(dstDir, "gone.dat"),
		Size:    5,
		Action:  planner.ActionCopy,
	}

	f := fs.NewLocal(nil)
	if err := Run(context.Background(), m, []planner.Job{job}, f, Options{Workers: 1}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if _, ok := m.Entry("base:file", "gone.dat"); ok {
		t.Fatalf("expected manifest entry to be removed for a missing source file")
	}
}

func TestRunCreatesHardLinkDirectlyWithoutWorker(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "a.dat")
	if err := os.WriteFile(srcPath, []byte("hello"), 0644); err != nil {
		t.Fatalf("write fixture failed: %v", err)
	}

	m := manifest.New()
	job := planner.Job{
		Section:   "base:file",
		Key:       "a.dat",
		SrcPath:   srcPath,
		DstPath:   filepath.Join(dstDir, "a.dat"),
		Reference: "PRIOR",
		Action:    planner.ActionHardLink,
	}

	f := fs.NewLocal(nil)
	if err := Run(context.Background(), m, []planner.Job{job}, f, Options{Workers: 1}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if _, err := os.Stat(job.DstPath); err != nil {
		t.Fatalf("expected hard-linked destination to exist: %v", err)
	}
}
