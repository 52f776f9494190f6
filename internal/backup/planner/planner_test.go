package planner

import (
	"testing"

	"pig/internal/backup/manifest"
)

func baseLevel() Level {
	return Level{Section: "base:file", Index: 0, SrcRoot: "/src/base", DestRel: "base"}
}

func TestPlanSkipWhenReferenceAndHardlinkOff(t *testing.T) {
	m := manifest.New()
	m.Set("base:file", "a.dat", "size", manifest.IntVal(100))
	m.Set("base:file", "a.dat", "reference", manifest.String("PRIOR"))

	jobs := Plan(m, []Level{baseLevel()}, Options{Hardlink: false, TempRoot: "/tmp/x"})
	if len(jobs) != 1 || jobs[0].Action != ActionSkip {
		t.Fatalf("expected a single skip job, got %+v", jobs)
	}
}

func TestPlanHardlinkWhenReferenceAndHardlinkOn(t *testing.T) {
	m := manifest.New()
	m.Set("base:file", "a.dat", "size", manifest.IntVal(100))
	m.Set("base:file", "a.dat", "reference", manifest.String("PRIOR"))

	jobs := Plan(m, []Level{baseLevel()}, Options{Hardlink: true, BackupsRoot: "/repo", TempRoot: "/tmp/x"})
	if len(jobs) != 1 || jobs[0].Action != ActionHardLink {
		t.Fatalf("expected a single hardlink job, got %+v", jobs)
	}
	if jobs[0].SrcPath != "/repo/PRIOR/base/a.dat" {
		t.Fatalf("unexpected hardlink source: %q", jobs[0].SrcPath)
	}
}

func TestPlanChecksumOnlyRequiresExistsChecksumAndHardlink(t *testing.T) {
	m := manifest.New()
	m.Set("base:file", "a.dat", "size", manifest.IntVal(100))
	m.Set("base:file", "a.dat", "exists", manifest.BoolVal(true))

	jobs := Plan(m, []Level{baseLevel()}, Options{Hardlink: true, Checksum: true, TempRoot: "/tmp/x"})
	if len(jobs) != 1 || jobs[0].Action != ActionChecksumOnly {
		t.Fatalf("expected checksum-only job, got %+v", jobs)
	}

	jobsNoChecksum := Plan(m, []Level{baseLevel()}, Options{Hardlink: true, Checksum: false, TempRoot: "/tmp/x"})
	if jobsNoChecksum[0].Action != ActionCopy {
		t.Fatalf("expected copy fallback without checksum mode, got %+v", jobsNoChecksum[0])
	}
}

func TestPlanDefaultIsCopy(t *testing.T) {
	m := manifest.New()
	m.Set("base:file", "a.dat", "size", manifest.IntVal(500))

	jobs := Plan(m, []Level{baseLevel()}, Options{TempRoot: "/tmp/x"})
	if len(jobs) != 1 || jobs[0].Action != ActionCopy {
		t.Fatalf("expected copy job, got %+v", jobs)
	}
	if jobs[0].SrcPath != "/src/base/a.dat" {
		t.Fatalf("unexpected copy source: %q", jobs[0].SrcPath)
	}
}

func TestPlanTotalCopyBytesMatchesSumOfCopyEntries(t *testing.T) {
	m := manifest.New()
	m.Set("base:file", "a.dat", "size", manifest.IntVal(100))
	m.Set("base:file", "b.dat", "size", manifest.IntVal(200))
	m.Set("base:file", "b.dat", "reference", manifest.String("PRIOR"))

	jobs := Plan(m, []Level{baseLevel()}, Options{Hardlink: true, TempRoot: "/tmp/x", BackupsRoot: "/repo"})
	if got := TotalCopyBytes(jobs); got != 100 {
		t.Fatalf("expected only a.dat's 100 bytes counted as copy output, got %d", got)
	}
}

func TestPlanOrderingIsDeterministicByTablespaceSizeThenSeq(t *testing.T) {
	m := manifest.New()
	m.Set("base:file", "big.dat", "size", manifest.IntVal(1000))
	m.Set("base:file", "small.dat", "size", manifest.IntVal(10))

	jobs := Plan(m, []Level{baseLevel()}, Options{TempRoot: "/tmp/x"})
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Key != "small.dat" || jobs[1].Key != "big.dat" {
		t.Fatalf("expected ascending-size ordering, got %+v", jobs)
	}
}
