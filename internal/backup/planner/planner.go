/*
Copyright 2018-2026 Ruohang Feng <rh@vonng.com>

C5: the copy planner. Classifies every file entry in the new manifest as
skip, hard-link, checksum-only, or copy, and emits a deterministic,
size-aware-partitionable job list for C6.
*/
package planner

import (
	"path/filepath"
	"sort"

	"pig/internal/backup/manifest"
)

// Action is the classification C5 assigns to a file entry.
type Action int

const (
	// ActionSkip: reference set, hard-link mode off. No work; the bytes
	// already live under the referenced prior backup.
	ActionSkip Action = iota
	// ActionHardLink: reference set, hard-link mode on. Link
	// <reference>/<destRelPath> into the new temp tree.
	ActionHardLink
	// ActionChecksumOnly: C4 marked the temp file as already present
	// and matching; checksum mode is on and hard-link mode is on.
	// Re-hash the file already sitting in temp rather than recopy it.
	ActionChecksumOnly
	// ActionCopy: copy source to temp, optionally compressing and
	// hashing.
	ActionCopy
)

// Job is one unit of work for C6, ordered by (TablespaceIdx, Size,
// FileSeq) so iteration is deterministic and size-aware partitioning is
// reproducible across runs (needed for resume correctness).
type Job struct {
	TablespaceIdx int
	Size          int64
	FileSeq       int

	Section string // manifest section this entry lives in, e.g. "base:file"
	Key     string // manifest entry key, e.g. "PG_VERSION"

	SrcPath string // absolute path to read from (copy/checksum-only: temp path)
	DstPath string // absolute path to write to (copy), or link target (hardlink)

	Reference string // prior backup label, set for ActionHardLink
	Action    Action
}

// Level describes one logical root (base, or a tablespace) the planner
// should walk for file entries.
type Level struct {
	Section string // e.g. "base:file", "tablespace:fastdisk:file"
	Index   int    // tablespaceIdx: 0 for base, ascending thereafter
	SrcRoot string // absolute source directory for this level
	DestRel string // directory relative to a backup root, e.g. "base"
}

// Options controls classification.
type Options struct {
	Hardlink    bool
	Checksum    bool
	BackupsRoot string // repository root containing "<label>/..." directories, used to resolve hardlink sources
	TempRoot    string // temp backup directory, used to resolve existing-temp-file paths
}

// Plan classifies every file entry across levels and returns the ordered
// job list.
func Plan(m *manifest.Manifest, levels []Level, opts Options) []Job {
	var jobs []Job

	for _, level := range levels {
		keys := m.Keys(level.Section)
		sort.Strings(keys)

		for seq, key := range keys {
			entry, ok := m.Entry(level.Section, key)
			if !ok {
				continue
			}
			size := entry["size"].Int
			destRel := filepath.Join(level.DestRel, key)

			job := Job{
				TablespaceIdx: level.Index,
				Size:          size,
				FileSeq:       seq,
				Section:       level.Section,
				Key:           key,
				DstPath:       filepath.Join(opts.TempRoot, destRel),
			}

			ref, hasRef := entry["reference"]
			existsMarker := entry["exists"].Bool

			switch {
			case hasRef && opts.Hardlink:
				job.Action = ActionHardLink
				job.Reference = ref.Str
				job.SrcPath = filepath.Join(opts.BackupsRoot, ref.Str, destRel)
			case hasRef && !opts.Hardlink:
				job.Action = ActionSkip
			case !hasRef && existsMarker && opts.Checksum && opts.Hardlink:
				job.Action = ActionChecksumOnly
				job.SrcPath = job.DstPath
			default:
				job.Action = ActionCopy
				job.SrcPath = filepath.Join(level.SrcRoot, key)
			}

			jobs = append(jobs, job)
		}
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].TablespaceIdx != jobs[j].TablespaceIdx {
			return jobs[i].TablespaceIdx < jobs[j].TablespaceIdx
		}
		if jobs[i].Size != jobs[j].Size {
			return jobs[i].Size < jobs[j].Size
		}
		return jobs[i].FileSeq < jobs[j].FileSeq
	})
	return jobs
}

// TotalCopyBytes returns the sum of Size over copy-classified jobs, used
// by tests and reporting to verify the planner never under/over-counts
// output size.
func TotalCopyBytes(jobs []Job) int64 {
	var total int64
	for _, j := range jobs {
		if j.Action == ActionCopy {
			total += j.Size
		}
	}
	return total
}
