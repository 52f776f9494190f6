/*
Copyright 2018-2026 Ruohang Feng <rh@vonng.com>

C8: the retention enforcer. Runs after a backup is published, pruning
full/differential backups and the WAL archive against configured
keep-counts (spec.md §4.8).
*/
package retention

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"pig/internal/backup/errs"
	"pig/internal/backup/fs"
	"pig/internal/backup/label"
	"pig/internal/backup/manifest"
)

// ManifestLoader loads the published manifest for a given backup label.
type ManifestLoader func(backupLabel string) (*manifest.Manifest, error)

// Options configures one retention pass. A nil count means that rule is
// not applied. ArchiveType selects which backup type anchors WAL
// retention; it is only meaningful alongside a non-nil ArchiveKeep.
type Options struct {
	FullKeep    *int
	DiffKeep    *int
	ArchiveType string
	ArchiveKeep *int
}

// Report summarizes what Enforce did.
type Report struct {
	DeletedBackups      []string
	PrunedArchiveMajors []string
	PrunedArchiveFiles  int
	ArchiveAnchor       string // empty if WAL was not pruned
}

func validateCount(name string, n *int) error {
	if n == nil {
		return nil
	}
	if *n < 1 {
		return fmt.Errorf("retention: %w: %s must be >= 1, got %d", errs.ErrParam, name, *n)
	}
	return nil
}

// Enforce applies full, differential, and WAL retention in sequence
// against the backups named in labels (the full repository contents),
// deleting from backupsRoot/archiveRoot via f. load fetches a backup's
// manifest on demand (only needed to find the WAL anchor's
// archive-start).
func Enforce(f fs.FS, backupsRoot, archiveRoot string, labels []string, load ManifestLoader, opts Options) (*Report, error) {
	if err := validateCount("full keep count", opts.FullKeep); err != nil {
		return nil, err
	}
	if err := validateCount("differential keep count", opts.DiffKeep); err != nil {
		return nil, err
	}
	if err := validateCount("archive keep count", opts.ArchiveKeep); err != nil {
		return nil, err
	}

	report := &Report{}
	remaining := append([]string(nil), labels...)

	remaining = enforceFull(f, backupsRoot, remaining, opts.FullKeep, report)
	remaining = enforceDifferential(f, backupsRoot, remaining, opts.DiffKeep, report)

	if opts.ArchiveType == "" {
		logrus.Info("retention: no archive retention type configured, WAL archive will not be pruned")
		return report, nil
	}
	if err := enforceArchive(f, archiveRoot, remaining, load, opts, report); err != nil {
		return report, err
	}
	return report, nil
}

// enforceFull keeps the K most recent full backups, deleting every older
// full together with every backup derived from it. Each doomed group is
// deleted in descending label order so a derived backup is always gone
// before the full it depends on, which keeps "every diff/incr has a
// surviving full ancestor" true at every intermediate step.
func enforceFull(f fs.FS, backupsRoot string, labels []string, keep *int, report *Report) []string {
	if keep == nil {
		return labels
	}
	var fulls []string
	for _, l := range labels {
		if label.IsFull(l) {
			fulls = append(fulls, l)
		}
	}
	label.SortDescending(fulls)
	if len(fulls) <= *keep {
		return labels
	}
	doomed := fulls[*keep:]

	remaining := labels
	for _, deadFull := range doomed {
		var group []string
		for _, l := range remaining {
			if l == deadFull || label.AncestorFull(l) == deadFull {
				group = append(group, l)
			}
		}
		label.SortDescending(group)
		remaining = deleteBackups(f, backupsRoot, remaining, group, report)
	}
	return remaining
}

// enforceDifferential keeps the K most recent differentials, deleting
// every diff or incr older than the K-th one.
func enforceDifferential(f fs.FS, backupsRoot string, labels []string, keep *int, report *Report) []string {
	if keep == nil {
		return labels
	}
	var diffs []string
	for _, l := range labels {
		if label.IsDiff(l) {
			diffs = append(diffs, l)
		}
	}
	label.SortDescending(diffs)
	if len(diffs) < *keep {
		return labels
	}
	anchor := diffs[*keep-1]

	var doomed []string
	for _, l := range labels {
		if (label.IsDiff(l) || label.IsIncr(l)) && l < anchor {
			doomed = append(doomed, l)
		}
	}
	label.SortDescending(doomed)
	return deleteBackups(f, backupsRoot, labels, doomed, report)
}

// deleteBackups removes each label in doomed from disk and from the
// remaining set, recording it in report.
func deleteBackups(f fs.FS, backupsRoot string, remaining []string, doomed []string, report *Report) []string {
	doomedSet := make(map[string]bool, len(doomed))
	for _, l := range doomed {
		doomedSet[l] = true
		if err := fs.RemoveTree(f, filepath.Join(backupsRoot, l)); err != nil {
			logrus.WithError(err).WithField("label", l).Warn("retention: failed to remove backup directory")
			continue
		}
		report.DeletedBackups = append(report.DeletedBackups, l)
	}
	out := remaining[:0:0]
	for _, l := range remaining {
		if !doomedSet[l] {
			out = append(out, l)
		}
	}
	return out
}

// enforceArchive selects the anchor backup per spec.md §4.8 rule 3 and
// deletes every archive major directory and file sorting strictly
// before the anchor's recorded archive-start.
func enforceArchive(f fs.FS, archiveRoot string, labels []string, load ManifestLoader, opts Options, report *Report) error {
	var candidates []string
	for _, l := range labels {
		if label.TypeOf(l) == opts.ArchiveType {
			candidates = append(candidates, l)
		}
	}
	label.SortDescending(candidates)

	k := 1
	if opts.ArchiveKeep != nil {
		k = *opts.ArchiveKeep
	}

	var anchor string
	switch {
	case len(candidates) >= k:
		anchor = candidates[k-1]
	case opts.ArchiveType == label.Full:
		var fulls []string
		for _, l := range labels {
			if label.IsFull(l) {
				fulls = append(fulls, l)
			}
		}
		if len(fulls) == 0 {
			logrus.Info("retention: no full backup available to anchor WAL retention, archive untouched")
			return nil
		}
		label.SortDescending(fulls)
		anchor = fulls[len(fulls)-1] // oldest full
	default:
		logrus.Info("retention: no backup of the configured archive type to anchor WAL retention, archive untouched")
		return nil
	}

	m, err := load(anchor)
	if err != nil {
		return fmt.Errorf("retention: load anchor manifest %q: %w", anchor, err)
	}
	archiveStart := m.BackupGetString("archive-start")
	if len(archiveStart) < 24 {
		return fmt.Errorf("retention: %w: anchor %q has no usable archive-start", errs.ErrAssert, anchor)
	}
	report.ArchiveAnchor = anchor
	majorCutoff := archiveStart[:16]
	fileCutoff := archiveStart[:24]

	majors, err := f.List(archiveRoot)
	if err != nil {
		return fmt.Errorf("retention: list archive root: %w", err)
	}
	sort.Slice(majors, func(i, j int) bool { return majors[i].Name < majors[j].Name })

	for _, major := range majors {
		if major.Type != fs.TypeDir {
			continue
		}
		majorPath := filepath.Join(archiveRoot, major.Name)
		if major.Name < majorCutoff {
			if err := fs.RemoveTree(f, majorPath); err != nil {
				return fmt.Errorf("retention: prune archive major %q: %w", major.Name, err)
			}
			report.PrunedArchiveMajors = append(report.PrunedArchiveMajors, major.Name)
			continue
		}
		if major.Name != majorCutoff {
			continue
		}
		files, err := f.List(majorPath)
		if err != nil {
			return fmt.Errorf("retention: list archive major %q: %w", major.Name, err)
		}
		for _, file := range files {
			if len(file.Name) >= 24 && file.Name[:24] < fileCutoff {
				if err := f.Remove(filepath.Join(majorPath, file.Name)); err != nil {
					return fmt.Errorf("retention: prune archive file %q: %w", file.Name, err)
				}
				report.PrunedArchiveFiles++
			}
		}
	}
	return nil
}
