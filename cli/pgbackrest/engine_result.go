/*
Copyright 2018-2026 Ruohang Feng <rh@vonng.com>

pig backrest structured output results and DTOs, mirroring the shape of
PbBackupResultData/BackupResult but backed by internal/backup/engine
instead of shelling out to the pgbackrest binary.
*/
package pgbackrest

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"pig/internal/backup/engine"
	"pig/internal/backup/label"
	"pig/internal/backup/manifest"
	"pig/internal/backup/retention"
	"pig/internal/output"
)

// PbEngineBackupResultData reports the outcome of a pig backrest backup run.
type PbEngineBackupResultData struct {
	RunID       string `json:"run_id" yaml:"run_id"`
	Label       string `json:"label" yaml:"label"`
	Type        string `json:"type" yaml:"type"`
	Prior       string `json:"prior,omitempty" yaml:"prior,omitempty"`
	CopiedBytes int64  `json:"copied_bytes" yaml:"copied_bytes"`
	CopiedHuman string `json:"copied_human" yaml:"copied_human"`
	References  int    `json:"references" yaml:"references"`
}

// normalizeEngineBackupType maps a pb-style type flag onto the engine's
// label vocabulary, defaulting to full the same way validBackupTypes
// treats an empty --type as "let pgbackrest decide" upstream.
func normalizeEngineBackupType(t string) (string, error) {
	switch t {
	case "", "full":
		return label.Full, nil
	case "diff":
		return label.Diff, nil
	case "incr":
		return label.Incr, nil
	default:
		return "", fmt.Errorf("invalid backup type: %s (use: full, diff, incr)", t)
	}
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return ""
	}
	return id.String()
}

// BackupEngine runs a backup via internal/backup/engine and prints a
// plain-text summary, the structured-output-off counterpart of
// BackupEngineResult.
func BackupEngine(cfg *Config, opts *EngineOptions) error {
	runID := newRunID()
	log := logrus.WithField("run-id", runID)

	backupType, err := normalizeEngineBackupType(opts.Type)
	if err != nil {
		return err
	}
	if !opts.Force {
		if roleErr := checkPrimaryRole(); roleErr != nil {
			return roleErr
		}
	}

	e, _, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	result, err := e.Backup(context.Background(), backupType, engineOptionsFromViper(opts))
	if err != nil {
		return fmt.Errorf("backrest backup failed: %w", err)
	}
	log.Infof("backup %s published: %s copied", result.Label, humanize.Bytes(uint64(result.CopiedBytes)))
	fmt.Printf("backup label: %s\n", result.Label)
	fmt.Printf("backup type:  %s\n", result.Manifest.Type())
	fmt.Printf("copied:       %s (%d bytes)\n", humanize.Bytes(uint64(result.CopiedBytes)), result.CopiedBytes)
	return nil
}

// BackupEngineResult is the structured-output counterpart of BackupEngine.
func BackupEngineResult(cfg *Config, opts *EngineOptions) *output.Result {
	runID := newRunID()
	log := logrus.WithField("run-id", runID)

	backupType, err := normalizeEngineBackupType(opts.Type)
	if err != nil {
		return output.Fail(output.CodePbInvalidBackupType, err.Error())
	}
	if !opts.Force {
		if roleErr := checkPrimaryRoleResult(); roleErr != nil {
			return roleErr
		}
	}

	e, _, err := buildEngine(cfg)
	if err != nil {
		return output.Fail(output.CodePbConfigNotFound, "cannot resolve backup layout").WithDetail(err.Error())
	}

	log.Infof("starting %s backup for stanza %s", backupType, cfg.Stanza)
	result, err := e.Backup(context.Background(), backupType, engineOptionsFromViper(opts))
	if err != nil {
		return output.Fail(output.CodePbBackupFailed, "backup failed").WithDetail(err.Error())
	}
	log.Infof("backup %s published", result.Label)

	data := &PbEngineBackupResultData{
		RunID:       runID,
		Label:       result.Label,
		Type:        result.Manifest.Type(),
		Prior:       result.Manifest.Prior(),
		CopiedBytes: result.CopiedBytes,
		CopiedHuman: humanize.Bytes(uint64(result.CopiedBytes)),
		References:  len(result.Manifest.References()),
	}
	return output.OK("backup completed successfully", data)
}

// PbResumeCheckResultData describes the state of a possibly-aborted temp
// backup, without attempting to resume it.
type PbResumeCheckResultData struct {
	TempExists bool   `json:"temp_exists" yaml:"temp_exists"`
	Label      string `json:"label,omitempty" yaml:"label,omitempty"`
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
}

// ResumeCheckResult reports whether a resumable temp backup is present,
// without committing to reuse or discard it (that decision is made
// inside engine.Backup on the next real run).
func ResumeCheckResult(cfg *Config) *output.Result {
	e, layout, err := buildEngine(cfg)
	if err != nil {
		return output.Fail(output.CodePbConfigNotFound, "cannot resolve backup layout").WithDetail(err.Error())
	}
	if !e.FS.Exists(layout.TempRoot) {
		return output.OK("no aborted backup found", &PbResumeCheckResultData{TempExists: false})
	}

	m, loadErr := manifest.Load(filepath.Join(layout.TempRoot, "backup.manifest"))
	if loadErr != nil {
		return output.OK("aborted backup found but its manifest could not be read", &PbResumeCheckResultData{
			TempExists: true,
		})
	}
	return output.OK("aborted backup found", &PbResumeCheckResultData{
		TempExists: true,
		Label:      m.Label(),
		Type:       m.Type(),
		Version:    m.Version(),
	})
}

// PbRetainResultData reports what a standalone retention pass did.
type PbRetainResultData struct {
	DeletedBackups      []string `json:"deleted_backups,omitempty" yaml:"deleted_backups,omitempty"`
	PrunedArchiveMajors []string `json:"pruned_archive_majors,omitempty" yaml:"pruned_archive_majors,omitempty"`
	PrunedArchiveFiles  int      `json:"pruned_archive_files" yaml:"pruned_archive_files"`
	ArchiveAnchor       string   `json:"archive_anchor,omitempty" yaml:"archive_anchor,omitempty"`
}

// RetainResult runs C8 retention standalone, against whatever full/diff
// keep counts and archive policy are configured, without publishing a new
// backup first. Useful for tightening a retention policy and pruning
// immediately rather than waiting for the next backup.
func RetainResult(cfg *Config, opts *EngineOptions) *output.Result {
	e, layout, err := buildEngine(cfg)
	if err != nil {
		return output.Fail(output.CodePbConfigNotFound, "cannot resolve backup layout").WithDetail(err.Error())
	}

	var labels []string
	if e.FS.Exists(layout.BackupsRoot) {
		entries, listErr := e.FS.List(layout.BackupsRoot)
		if listErr != nil {
			return output.Fail(output.CodePbBackupFailed, "cannot list backups").WithDetail(listErr.Error())
		}
		for _, ent := range entries {
			if label.TypeOf(ent.Name) != "" {
				labels = append(labels, ent.Name)
			}
		}
	}

	resolved := engineOptionsFromViper(opts)
	report, err := retention.Enforce(e.FS, layout.BackupsRoot, layout.ArchiveRoot, labels, func(l string) (*manifest.Manifest, error) {
		return manifest.Load(filepath.Join(layout.BackupsRoot, l, "backup.manifest"))
	}, retention.Options{
		FullKeep:    resolved.FullKeep,
		DiffKeep:    resolved.DiffKeep,
		ArchiveType: resolved.ArchiveType,
		ArchiveKeep: resolved.ArchiveKeep,
	})
	if err != nil {
		return output.Fail(output.CodePbBackupFailed, "retention pass failed").WithDetail(err.Error())
	}

	return output.OK("retention pass completed", &PbRetainResultData{
		DeletedBackups:      report.DeletedBackups,
		PrunedArchiveMajors: report.PrunedArchiveMajors,
		PrunedArchiveFiles:  report.PrunedArchiveFiles,
		ArchiveAnchor:       report.ArchiveAnchor,
	})
}

// PbStatusResultData is the read-only summary pig backrest status renders.
type PbStatusResultData struct {
	Label      string   `json:"label" yaml:"label"`
	Type       string   `json:"type" yaml:"type"`
	Prior      string   `json:"prior,omitempty" yaml:"prior,omitempty"`
	Version    string   `json:"version" yaml:"version"`
	ArchiveLo  string   `json:"archive_start" yaml:"archive_start"`
	ArchiveHi  string   `json:"archive_stop" yaml:"archive_stop"`
	References []string `json:"references,omitempty" yaml:"references,omitempty"`
}

// StatusResult loads the most recently published backup's manifest and
// renders a summary, exercising C1+C2 without re-deriving restore.
func StatusResult(cfg *Config) *output.Result {
	e, layout, err := buildEngine(cfg)
	if err != nil {
		return output.Fail(output.CodePbConfigNotFound, "cannot resolve backup layout").WithDetail(err.Error())
	}
	if !e.FS.Exists(layout.BackupsRoot) {
		return output.Fail(output.CodePbBackupNotFound, "no backups found").WithDetail(layout.BackupsRoot)
	}
	entries, err := e.FS.List(layout.BackupsRoot)
	if err != nil {
		return output.Fail(output.CodePbBackupFailed, "cannot list backups").WithDetail(err.Error())
	}
	var labels []string
	for _, ent := range entries {
		if label.TypeOf(ent.Name) != "" {
			labels = append(labels, ent.Name)
		}
	}
	if len(labels) == 0 {
		return output.Fail(output.CodePbBackupNotFound, "no backups found").WithDetail(layout.BackupsRoot)
	}
	label.SortDescending(labels)
	latest := labels[0]

	m, err := manifest.Load(filepath.Join(layout.BackupsRoot, latest, "backup.manifest"))
	if err != nil {
		return output.Fail(output.CodePbBackupFailed, "cannot load manifest").WithDetail(err.Error())
	}

	return output.OK("latest backup status", &PbStatusResultData{
		Label:      m.Label(),
		Type:       m.Type(),
		Prior:      m.Prior(),
		Version:    m.Version(),
		ArchiveLo:  m.BackupGetString("archive-start"),
		ArchiveHi:  m.BackupGetString("archive-stop"),
		References: m.References(),
	})
}
