/*
Copyright 2018-2026 Ruohang Feng <rh@vonng.com>

The backup engine coordinator: wires C1–C8 together following the
control flow in spec.md §2 — locate prior, build manifest, check for a
resumable temp, start the backup, plan and execute copies, stop the
backup, collect WAL, commit, then prune.
*/
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"pig/internal/backup/copier"
	"pig/internal/backup/dbclient"
	"pig/internal/backup/errs"
	"pig/internal/backup/fs"
	"pig/internal/backup/label"
	"pig/internal/backup/manifest"
	"pig/internal/backup/planner"
	"pig/internal/backup/resume"
	"pig/internal/backup/retention"
	"pig/internal/backup/wal"
)

// Options parameterizes a single backup run, populated by the CLI layer
// from viper config defaults layered under cobra flags (SPEC_FULL §6.3).
type Options struct {
	Compress bool
	Checksum bool
	Hardlink bool
	Fast     bool // passed through to BackupStart's fast-checkpoint flag
	SkipFF   bool // pre-9.3 WAL minor-value quirk, see wal.Range

	Workers        int
	CopyTimeout    time.Duration // §4.6 copy-phase deadline; 0 disables it
	WALWaitTimeout time.Duration // §4.7 WAL-segment-appears wait, 600s by default

	FullKeep    *int
	DiffKeep    *int
	ArchiveType string
	ArchiveKeep *int
}

// Engine owns the collaborators a backup run needs: the filesystem
// primitive, the database client, and the directory layout (spec.md §6
// "Backup directory layout"/"Archive directory layout").
type Engine struct {
	FS            fs.FS
	DB            dbclient.Client
	Log           *logrus.Entry
	ClusterRoot   string // source PostgreSQL data directory
	BackupsRoot   string // <cluster>/ — parent of every "<label>/" directory
	ArchiveRoot   string // <cluster>/archive
	TempRoot      string // <cluster>/backup.tmp
	TablespaceMap map[string]string
}

// New builds an Engine with a default logger.
func New(f fs.FS, db dbclient.Client, clusterRoot, backupsRoot, archiveRoot, tempRoot string) *Engine {
	return &Engine{
		FS:          f,
		DB:          db,
		Log:         logrus.WithField("component", "backup-engine"),
		ClusterRoot: clusterRoot,
		BackupsRoot: backupsRoot,
		ArchiveRoot: archiveRoot,
		TempRoot:    tempRoot,
	}
}

// Result reports what a completed backup produced.
type Result struct {
	Label       string
	Manifest    *manifest.Manifest
	CopiedBytes int64
}

// Backup runs one full/diff/incr backup end to end and returns the
// published label and manifest. requestedType may be coerced to full
// per spec.md §4.1's edge case when no full backup exists yet.
func (e *Engine) Backup(ctx context.Context, requestedType string, opts Options) (*Result, error) {
	log := e.Log.WithField("requested-type", requestedType)

	existingLabels, err := e.listBackupLabels()
	if err != nil {
		return nil, fmt.Errorf("engine: list existing backups: %w", err)
	}

	backupType := requestedType
	prior, hasPrior := label.FindPrior(existingLabels, backupType)
	if !hasPrior && backupType != label.Full {
		log.Warnf("no full backup exists, coercing requested type %q to full", backupType)
		backupType = label.Full
		prior = ""
	}

	var priorManifest *manifest.Manifest
	if hasPrior {
		priorManifest, err = manifest.Load(e.manifestPath(prior))
		if err != nil {
			return nil, fmt.Errorf("engine: load prior manifest %q: %w", prior, err)
		}
	}

	tsMap, err := e.DB.TablespaceMap()
	if err != nil {
		return nil, fmt.Errorf("engine: tablespace map: %w", err)
	}
	e.TablespaceMap = tsMap

	newManifest, err := manifest.Build(manifest.BuildInput{
		FS:            e.FS,
		ClusterRoot:   e.ClusterRoot,
		Prior:         priorManifest,
		TablespaceMap: tsMap,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: build manifest: %w", err)
	}

	newLabel, err := label.New(prior, backupType, time.Now())
	if err != nil {
		return nil, fmt.Errorf("engine: mint label: %w", err)
	}
	newManifest.BackupSet("label", manifest.String(newLabel))
	newManifest.BackupSet("type", manifest.String(backupType))
	if prior != "" {
		newManifest.BackupSet("prior", manifest.String(prior))
	}
	version, err := e.DB.Version()
	if err != nil {
		return nil, fmt.Errorf("engine: db version: %w", err)
	}
	newManifest.BackupSet("version", manifest.String(version))
	newManifest.SetOptionBool("compress", opts.Compress)
	newManifest.SetOptionBool("checksum", opts.Checksum)
	newManifest.SetOptionBool("hardlink", opts.Hardlink)

	if e.FS.Exists(e.TempRoot) {
		if resume.Usable(mustLoadTemp(e.FS, e.TempRoot), newManifest) {
			log.Info("resuming usable temp backup")
			if err := resume.Clean(e.FS, e.TempRoot, newManifest); err != nil {
				return nil, fmt.Errorf("engine: clean temp for resume: %w", err)
			}
		} else {
			log.Info("temp backup not resumable, discarding")
			if err := fs.RemoveTree(e.FS, e.TempRoot); err != nil {
				return nil, fmt.Errorf("engine: discard stale temp: %w", err)
			}
		}
	}
	if err := e.FS.PathCreate(e.TempRoot); err != nil {
		return nil, fmt.Errorf("engine: create temp dir: %w", err)
	}

	archiveStart, err := e.DB.BackupStart(newLabel, opts.Fast)
	if err != nil {
		return nil, fmt.Errorf("engine: backup start: %w", err)
	}
	newManifest.BackupSet("archive-start", manifest.String(archiveStart))
	newManifest.BackupSet("timestamp-start", manifest.IntVal(time.Now().Unix()))

	levels := e.levels(tsMap)
	jobs := planner.Plan(newManifest, levels, planner.Options{
		Hardlink:    opts.Hardlink,
		Checksum:    opts.Checksum,
		BackupsRoot: e.BackupsRoot,
		TempRoot:    e.TempRoot,
	})
	copiedBytes := planner.TotalCopyBytes(jobs)

	// The planner has now consumed whatever "exists" markers resume.Clean
	// set; strip them before the manifest is ever serialized, since they
	// are transient state for the planner and must not be persisted.
	stripResumeMarkers(newManifest)

	if err := manifest.Save(e.manifestPath(""), newManifest); err != nil {
		log.WithError(err).Warn("failed to persist pre-copy manifest snapshot")
	}

	if err := copier.Run(ctx, newManifest, jobs, e.FS, copier.Options{
		Workers:  opts.Workers,
		Checksum: opts.Checksum,
		Compress: opts.Compress,
		Timeout:  opts.CopyTimeout,
	}); err != nil {
		return nil, fmt.Errorf("engine: copy phase: %w", err)
	}

	archiveStop, err := e.DB.BackupStop()
	if err != nil {
		return nil, fmt.Errorf("engine: backup stop: %w", err)
	}
	newManifest.BackupSet("archive-stop", manifest.String(archiveStop))
	newManifest.BackupSet("timestamp-stop", manifest.IntVal(time.Now().Unix()))

	segs, err := wal.Range(archiveStart, archiveStop, opts.SkipFF)
	if err != nil {
		return nil, fmt.Errorf("engine: derive WAL range: %w", err)
	}
	if err := wal.CollectRange(ctx, e.FS, segs, wal.CollectOptions{
		ArchiveRoot: e.ArchiveRoot,
		DestDir:     filepath.Join(e.TempRoot, "base", "pg_xlog"),
		CompressExt: "gz",
		Compress:    opts.Compress,
		WaitTimeout: opts.WALWaitTimeout,
	}); err != nil {
		return nil, fmt.Errorf("engine: collect WAL: %w", err)
	}

	stripResumeMarkers(newManifest)
	if err := manifest.Save(e.manifestPath(""), newManifest); err != nil {
		return nil, fmt.Errorf("engine: save final manifest: %w", err)
	}

	finalDir := filepath.Join(e.BackupsRoot, newLabel)
	if err := e.FS.Move(e.TempRoot, finalDir); err != nil {
		return nil, fmt.Errorf("engine: %w: commit rename: %v", errs.ErrAssert, err)
	}
	log.WithField("label", newLabel).Info("backup published")

	if err := e.prune(newLabel, opts); err != nil {
		log.WithError(err).Warn("retention pass failed after publish")
	}

	return &Result{Label: newLabel, Manifest: newManifest, CopiedBytes: copiedBytes}, nil
}

func (e *Engine) prune(justPublished string, opts Options) error {
	labels, err := e.listBackupLabels()
	if err != nil {
		return fmt.Errorf("list backups for retention: %w", err)
	}
	_, err = retention.Enforce(e.FS, e.BackupsRoot, e.ArchiveRoot, labels, func(l string) (*manifest.Manifest, error) {
		return manifest.Load(e.manifestPath(l))
	}, retention.Options{
		FullKeep:    opts.FullKeep,
		DiffKeep:    opts.DiffKeep,
		ArchiveType: opts.ArchiveType,
		ArchiveKeep: opts.ArchiveKeep,
	})
	return err
}

// levels enumerates the manifest sections the planner should walk: base
// plus one per tablespace.
func (e *Engine) levels(tsMap map[string]string) []planner.Level {
	levels := []planner.Level{{
		Section: manifest.LevelSection(manifest.LevelBase, manifest.SuffixFile),
		Index:   0,
		SrcRoot: e.ClusterRoot,
		DestRel: "base",
	}}
	idx := 1
	for oid, name := range tsMap {
		level := manifest.TablespaceLevel(name)
		levels = append(levels, planner.Level{
			Section: manifest.LevelSection(level, manifest.SuffixFile),
			Index:   idx,
			SrcRoot: filepath.Join(e.ClusterRoot, "pg_tblspc", oid),
			DestRel: filepath.Join("tablespace", name),
		})
		idx++
	}
	return levels
}

func (e *Engine) manifestPath(backupLabel string) string {
	if backupLabel == "" {
		return filepath.Join(e.TempRoot, "backup.manifest")
	}
	return filepath.Join(e.BackupsRoot, backupLabel, "backup.manifest")
}

func (e *Engine) listBackupLabels() ([]string, error) {
	if !e.FS.Exists(e.BackupsRoot) {
		return nil, nil
	}
	entries, err := e.FS.List(e.BackupsRoot)
	if err != nil {
		return nil, err
	}
	var labels []string
	for _, ent := range entries {
		if ent.Type == fs.TypeDir && label.TypeOf(ent.Name) != "" {
			labels = append(labels, ent.Name)
		}
	}
	return labels, nil
}

// stripResumeMarkers removes the "exists" attribute resume.Clean stamps
// onto surviving file entries from every *:file section. That attribute
// is transient state the planner reads to decide which jobs to skip; it
// must never reach a serialized manifest (spec.md §9 "Resume correctness").
func stripResumeMarkers(m *manifest.Manifest) {
	for section, entries := range m.Sections {
		if !strings.HasSuffix(section, manifest.SuffixFile) {
			continue
		}
		for key := range entries {
			m.DeleteAttr(section, key, "exists")
		}
	}
}

// mustLoadTemp loads the manifest left behind by an aborted backup. A
// load failure is treated as "not usable": resume.Usable sees an empty
// manifest and safely reports false, since its version field will never
// match.
func mustLoadTemp(f fs.FS, tempRoot string) *manifest.Manifest {
	path := filepath.Join(tempRoot, "backup.manifest")
	m, err := manifest.Load(path)
	if err != nil {
		return manifest.New()
	}
	return m
}
