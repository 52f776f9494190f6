/*
Copyright 2018-2026 Ruohang Feng <rh@vonng.com>

Wiring between the pig CLI and the in-process backup engine
(internal/backup/engine): resolves the cluster/repo paths pgbackrest.conf
already describes into the concrete roots the engine needs, and builds
the fs.Local/dbclient.Local collaborators the same way RunPgBackRest
shells out to the real binary.
*/
package pgbackrest

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"pig/cli/postgres"
	"pig/internal/backup/dbclient"
	"pig/internal/backup/engine"
	"pig/internal/backup/fs"
)

func init() {
	viper.SetDefault("backrest.workers", 4)
	viper.SetDefault("backrest.checksum", true)
	viper.SetDefault("backrest.hardlink", true)
	viper.SetDefault("backrest.compress", false)
	viper.SetDefault("backrest.wal_wait_seconds", 60)
	viper.SetDefault("backrest.copy_timeout_seconds", 0)
	viper.SetDefault("backrest.full_keep", 0)
	viper.SetDefault("backrest.diff_keep", 0)
	viper.SetDefault("backrest.archive_type", "")
	viper.SetDefault("backrest.archive_keep", 0)
}

// EngineOptions carries the cobra-flag overlay for one `pig backrest
// backup` invocation. A zero value for any *int field means "use the
// [backrest] config default"; the CLI layer only sets them from flags the
// user actually passed.
type EngineOptions struct {
	Type     string // full, diff, incr; empty lets FindPrior decide
	Force    bool   // skip primary-role check
	Fast     bool
	Compress bool
	SkipFF   bool

	Workers            int
	CopyTimeoutSeconds int // 0 means no per-copy-phase deadline (§4.6)
	WALWaitSeconds     int

	FullKeep    *int
	DiffKeep    *int
	ArchiveType string
	ArchiveKeep *int
}

// engineOptionsFromViper layers [backrest] config defaults under an
// EngineOptions overlay, the same precedence GetEffectiveConfig applies
// to flags over config-file defaults over hardcoded defaults.
func engineOptionsFromViper(opts *EngineOptions) engine.Options {
	workers := opts.Workers
	if workers <= 0 {
		workers = viper.GetInt("backrest.workers")
	}
	waitSeconds := opts.WALWaitSeconds
	if waitSeconds <= 0 {
		waitSeconds = viper.GetInt("backrest.wal_wait_seconds")
	}
	copyTimeoutSeconds := opts.CopyTimeoutSeconds
	if copyTimeoutSeconds <= 0 {
		copyTimeoutSeconds = viper.GetInt("backrest.copy_timeout_seconds")
	}

	result := engine.Options{
		Compress:       opts.Compress || viper.GetBool("backrest.compress"),
		Checksum:       viper.GetBool("backrest.checksum"),
		Hardlink:       viper.GetBool("backrest.hardlink"),
		Fast:           opts.Fast,
		SkipFF:         opts.SkipFF,
		Workers:        workers,
		CopyTimeout:    time.Duration(copyTimeoutSeconds) * time.Second,
		WALWaitTimeout: time.Duration(waitSeconds) * time.Second,
		FullKeep:       opts.FullKeep,
		DiffKeep:       opts.DiffKeep,
		ArchiveType:    opts.ArchiveType,
		ArchiveKeep:    opts.ArchiveKeep,
	}
	if result.FullKeep == nil {
		if n := viper.GetInt("backrest.full_keep"); n > 0 {
			result.FullKeep = &n
		}
	}
	if result.DiffKeep == nil {
		if n := viper.GetInt("backrest.diff_keep"); n > 0 {
			result.DiffKeep = &n
		}
	}
	if result.ArchiveType == "" {
		result.ArchiveType = viper.GetString("backrest.archive_type")
	}
	if result.ArchiveKeep == nil {
		if n := viper.GetInt("backrest.archive_keep"); n > 0 {
			result.ArchiveKeep = &n
		}
	}
	return result
}

// Layout resolves the filesystem roots a backup run needs from the
// pgBackRest config file and Pigsty conventions.
type Layout struct {
	ClusterRoot string
	BackupsRoot string
	ArchiveRoot string
	TempRoot    string
}

// resolveLayout mirrors GetPgPathFromConfig's "pg1-path" lookup for the
// cluster data directory, and adds the equivalent "repo1-path" lookup for
// the backup repository, both falling back to Pigsty's default layout.
func resolveLayout(cfg *Config) (Layout, error) {
	clusterRoot := GetPgPathFromConfig(cfg.ConfigPath, cfg.Stanza, cfg.DbSU)
	if clusterRoot == "" {
		clusterRoot = postgres.DefaultPgData
	}

	repoRoot := getRepoPathFromConfig(cfg.ConfigPath, cfg.DbSU)
	if repoRoot == "" {
		repoRoot = "/pg/backup"
	}

	return Layout{
		ClusterRoot: clusterRoot,
		BackupsRoot: filepath.Join(repoRoot, "backup", cfg.Stanza),
		ArchiveRoot: filepath.Join(repoRoot, "archive", cfg.Stanza),
		TempRoot:    filepath.Join(repoRoot, "backup", cfg.Stanza, "backup.tmp"),
	}, nil
}

// getRepoPathFromConfig reads repo1-path from the [global] section,
// the same scan listRepos performs to render `pig pb ls repo`.
func getRepoPathFromConfig(configPath, dbsu string) string {
	content, err := readConfigFile(configPath, dbsu)
	if err != nil {
		return ""
	}
	matches := repoConfigRegex.FindAllStringSubmatch(content, -1)
	for _, m := range matches {
		if m[1] == "repo1" && m[2] == "path" {
			return m[3]
		}
	}
	return ""
}

// buildEngine constructs the engine against cfg's resolved layout, wiring
// a real fs.Local and a psql-backed dbclient.Local.
func buildEngine(cfg *Config) (*engine.Engine, Layout, error) {
	effCfg, err := GetEffectiveConfig(cfg)
	if err != nil {
		return nil, Layout{}, err
	}
	layout, err := resolveLayout(effCfg)
	if err != nil {
		return nil, Layout{}, err
	}
	if layout.ClusterRoot == "" {
		return nil, Layout{}, fmt.Errorf("cannot determine cluster data directory (use pgbackrest.conf pg1-path or %s)", postgres.DefaultPgData)
	}

	f := fs.NewLocal(nil)
	db := dbclient.NewLocal(layout.ClusterRoot)
	e := engine.New(f, db, layout.ClusterRoot, layout.BackupsRoot, layout.ArchiveRoot, layout.TempRoot)
	return e, layout, nil
}
