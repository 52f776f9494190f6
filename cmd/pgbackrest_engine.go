/*
Copyright 2018-2026 Ruohang Feng <rh@vonng.com>
*/

package cmd

import (
	"pig/cli/pgbackrest"
	"pig/internal/config"

	"github.com/spf13/cobra"
)

// ============================================================================
// pig backrest - In-process pgBackRest-compatible backup engine
// ============================================================================

// brConfig is independent of pbConfig: backrest talks to the cluster and
// repository directly rather than shelling out to the pgbackrest binary,
// but reuses the same Config shape (config path, stanza, DBSU) since both
// describe the same pgBackRest-style repository layout.
var brConfig = pgbackrest.DefaultConfig()

var brEngineOpts pgbackrest.EngineOptions
var brFullKeep int
var brDiffKeep int
var brArchiveKeep int

// brCmd represents the backrest command group: an in-process
// implementation of the backup core (manifest build, resume, copy, WAL
// collection, retention) next to pbCmd's shell-out wrapper around the
// real pgbackrest binary.
var brCmd = &cobra.Command{
	Use:     "backrest",
	Short:   "Run the built-in backup engine (no pgbackrest binary required)",
	Aliases: []string{"br"},
	GroupID: "pigsty",
	Annotations: map[string]string{
		"name":       "pig backrest",
		"type":       "query",
		"volatility": "stable",
		"parallel":   "safe",
		"idempotent": "true",
		"risk":       "safe",
		"confirm":    "none",
		"os_user":    "dbsu",
		"cost":       "100",
	},
	Long: `Run pig's in-process backup engine: a pgBackRest-compatible physical
backup core (manifest build, resume analysis, parallel copy, WAL
collection, retention) implemented directly in pig rather than shelling
out to the pgbackrest binary.

  pig br backup                    create a backup
  pig br backup diff               create a differential backup
  pig br resume-check              check for a resumable aborted backup
  pig br retain                    run retention without a new backup
  pig br status                    show the most recent backup

Examples:
  pig br backup --stanza=pg-meta   # full/auto backup for a stanza
  pig br backup incr               # incremental backup
  pig br status -o json            # structured status
`,
}

func init() {
	brCmd.PersistentFlags().StringVar(&brConfig.Stanza, "stanza", "", "pgBackRest stanza name")
	brCmd.PersistentFlags().StringVarP(&brConfig.ConfigPath, "config", "c", pgbackrest.DefaultConfigPath, "pgBackRest config file")

	brBackupCmd.Flags().BoolVar(&brEngineOpts.Force, "force", false, "skip primary-role check")
	brBackupCmd.Flags().BoolVar(&brEngineOpts.Fast, "fast", false, "request a fast checkpoint at backup start")
	brBackupCmd.Flags().BoolVar(&brEngineOpts.Compress, "compress", false, "gzip-compress copied files and WAL segments")
	brBackupCmd.Flags().IntVar(&brEngineOpts.Workers, "workers", 0, "copy worker count (0 = use [backrest] config default)")
	brBackupCmd.Flags().IntVar(&brEngineOpts.CopyTimeoutSeconds, "copy-timeout-seconds", 0, "deadline for the copy phase, 0 disables it (0 = use config default)")
	brBackupCmd.Flags().IntVar(&brEngineOpts.WALWaitSeconds, "wal-wait-seconds", 0, "seconds to wait for a WAL segment to appear (0 = use config default)")

	for _, c := range []*cobra.Command{brBackupCmd, brRetainCmd} {
		c.Flags().IntVar(&brFullKeep, "full-keep", 0, "number of full backups to retain (0 = use [backrest] config default)")
		c.Flags().IntVar(&brDiffKeep, "diff-keep", 0, "number of differential backups to retain since the newest full (0 = use config default)")
		c.Flags().StringVar(&brEngineOpts.ArchiveType, "archive-keep-type", "", "backup type anchoring WAL retention (full/diff/incr)")
		c.Flags().IntVar(&brArchiveKeep, "archive-keep", 0, "number of backups of archive-keep-type's type to anchor WAL retention (0 = use config default)")
	}

	brCmd.AddCommand(brBackupCmd)
	brCmd.AddCommand(brResumeCheckCmd)
	brCmd.AddCommand(brRetainCmd)
	brCmd.AddCommand(brStatusCmd)
}

// resolveKeepCounts turns the 0-means-unset CLI ints into the *int form
// EngineOptions expects, a nil pointer meaning "defer to [backrest]
// config defaults" per pgbackrest.engineOptionsFromViper.
func resolveKeepCounts() {
	brEngineOpts.FullKeep = nil
	if brFullKeep > 0 {
		n := brFullKeep
		brEngineOpts.FullKeep = &n
	}
	brEngineOpts.DiffKeep = nil
	if brDiffKeep > 0 {
		n := brDiffKeep
		brEngineOpts.DiffKeep = &n
	}
	brEngineOpts.ArchiveKeep = nil
	if brArchiveKeep > 0 {
		n := brArchiveKeep
		brEngineOpts.ArchiveKeep = &n
	}
}

var brBackupCmd = &cobra.Command{
	Use:         "backup [type]",
	Short:       "Create a backup with the built-in engine",
	Annotations: ancsAnn("pig backrest backup", "action", "volatile", "restricted", false, "medium", "recommended", "dbsu", 60000),
	Long: `Create a full, differential, or incremental backup using the built-in
backup engine. If no type is given and no full backup exists yet, the
requested type is coerced to full.`,
	Example: `
  pig br backup                    # auto type
  pig br backup full               # explicit full backup
  pig br backup diff               # differential backup
  pig br backup incr               # incremental backup`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			brEngineOpts.Type = args[0]
		}
		resolveKeepCounts()
		if config.IsStructuredOutput() {
			return handleAuxResult(pgbackrest.BackupEngineResult(brConfig, &brEngineOpts))
		}
		return pgbackrest.BackupEngine(brConfig, &brEngineOpts)
	},
}

var brResumeCheckCmd = &cobra.Command{
	Use:         "resume-check",
	Short:       "Check whether an aborted backup can be resumed",
	Annotations: ancsAnn("pig backrest resume-check", "query", "volatile", "safe", true, "safe", "none", "dbsu", 500),
	Long:        `Report whether a temp backup directory from an aborted run is present.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleAuxResult(pgbackrest.ResumeCheckResult(brConfig))
	},
}

var brRetainCmd = &cobra.Command{
	Use:         "retain",
	Short:       "Run retention without creating a new backup",
	Annotations: ancsAnn("pig backrest retain", "action", "volatile", "restricted", true, "medium", "recommended", "dbsu", 5000),
	Long: `Apply the configured full/differential/WAL retention policy against
the existing backup repository, without publishing a new backup first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolveKeepCounts()
		return handleAuxResult(pgbackrest.RetainResult(brConfig, &brEngineOpts))
	},
}

var brStatusCmd = &cobra.Command{
	Use:         "status",
	Short:       "Show the most recent backup recorded by the built-in engine",
	Annotations: ancsAnn("pig backrest status", "query", "volatile", "safe", true, "safe", "none", "dbsu", 500),
	Long:        `Load and render the manifest of the most recently published backup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleAuxResult(pgbackrest.StatusResult(brConfig))
	},
}
