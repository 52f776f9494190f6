/*
Copyright 2018-2025 Ruohang Feng <rh@vonng.com>
*/

package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"pig/cli/pgbackrest"

	"github.com/spf13/cobra"
)

// ============================================================================
// pig pgbackrest (pb) - Manage pgBackRest backups
// ============================================================================

// pbConfig is shared by every pgbackrest subcommand (structured or plain
// shell-out): ConfigPath/Stanza are bound to --config/--stanza below, DbSU
// defaults per pgbackrest.DefaultConfig.
var pbConfig = pgbackrest.DefaultConfig()

// pbCmd represents the pgbackrest command
var pbCmd = &cobra.Command{
	Use:     "pgbackrest",
	Short:   "Manage pgBackRest backup & restore",
	Aliases: []string{"pb", "pgbackup"},
	GroupID: "pigsty",
	Long: `Manage pgBackRest backup and point-in-time recovery.

This command wraps pgbackrest to provide easier backup management.
It automatically detects the configuration and forwards commands.

  pig pb info                      show backup info
  pig pb backup                    create backup
  pig pb restore                   restore from backup
  pig pb check                     verify backup integrity

Examples:
  pig pb info                      # show all backup info
  pig pb info --stanza=pg-meta     # show specific stanza
  pig pb backup --type=full        # create full backup
  pig pb backup --type=incr        # create incremental backup
  pig pb restore --target-time=... # point-in-time recovery
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Check if pgbackrest exists
		pgbackrestBin, err := exec.LookPath("pgbackrest")
		if err != nil {
			return fmt.Errorf("pgbackrest not found in PATH (install with: pig ext add pgbackrest)")
		}

		if len(args) == 0 {
			cmd.Help()
			return nil
		}

		// Build pgbackrest command
		cmdArgs := []string{}
		if pbConfig.ConfigPath != "" {
			cmdArgs = append(cmdArgs, "--config="+pbConfig.ConfigPath)
		}
		if pbConfig.Stanza != "" {
			cmdArgs = append(cmdArgs, "--stanza="+pbConfig.Stanza)
		}
		cmdArgs = append(cmdArgs, args...)

		// Execute pgbackrest
		execCmd := exec.Command(pgbackrestBin, cmdArgs...)
		execCmd.Stdin = os.Stdin
		execCmd.Stdout = os.Stdout
		execCmd.Stderr = os.Stderr

		return execCmd.Run()
	},
}

func init() {
	// Global flags, bound directly onto the shared pbConfig.
	pbCmd.PersistentFlags().StringVar(&pbConfig.Stanza, "stanza", "", "pgBackRest stanza name")
	pbCmd.PersistentFlags().StringVarP(&pbConfig.ConfigPath, "config", "c", pgbackrest.DefaultConfigPath, "pgBackRest config file")

	// Register subcommands. pbInfoCmd, pbBackupCmd, pbRestoreCmd, and
	// pbCheckCmd are the structured-output-aware variants defined in
	// pgbackrest_info.go, pgbackrest_backup_restore.go, and
	// pgbackrest_control_log.go respectively.
	pbCmd.AddCommand(pbInfoCmd)
	pbCmd.AddCommand(pbBackupCmd)
	pbCmd.AddCommand(pbExpireCmd)
	pbCmd.AddCommand(pbRestoreCmd)
	pbCmd.AddCommand(pbCheckCmd)
	pbCmd.AddCommand(pbCreateCmd)
	pbCmd.AddCommand(pbUpgradeCmd)
	pbCmd.AddCommand(pbDeleteCmd)
}
