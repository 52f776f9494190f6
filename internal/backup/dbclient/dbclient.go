/*
Copyright 2018-2026 Ruohang Feng <rh@vonng.com>

The database control client (spec.md §6): the external collaborator that
issues backup-start/backup-stop and enumerates tablespaces. Local drives
the real cluster via psql/pg_controldata the way cli/pgbackrest.go shells
out to the pgbackrest binary; tests use a stub implementing the same
interface.
*/
package dbclient

import (
	"bufio"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Client is the engine's view of the database it is backing up.
type Client interface {
	// BackupStart tells the database a backup named label is beginning
	// and returns the archive position (WAL-like "start LSN") the
	// engine should record as backup.archive-start.
	BackupStart(label string, fast bool) (string, error)

	// BackupStop tells the database the backup is finished copying
	// files and returns the archive position to record as
	// backup.archive-stop.
	BackupStop() (string, error)

	// TablespaceMap returns oid -> tablespace name for every
	// tablespace currently defined, as discovered from pg_tblspc.
	TablespaceMap() (map[string]string, error)

	// Version returns the numeric catalog version pgbackrest records in
	// backup:db (e.g. "170004").
	Version() (string, error)
}

// Local drives a real PostgreSQL cluster via psql, the same shell-out
// style as cli/pgbackrest.go's RunPgBackRestOutput.
type Local struct {
	PsqlPath string
	DataDir  string
}

// NewLocal returns a Local client targeting the cluster at dataDir,
// using psql from PATH unless overridden.
func NewLocal(dataDir string) *Local {
	return &Local{PsqlPath: "psql", DataDir: dataDir}
}

func (l *Local) query(sql string) (string, error) {
	bin, err := exec.LookPath(l.PsqlPath)
	if err != nil {
		return "", fmt.Errorf("dbclient: psql not found: %w", err)
	}
	cmd := exec.Command(bin, "-Atq", "-c", sql)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("dbclient: query failed: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (l *Local) BackupStart(label string, fast bool) (string, error) {
	sql := fmt.Sprintf("select pg_backup_start('%s', %t)", label, fast)
	return l.query(sql)
}

func (l *Local) BackupStop() (string, error) {
	return l.query("select lsn from pg_backup_stop()")
}

func (l *Local) TablespaceMap() (map[string]string, error) {
	out, err := l.query("select oid, spcname from pg_tablespace where spcname not in ('pg_default','pg_global')")
	if err != nil {
		return nil, err
	}
	m := map[string]string{}
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 2)
		if len(parts) != 2 {
			continue
		}
		m[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return m, scanner.Err()
}

func (l *Local) Version() (string, error) {
	return l.query("show server_version_num")
}

// ParseVersionNum parses a numeric catalog version string into an int64,
// as recorded in the manifest's backup:db section.
func ParseVersionNum(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}
