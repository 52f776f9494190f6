//go:build windows

/*
Copyright 2018-2026 Ruohang Feng <rh@vonng.com>

Windows has no POSIX uid/gid/inode triple; pig does not target Windows
database hosts, so this stub keeps the package buildable without
pretending to support a platform pgbackrest itself never ran on.
*/
package fs

import "os"

func fillOwnership(e *Entry, info os.FileInfo) {}
