//go:build !windows

/*
Copyright 2018-2026 Ruohang Feng <rh@vonng.com>

User/group/inode extraction on unix-like platforms, where pgBackRest's
target clusters actually run.
*/
package fs

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"syscall"
)

func fillOwnership(e *Entry, info os.FileInfo) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	e.Inode = stat.Ino
	if u, err := user.LookupId(strconv.FormatUint(uint64(stat.Uid), 10)); err == nil {
		e.User = u.Username
	} else {
		e.User = fmt.Sprintf("%d", stat.Uid)
	}
	if g, err := user.LookupGroupId(strconv.FormatUint(uint64(stat.Gid), 10)); err == nil {
		e.Group = g.Name
	} else {
		e.Group = fmt.Sprintf("%d", stat.Gid)
	}
}
