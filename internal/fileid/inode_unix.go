//go:build unix && !linux && !darwin

package fileid

import (
	"io/fs"
	"syscall"
)

func inode(i fs.FileInfo) (uint64, bool) {
	switch t := i.Sys().(type) {
	case *syscall.Stat_t:
		return uint64(t.Ino), true
	default:
		return 0, false
	}
}
