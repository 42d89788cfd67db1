// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package fileid

import (
	"errors"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

func Get(fsys fs.FS, pathname string) (ID, error) {
	// Use statx to get access to the birth time of the file
	inf, err := fs.Lstat(fsys, pathname)
	if err != nil {
		return ID{}, err
	}
	if inf.Mode().Type() == fs.ModeSymlink {
		return ID{}, errors.New("is a symlink")
	}

	f, err := fsys.Open(pathname)
	if err != nil {
		return ID{}, err
	}
	defer f.Close()

	osf, ok := f.(*os.File)
	if !ok {
		return ID{}, ErrNotOS
	}
	conn, err := osf.SyscallConn()
	if err != nil {
		return ID{}, err
	}

	var stat unix.Statx_t
	var inerr error
	err = conn.Control(func(fd uintptr) {
		inerr = unix.Statx(int(fd), "",
			unix.AT_EMPTY_PATH|unix.AT_STATX_SYNC_AS_STAT,
			unix.STATX_INO|unix.STATX_BTIME,
			&stat)
	})
	if err != nil {
		return ID{}, err
	} else if inerr != nil {
		return ID{}, inerr
	}

	// filesystems without a birth time leave it zero, which is still stable
	return makeID(stat.Ino, stat.Btime.Sec, stat.Btime.Nsec, pathname), nil
}
