// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package fileid

import (
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

func Get(fsys fs.FS, pathname string) (ID, error) {
	f, err := fsys.Open(pathname)
	if err != nil {
		return ID{}, err
	}
	defer f.Close()
	osf, ok := f.(*os.File)
	if !ok {
		return ID{}, ErrNotOS
	}

	var stat unix.Stat_t
	if err := unix.Fstat(int(osf.Fd()), &stat); err != nil {
		return ID{}, err
	}
	return makeID(stat.Ino, stat.Birthtimespec.Sec, uint32(stat.Birthtimespec.Nsec), pathname), nil
}
