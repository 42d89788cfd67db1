// Copyright (c) Elliot Nunn
// Licensed under the MIT license

//go:build unix

package mapfile

import (
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

// mmap maps an OS file read-only. ok is false if f cannot be mapped,
// in which case the caller should read it instead.
func mmap(f fs.File, size int64) (b *Buffer, ok bool, err error) {
	osf, isos := f.(*os.File)
	if !isos {
		return nil, false, nil
	}
	if size == 0 {
		return &Buffer{data: []byte{}}, true, nil // zero-length mappings are EINVAL
	}
	if int64(int(size)) != size {
		return nil, true, &fs.PathError{Op: "map", Path: osf.Name(), Err: ErrTooLarge}
	}

	data, err := unix.Mmap(int(osf.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, false, nil // e.g. a pipe or procfs file, which reading can still handle
	}
	return &Buffer{data: data, unmap: unix.Munmap}, true, nil
}
