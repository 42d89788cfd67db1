//go:build !linux && !darwin

package fileid

import (
	"io/fs"
)

// Get falls back on the inode number and name where there is no portable birth time.
func Get(fsys fs.FS, pathname string) (ID, error) {
	inf, err := fs.Stat(fsys, pathname)
	if err != nil {
		return ID{}, err
	}
	ino, ok := inode(inf)
	if !ok {
		return ID{}, ErrNotOS
	}
	return makeID(ino, 0, 0, pathname), nil
}
