//go:build !unix

package fileid

import "io/fs"

func inode(fs.FileInfo) (uint64, bool) { return 0, false }
