//go:build !unix

package mapfile

import "io/fs"

func mmap(fs.File, int64) (*Buffer, bool, error) { return nil, false, nil }
