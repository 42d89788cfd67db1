// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package fileid identifies files on an OS filesystem in a way that survives
// renames of the containing directory and reopening the file.
package fileid

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"path"

	"github.com/cespare/xxhash/v2"
)

// ID = (64 bits of inode number) + (32 bits of hash of (creation time + filename))
type ID [12]byte

var ErrNotOS = errors.New("not a file on the OS filesystem")

func (id ID) String() string { return hex.EncodeToString(id[:]) }

func makeID(ino uint64, birthSec int64, birthNsec uint32, pathname string) ID {
	var id ID
	binary.BigEndian.PutUint64(id[:], ino)
	var h xxhash.Digest
	binary.Write(&h, binary.BigEndian, birthSec)
	binary.Write(&h, binary.BigEndian, birthNsec)
	h.WriteString(path.Base(pathname))
	binary.BigEndian.PutUint32(id[8:], uint32(h.Sum64()))
	return id
}
