// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package tar decodes tar archives that are held entirely in memory.
//
// Unlike [archive/tar] it never streams. [Parse] takes the whole archive as
// a byte slice, walks it header by header, and returns an [Archive] that owns
// a private copy of every payload. Only the USTAR name, size and type flag
// fields are decoded; checksums, extended headers and links are not
// interpreted.
package tar

import (
	"errors"
	"io/fs"
)

// The messages are shown to users as-is, so they are stable.
var (
	ErrNotATarFile    = errors.New("Not a tar file")
	ErrDamagedHeader  = errors.New("File header could not be read")
	ErrSizeUnreadable = errors.New("Could not read file entry size")
	ErrFileNotFound   = errors.New("File with provided filename could not be found")
)

// Type flags found in the header.
const (
	// Type '0' indicates a regular file.
	TypeReg = '0'

	// Pre-POSIX archives leave the flag empty for regular files.
	TypeRegA = '\x00'

	TypeLink    = '1' // Hard link
	TypeSymlink = '2' // Symbolic link
	TypeChar    = '3' // Character device node
	TypeBlock   = '4' // Block device node
	TypeDir     = '5' // Directory
	TypeFifo    = '6' // FIFO node
	TypeCont    = '7' // Contiguous file

	// PAX records relevant to all subsequent files.
	TypeXGlobalHeader = 'g'

	// PAX records relevant to the next file only.
	TypeXHeader = 'x'
)

// EntryType classifies an entry by its header type flag.
type EntryType int

const (
	NormalFile EntryType = iota
	HardLink
	SymbolicLink
	CharacterSpecial
	BlockSpecial
	Directory
	FIFO
	ContiguousFile
	GlobalExtendedHeader
	NextFileExtendedHeader
	VendorSpecific
)

var entryTypeNames = [...]string{
	NormalFile:             "NormalFile",
	HardLink:               "HardLink",
	SymbolicLink:           "SymbolicLink",
	CharacterSpecial:       "CharacterSpecial",
	BlockSpecial:           "BlockSpecial",
	Directory:              "Directory",
	FIFO:                   "FIFO",
	ContiguousFile:         "ContiguousFile",
	GlobalExtendedHeader:   "GlobalExtendedHeader",
	NextFileExtendedHeader: "NextFileExtendedHeader",
	VendorSpecific:         "VendorSpecific",
}

func (t EntryType) String() string {
	if t < 0 || int(t) >= len(entryTypeNames) {
		return "EntryType(?)"
	}
	return entryTypeNames[t]
}

// entryType maps a header type flag to an EntryType.
// POSIX reserves 'A' to 'Z' for vendors (GNU 'L', 'K' and 'S' land there),
// and asks readers to treat any other unknown flag as a regular file.
func entryType(flag byte) EntryType {
	switch flag {
	case TypeReg, TypeRegA:
		return NormalFile
	case TypeLink:
		return HardLink
	case TypeSymlink:
		return SymbolicLink
	case TypeChar:
		return CharacterSpecial
	case TypeBlock:
		return BlockSpecial
	case TypeDir:
		return Directory
	case TypeFifo:
		return FIFO
	case TypeCont:
		return ContiguousFile
	case TypeXGlobalHeader:
		return GlobalExtendedHeader
	case TypeXHeader:
		return NextFileExtendedHeader
	}
	if 'A' <= flag && flag <= 'Z' {
		return VendorSpecific
	}
	return NormalFile
}

// isRegular reports whether entries of this type hold ordinary file data.
func (t EntryType) isRegular() bool {
	return t == NormalFile || t == ContiguousFile
}

// An Entry is one decoded member of an archive.
type Entry struct {
	Type EntryType
	Name string // never empty
	Size int64  // always len(Payload)

	// Offset of the header block within the parsed buffer.
	Offset int64

	Payload []byte
}

func (e Entry) clone() Entry {
	e.Payload = clonePayload(e.Payload)
	return e
}

// mode is the file mode presented by the FS view.
// Permissions are not decoded from the header, so every member is read-only.
func (e *Entry) mode() fs.FileMode {
	if e.Type == Directory {
		return fs.ModeDir | 0o555
	}
	return 0o444
}

// clonePayload never returns nil, so an empty payload stays distinguishable
// from a missing one.
func clonePayload(p []byte) []byte {
	return append(make([]byte, 0, len(p)), p...)
}
