// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package tar

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"
)

// FS presents the archive as a read-only [fs.FS].
//
// Only regular files and directories are visible, under names that are
// valid [fs.ValidPath] names once a leading "./" and trailing slashes are
// removed. When several entries share a name the first one wins, as with
// [Archive.Payload]. Parent directories that the archive does not list are
// supplied.
func (a *Archive) FS() fs.FS {
	fsys := &archiveFS{nodes: map[string]*node{
		".": {path: ".", mode: fs.ModeDir | 0o555},
	}}
	for i := range a.entries {
		e := &a.entries[i]
		name, ok := cleanName(e.Name)
		if !ok {
			continue
		}
		if e.Type != Directory && !e.Type.isRegular() {
			continue // links, devices and metadata are not presented
		}
		if got, exist := fsys.nodes[name]; exist {
			if got.entry == nil && e.Type == Directory {
				got.entry = e // an implicit directory, now listed
			}
			continue
		}
		fsys.add(name, &node{path: name, entry: e, mode: e.mode()})
	}
	for _, n := range fsys.nodes {
		slices.SortFunc(n.children, func(x, y *node) int {
			return strings.Compare(x.base(), y.base())
		})
	}
	return fsys
}

func cleanName(name string) (string, bool) {
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimRight(name, "/")
	if name == "." || !fs.ValidPath(name) {
		return "", false
	}
	return name, true
}

type archiveFS struct {
	nodes map[string]*node
}

var (
	_ fs.ReadFileFS = new(archiveFS)
	_ fs.ReadDirFS  = new(archiveFS)
	_ fs.StatFS     = new(archiveFS)
)

type node struct {
	path     string
	entry    *Entry // nil for an implicit directory
	mode     fs.FileMode
	children []*node
}

func (n *node) base() string { return path.Base(n.path) }

// add links n into its parent, creating implicit parents as needed.
// It fails if some ancestor is already a file.
func (fsys *archiveFS) add(name string, n *node) bool {
	dir := path.Dir(name)
	parent, ok := fsys.nodes[dir]
	if !ok {
		parent = &node{path: dir, mode: fs.ModeDir | 0o555}
		if !fsys.add(dir, parent) {
			return false
		}
	} else if !parent.mode.IsDir() {
		return false
	}
	fsys.nodes[name] = n
	parent.children = append(parent.children, n)
	return true
}

func (fsys *archiveFS) lookup(op, name string) (*node, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	n, ok := fsys.nodes[name]
	if !ok {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	return n, nil
}

func (fsys *archiveFS) Open(name string) (fs.File, error) {
	n, err := fsys.lookup("open", name)
	if err != nil {
		return nil, err
	}
	if n.mode.IsDir() {
		return &dir{node: n}, nil
	}
	return &file{node: n, Reader: bytes.NewReader(n.entry.Payload)}, nil
}

func (fsys *archiveFS) ReadFile(name string) ([]byte, error) {
	n, err := fsys.lookup("readfile", name)
	if err != nil {
		return nil, err
	}
	if n.mode.IsDir() {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}
	return clonePayload(n.entry.Payload), nil
}

func (fsys *archiveFS) ReadDir(name string) ([]fs.DirEntry, error) {
	n, err := fsys.lookup("readdir", name)
	if err != nil {
		return nil, err
	}
	if !n.mode.IsDir() {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	return dirEntries(n.children), nil
}

func (fsys *archiveFS) Stat(name string) (fs.FileInfo, error) {
	n, err := fsys.lookup("stat", name)
	if err != nil {
		return nil, err
	}
	return fileInfo{n}, nil
}

// file is an open regular file
type file struct {
	*node
	*bytes.Reader
}

func (f *file) Stat() (fs.FileInfo, error) { return fileInfo{f.node}, nil }
func (f *file) Close() error               { return nil }

// dir is an open directory
type dir struct {
	*node
	listOffset int
}

var _ fs.ReadDirFile = new(dir) // method check

func (d *dir) Stat() (fs.FileInfo, error) { return fileInfo{d.node}, nil }
func (d *dir) Close() error               { return nil }

func (d *dir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.path, Err: fs.ErrInvalid}
}

func (d *dir) ReadDir(n int) ([]fs.DirEntry, error) {
	rest := d.children[d.listOffset:]
	if n > 0 {
		if len(rest) == 0 {
			return nil, io.EOF
		}
		rest = rest[:min(n, len(rest))]
	}
	d.listOffset += len(rest)
	return dirEntries(rest), nil
}

func dirEntries(nodes []*node) []fs.DirEntry {
	ret := make([]fs.DirEntry, len(nodes))
	for i, n := range nodes {
		ret[i] = fileInfo{n}
	}
	return ret
}

// fileInfo serves as both fs.FileInfo and fs.DirEntry
type fileInfo struct{ n *node }

var (
	_ fs.FileInfo = fileInfo{}
	_ fs.DirEntry = fileInfo{}
)

func (fi fileInfo) Name() string               { return fi.n.base() }
func (fi fileInfo) Mode() fs.FileMode          { return fi.n.mode }
func (fi fileInfo) Type() fs.FileMode          { return fi.n.mode.Type() }
func (fi fileInfo) IsDir() bool                { return fi.n.mode.IsDir() }
func (fi fileInfo) ModTime() time.Time         { return time.Time{} }
func (fi fileInfo) Info() (fs.FileInfo, error) { return fi, nil }
func (fi fileInfo) String() string             { return fs.FormatFileInfo(fi) }

func (fi fileInfo) Size() int64 {
	if fi.n.entry == nil || fi.n.mode.IsDir() {
		return 0
	}
	return fi.n.entry.Size
}

// Sys returns the EntryType, or nil for an implicit directory.
func (fi fileInfo) Sys() any {
	if fi.n.entry == nil {
		return nil
	}
	return fi.n.entry.Type
}
