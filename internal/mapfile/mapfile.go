// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package mapfile loads a whole file into memory as a single byte slice,
// refusing files over a size limit before reading any of them.
package mapfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"runtime/debug"
)

var (
	ErrTooLarge = errors.New("file exceeds the size limit")
	ErrFault    = errors.New("mapped file shrank while being read")
)

// A Buffer holds the contents of one file. Bytes must not be modified,
// and must not be used after Close.
type Buffer struct {
	data  []byte
	unmap func([]byte) error
}

func (b *Buffer) Bytes() []byte { return b.data }
func (b *Buffer) Len() int      { return len(b.data) }

// Use calls fn with the contents. If the file is truncated by another
// process while it is mapped, touching the lost pages faults; inside fn
// that fault is returned as ErrFault rather than killing the process.
// fn must not keep data after returning.
func (b *Buffer) Use(fn func(data []byte) error) (err error) {
	defer debug.SetPanicOnFault(debug.SetPanicOnFault(true))
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if fault, ok := r.(interface{ Addr() uintptr }); ok {
			err = fmt.Errorf("%w (address %#x)", ErrFault, fault.Addr())
			return
		}
		panic(r)
	}()
	return fn(b.data)
}

// Close releases the mapping, if any. It is safe to call more than once.
func (b *Buffer) Close() error {
	data, unmap := b.data, b.unmap
	b.data, b.unmap = nil, nil
	if unmap == nil {
		return nil
	}
	return unmap(data)
}

// Open reads name from fsys, memory-mapping it where the platform allows.
// Files larger than limit bytes fail with ErrTooLarge.
func Open(fsys fs.FS, name string, limit int64) (*Buffer, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, &fs.PathError{Op: "map", Path: name, Err: fs.ErrInvalid}
	}
	if fi.Size() > limit {
		return nil, &fs.PathError{Op: "map", Path: name,
			Err: fmt.Errorf("%w (%d > %d bytes)", ErrTooLarge, fi.Size(), limit)}
	}

	if b, ok, err := mmap(f, fi.Size()); ok {
		return b, err
	}

	// the size is only advisory for a non-OS file, so keep enforcing the limit
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, &fs.PathError{Op: "map", Path: name, Err: ErrTooLarge}
	}
	return &Buffer{data: data}, nil
}
