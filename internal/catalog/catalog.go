// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package catalog remembers, across runs, how parsing went for each archive
// file, so that a file already known to be damaged can be refused without
// reading it again.
package catalog

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble/v2"
	"github.com/elliotnunn/memtar/tar"
)

// A Record is the outcome of one parse.
type Record struct {
	Entries int   // valid when Err is nil
	Err     error // one of the tar package's parse errors, or nil
}

// parse errors by their stored code; code 0 is success
var codes = []error{nil, tar.ErrNotATarFile, tar.ErrDamagedHeader, tar.ErrSizeUnreadable}

var errCorrupt = errors.New("catalog: corrupt record")

// A Catalog is safe for concurrent use by multiple goroutines.
type Catalog struct {
	db *pebble.DB
}

// Open opens or creates a catalog in the directory dir.
func Open(dir string) (*Catalog, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// Get returns the record stored under key. ok is false if there is none.
func (c *Catalog) Get(key string) (r Record, ok bool, err error) {
	val, closer, err := c.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return Record{}, false, nil
	} else if err != nil {
		return Record{}, false, err
	}
	defer closer.Close()

	r, err = decode(val)
	if err != nil {
		return Record{}, false, err
	}
	return r, true, nil
}

// Put stores r under key. Errors other than the tar package's parse errors
// say nothing lasting about the file, so they are refused.
func (c *Catalog) Put(key string, r Record) error {
	val, err := encode(r)
	if err != nil {
		return err
	}
	return c.db.Set([]byte(key), val, pebble.NoSync)
}

// Forget deletes any record stored under key.
func (c *Catalog) Forget(key string) error {
	return c.db.Delete([]byte(key), pebble.NoSync)
}

// record = (code byte) + (uvarint entry count)
func encode(r Record) ([]byte, error) {
	for code, err := range codes {
		if err == r.Err {
			val := []byte{byte(code)}
			return binary.AppendUvarint(val, uint64(r.Entries)), nil
		}
	}
	return nil, fmt.Errorf("catalog: cannot record error %q", r.Err)
}

func decode(val []byte) (Record, error) {
	if len(val) < 2 || int(val[0]) >= len(codes) {
		return Record{}, errCorrupt
	}
	n, k := binary.Uvarint(val[1:])
	if k <= 0 || 1+k != len(val) {
		return Record{}, errCorrupt
	}
	return Record{Entries: int(n), Err: codes[val[0]]}, nil
}
