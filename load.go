// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/elliotnunn/memtar/internal/mapfile"
	"github.com/elliotnunn/memtar/tar"
)

// parseErrors are the failures that say something lasting about a file
var parseErrors = []error{tar.ErrNotATarFile, tar.ErrDamagedHeader, tar.ErrSizeUnreadable}

// parseFailure returns the parse error wrapped in err, if there is one.
func parseFailure(err error) (error, bool) {
	for _, e := range parseErrors {
		if errors.Is(err, e) {
			return e, true
		}
	}
	return nil, false
}

// loadArchive reads the named file into memory, refusing files over limit,
// and parses it. The buffer is released before returning because the
// archive owns copies of every payload.
func loadArchive(fsys fs.FS, name string, limit int64) (*tar.Archive, error) {
	buf, err := mapfile.Open(fsys, name, limit)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	var a *tar.Archive
	err = buf.Use(func(data []byte) (err error) {
		a, err = tar.Parse(data)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		for _, e := range a.Entries() {
			slog.Debug("entry", "path", name, "name", e.Name, "offset", e.Offset, "size", e.Size, "type", e.Type)
		}
	}
	return a, nil
}

// loadPath is loadArchive for a host path.
func loadPath(p string) (*tar.Archive, error) {
	p, err := filepath.Abs(p)
	if err != nil {
		return nil, err
	}
	return loadArchive(os.DirFS(filepath.Dir(p)), filepath.Base(p), memLimit)
}
