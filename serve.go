// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	gopath "path"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/elliotnunn/memtar/internal/archivecache"
	"github.com/elliotnunn/memtar/internal/catalog"
	"github.com/elliotnunn/memtar/internal/fileid"
	"github.com/elliotnunn/memtar/internal/mapfile"
	"github.com/elliotnunn/memtar/tar"
	"github.com/gorilla/mux"
	"github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var configPath string
	cfg := defaultServeConfig()
	cmd := &cobra.Command{
		Use:   "serve DIR",
		Short: "Serve the tar archives in a directory over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				file, err := parseConfig(configPath)
				if err != nil {
					return err
				}
				// flags given explicitly beat the file
				flags := cmd.Flags()
				if !flags.Changed("addr") {
					cfg.Addr = file.Addr
				}
				if !flags.Changed("db") {
					cfg.DB = file.DB
				}
				if !flags.Changed("cache") {
					cfg.CacheEntries = file.CacheEntries
				}
				cfg.MaxGB = file.MaxGB
			}
			limit, err := cfg.limit()
			if err != nil {
				return fmt.Errorf("max_gb: %w", err)
			}

			var cat *catalog.Catalog
			if cfg.DB != "" {
				cat, err = catalog.Open(cfg.DB)
				if err != nil {
					return err
				}
				defer cat.Close()
			}

			s := newServer(os.DirFS(args[0]), limit, archivecache.New(cfg.CacheEntries), cat)
			slog.Info("serveStart", "addr", cfg.Addr, "dir", args[0], "limit", limit)
			return http.ListenAndServe(cfg.Addr, s.routes())
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "TOML file of settings")
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "address to listen on")
	flags.StringVar(&cfg.DB, "db", cfg.DB, "directory of the persistent parse catalog (none if empty)")
	flags.IntVar(&cfg.CacheEntries, "cache", cfg.CacheEntries, "number of parsed archives to keep in memory")
	return cmd
}

type server struct {
	fsys  fs.FS
	limit int64
	cache *archivecache.Cache
	cat   *catalog.Catalog // nil if not persisting
}

func newServer(fsys fs.FS, limit int64, cache *archivecache.Cache, cat *catalog.Catalog) *server {
	return &server{fsys: fsys, limit: limit, cache: cache, cat: cat}
}

func (s *server) routes() http.Handler {
	r := mux.NewRouter().SkipClean(true)
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/a/{archive}", s.handleNames).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/a/{archive}/{name:.+}", s.handlePayload).Methods(http.MethodGet, http.MethodHead)
	return r
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	names, err := doublestar.Glob(s.fsys, "*.tar", doublestar.WithFilesOnly())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
}

func (s *server) handleNames(w http.ResponseWriter, r *http.Request) {
	a, ok := s.archiveOrError(w, mux.Vars(r)["archive"])
	if !ok {
		return
	}

	names := a.Names()
	if glob := r.URL.Query().Get("glob"); glob != "" {
		var err error
		names, err = a.Match(glob)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
}

func (s *server) handlePayload(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	a, ok := s.archiveOrError(w, vars["archive"])
	if !ok {
		return
	}

	p, err := a.Payload(vars["name"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("ETag", `"`+digest.FromBytes(p).String()+`"`)
	http.ServeContent(w, r, gopath.Base(vars["name"]), time.Time{}, bytes.NewReader(p))
}

// archiveOrError writes the error response itself when it returns false.
func (s *server) archiveOrError(w http.ResponseWriter, name string) (*tar.Archive, bool) {
	a, err := s.archive(name)
	if err == nil {
		return a, true
	}
	if e, ok := parseFailure(err); ok {
		http.Error(w, e.Error(), http.StatusUnprocessableEntity)
	} else if errors.Is(err, mapfile.ErrTooLarge) {
		http.Error(w, "archive too large", http.StatusRequestEntityTooLarge)
	} else if errors.Is(err, fs.ErrNotExist) {
		http.Error(w, "archive not found", http.StatusNotFound)
	} else {
		slog.Error("archiveLoadError", "path", name, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
	return nil, false
}

// archive returns the parsed archive, from memory if possible.
// A file the catalog knows to be damaged is refused without being read.
func (s *server) archive(name string) (*tar.Archive, error) {
	if !strings.HasSuffix(name, ".tar") || !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	fi, err := fs.Stat(s.fsys, name)
	if err != nil {
		return nil, err
	}
	key, err := s.key(name, fi)
	if err != nil {
		return nil, err
	}

	var known catalog.Record
	var haveRecord bool
	if s.cat != nil {
		rec, ok, err := s.cat.Get(key)
		if err != nil {
			slog.Warn("catalogReadError", "path", name, "err", err)
			s.forget(key)
		} else if ok && rec.Err != nil {
			slog.Debug("catalogHit", "path", name, "err", rec.Err)
			return nil, fmt.Errorf("%s: %w", name, rec.Err)
		} else if ok {
			known, haveRecord = rec, true
		}
	}

	return s.cache.Get(key, func() (*tar.Archive, error) {
		a, err := loadArchive(s.fsys, name, s.limit)
		if perr, ok := parseFailure(err); ok {
			slog.Warn("archiveParseError", "path", name, "err", err)
			s.record(key, catalog.Record{Err: perr})
		} else if err == nil {
			switch {
			case !haveRecord:
				s.record(key, catalog.Record{Entries: a.Len()})
			case known.Entries != a.Len():
				// same identity, size and mtime but different contents
				slog.Warn("catalogStale", "path", name, "was", known.Entries, "now", a.Len())
				s.record(key, catalog.Record{Entries: a.Len()})
			default:
				slog.Debug("catalogConfirmed", "path", name, "entries", a.Len())
			}
		}
		return a, err
	})
}

func (s *server) record(key string, rec catalog.Record) {
	if s.cat == nil {
		return
	}
	if err := s.cat.Put(key, rec); err != nil {
		slog.Warn("catalogWriteError", "key", key, "err", err)
	}
}

func (s *server) forget(key string) {
	if err := s.cat.Forget(key); err != nil {
		slog.Warn("catalogWriteError", "key", key, "err", err)
	}
}

// key names one version of one file; rewriting the file changes it
func (s *server) key(name string, fi fs.FileInfo) (string, error) {
	id, err := fileid.Get(s.fsys, name)
	if errors.Is(err, fileid.ErrNotOS) {
		return fmt.Sprintf("name:%s:%d:%d", name, fi.Size(), fi.ModTime().UnixNano()), nil
	} else if err != nil {
		return "", err
	}
	return fmt.Sprintf("id:%s:%d:%d", id, fi.Size(), fi.ModTime().UnixNano()), nil
}
