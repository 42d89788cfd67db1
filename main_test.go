// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	gotar "archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type testFile struct {
	name     string
	typeflag byte
	body     string
}

var sampleFiles = []testFile{
	{"dir/", gotar.TypeDir, ""},
	{"dir/file.txt", gotar.TypeReg, "hello"},
	{"dir/sub/deep.go", gotar.TypeReg, "package deep\n"},
	{"readme", gotar.TypeReg, "read me"},
	{"readme", gotar.TypeReg, "second copy"},
}

func writeTar(t *testing.T, path string, files []testFile) {
	t.Helper()
	var buf bytes.Buffer
	w := gotar.NewWriter(&buf)
	for _, f := range files {
		err := w.WriteHeader(&gotar.Header{
			Typeflag: f.typeflag,
			Name:     f.name,
			Size:     int64(len(f.body)),
			Mode:     0o644,
			ModTime:  time.Unix(1700000000, 0),
			Format:   gotar.FormatUSTAR,
		})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(w, f.body); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func sample(t *testing.T) string {
	p := filepath.Join(t.TempDir(), "sample.tar")
	writeTar(t, p, sampleFiles)
	return p
}

func TestLs(t *testing.T) {
	p := sample(t)
	got, err := run(t, "ls", p)
	if err != nil {
		t.Fatal(err)
	}
	want := "dir/\ndir/file.txt\ndir/sub/deep.go\nreadme\nreadme\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ls mismatch (-want +got):\n%s", diff)
	}

	got, err = run(t, "ls", p, "**/*.go")
	if err != nil || got != "dir/sub/deep.go\n" {
		t.Errorf("ls with pattern = %q, %v", got, err)
	}

	if _, err := run(t, "ls", p, "[oops"); err == nil {
		t.Error("expected a bad pattern to fail")
	}
}

func TestLsLong(t *testing.T) {
	got, err := run(t, "ls", "-l", "--digest", sample(t), "dir/file.txt")
	if err != nil {
		t.Fatal(err)
	}
	fields := strings.Fields(got)
	if len(fields) != 6 {
		t.Fatalf("unexpected ls -l line %q", got)
	}
	want := []string{"NormalFile", "5", "512"}
	if diff := cmp.Diff(want, fields[:3]); diff != "" {
		t.Errorf("ls -l mismatch (-want +got):\n%s", diff)
	}
	// sha256 of "hello"
	if fields[4] != "sha256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Errorf("unexpected digest %s", fields[4])
	}
	if fields[5] != "dir/file.txt" {
		t.Errorf("unexpected name %s", fields[5])
	}
}

func TestLsLongDuplicates(t *testing.T) {
	got, err := run(t, "ls", "-l", sample(t), "readme")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 2 || lines[0] == lines[1] {
		t.Errorf("expected two distinct lines for the duplicate, got %q", got)
	}
}

func TestCat(t *testing.T) {
	p := sample(t)
	got, err := run(t, "cat", p, "readme")
	if err != nil || got != "read me" {
		t.Errorf("cat readme = %q, %v; expected the first copy", got, err)
	}
	if _, err := run(t, "cat", p, "nothing"); err == nil || !strings.Contains(err.Error(), "File with provided filename could not be found") {
		t.Errorf("cat of a missing name: %v", err)
	}
}

func TestCatNotATar(t *testing.T) {
	p := filepath.Join(t.TempDir(), "short.tar")
	if err := os.WriteFile(p, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := run(t, "cat", p, "x")
	if err == nil || !strings.Contains(err.Error(), "Not a tar file") {
		t.Errorf("expected Not a tar file, got %v", err)
	}
}

func TestTree(t *testing.T) {
	got, err := run(t, "tree", sample(t))
	if err != nil {
		t.Fatal(err)
	}
	var paths []string
	for _, l := range strings.Split(got, "\n") {
		if strings.HasPrefix(l, `"`) {
			paths = append(paths, l)
		}
	}
	want := []string{`"."`, `"dir"`, `"dir/file.txt"`, `"dir/sub"`, `"dir/sub/deep.go"`, `"readme"`}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(got, "size=5 type=NormalFile") || !strings.Contains(got, "implicit") {
		t.Errorf("tree output lacks detail:\n%s", got)
	}
}
