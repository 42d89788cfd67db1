// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/elliotnunn/memtar/tar"
	"github.com/spf13/cobra"
)

func newTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree FILE",
		Short: "Walk an archive as a directory tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadPath(args[0])
			if err != nil {
				return err
			}
			return dumpFS(cmd.OutOrStdout(), a.FS())
		},
	}
}

func dumpFS(w io.Writer, fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%#v\n", p)
		i, err := d.Info()
		if err != nil {
			fmt.Fprintf(w, "    dump error: %s\n", err.Error())
			return fs.SkipDir
		}

		fmt.Fprintf(w, "    %v size=%d", i.Mode(), i.Size())
		if t, ok := i.Sys().(tar.EntryType); ok {
			fmt.Fprintf(w, " type=%v", t)
		} else {
			fmt.Fprintf(w, " implicit")
		}
		fmt.Fprintln(w)
		return nil
	})
}
