// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	_ "crypto/sha256" // for opencontainers/go-digest
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"
)

func newLsCommand() *cobra.Command {
	var long, withDigest bool
	cmd := &cobra.Command{
		Use:   "ls FILE [PATTERN]",
		Short: "List the entries of an archive",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadPath(args[0])
			if err != nil {
				return err
			}

			names := a.Names()
			if len(args) == 2 {
				names, err = a.Match(args[1])
				if err != nil {
					return fmt.Errorf("%s: %w", args[1], err)
				}
			}

			w := cmd.OutOrStdout()
			if !long && !withDigest {
				for _, n := range names {
					fmt.Fprintln(w, n)
				}
				return nil
			}

			// Match keeps duplicates, so walk the entries to pair each name with its own payload
			want := make(map[string]bool, len(names))
			for _, n := range names {
				want[n] = true
			}
			for _, e := range a.Entries() {
				if !want[e.Name] {
					continue
				}
				if long {
					fmt.Fprintf(w, "%-22s %10d %10d %016x ", e.Type, e.Size, e.Offset, xxhash.Sum64(e.Payload))
				}
				if withDigest {
					fmt.Fprintf(w, "%s ", digest.FromBytes(e.Payload))
				}
				fmt.Fprintln(w, e.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, "show type, size, offset and hash of each entry")
	cmd.Flags().BoolVar(&withDigest, "digest", false, "show the sha256 digest of each payload")
	return cmd
}

func newCatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cat FILE NAME",
		Short: "Write the payload of one entry to standard output",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadPath(args[0])
			if err != nil {
				return err
			}
			p, err := a.Payload(args[1])
			if err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}
			_, err = cmd.OutOrStdout().Write(p)
			return err
		},
	}
}
