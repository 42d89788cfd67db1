// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package tar

import (
	"bytes"
	"errors"
	"testing"

	"pgregory.net/rapid"
)

type genEntry struct {
	name    string
	flag    byte
	payload []byte
}

var (
	genName    = rapid.StringMatching(`[a-zA-Z0-9._/-]{1,100}`)
	genFlag    = rapid.SampledFrom([]byte{TypeReg, TypeRegA, TypeDir, TypeSymlink, TypeCont, TypeXHeader, 'L'})
	genPayload = rapid.SliceOfN(rapid.Byte(), 0, 2000)
)

func drawEntries(t *rapid.T) []genEntry {
	n := rapid.IntRange(0, 8).Draw(t, "count")
	ents := make([]genEntry, n)
	for i := range ents {
		ents[i] = genEntry{
			name:    genName.Draw(t, "name"),
			flag:    genFlag.Draw(t, "flag"),
			payload: genPayload.Draw(t, "payload"),
		}
	}
	return ents
}

func build(ents []genEntry, trailer bool) []byte {
	var buf []byte
	for _, e := range ents {
		buf = append(buf, makeEntry(e.name, e.payload, e.flag)...)
	}
	if trailer || len(buf) == 0 {
		buf = append(buf, zeroBlock...)
		buf = append(buf, zeroBlock...)
	}
	return buf
}

func TestRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ents := drawEntries(t)
		buf := build(ents, rapid.Bool().Draw(t, "trailer"))

		a, err := Parse(buf)
		if err != nil {
			t.Fatal(err)
		}
		got := a.Entries()
		if len(got) != len(ents) {
			t.Fatalf("expected %d entries, got %d", len(ents), len(got))
		}

		var off int64
		for i, e := range got {
			if e.Name != ents[i].name {
				t.Fatalf("entry %d: expected name %q, got %q", i, ents[i].name, e.Name)
			}
			if e.Size != int64(len(e.Payload)) || !bytes.Equal(e.Payload, ents[i].payload) {
				t.Fatalf("entry %d: payload mismatch (size %d)", i, e.Size)
			}
			if e.Type != entryType(ents[i].flag) {
				t.Fatalf("entry %d: expected %v, got %v", i, entryType(ents[i].flag), e.Type)
			}
			if e.Offset != off {
				t.Fatalf("entry %d: expected offset %d, got %d", i, off, e.Offset)
			}
			off += blockSize + (e.Size+blockSize-1)/blockSize*blockSize
		}
	})
}

func TestShortBufferProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		buf := rapid.SliceOfN(rapid.Byte(), 0, blockSize-1).Draw(t, "buf")
		if _, err := Parse(buf); !errors.Is(err, ErrNotATarFile) {
			t.Fatalf("expected ErrNotATarFile, got %v", err)
		}
	})
}

func TestTruncationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ents := drawEntries(t)
		ents = append(ents, genEntry{name: genName.Draw(t, "last"), flag: TypeReg, payload: genPayload.Draw(t, "lastpayload")})
		buf := build(ents, false)

		// cut inside the last header or its payload, leaving at least one block
		lastStart := len(buf) - len(makeEntry(ents[len(ents)-1].name, ents[len(ents)-1].payload, TypeReg))
		lastEnd := lastStart + blockSize + len(ents[len(ents)-1].payload)
		lo, hi := max(lastStart+1, blockSize), lastEnd-1
		if lo > hi {
			t.Skip("lone empty entry cannot be cut")
		}
		cut := rapid.IntRange(lo, hi).Draw(t, "cut")

		if _, err := Parse(buf[:cut]); !errors.Is(err, ErrDamagedHeader) {
			t.Fatalf("cut at %d of %d: expected ErrDamagedHeader, got %v", cut, len(buf), err)
		}
	})
}

func TestLookupProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ents := drawEntries(t)
		a, err := Parse(build(ents, true))
		if err != nil {
			t.Fatal(err)
		}

		for _, e := range ents {
			got, err := a.Payload(e.name)
			if err != nil {
				t.Fatal(err)
			}
			for _, first := range ents {
				if first.name == e.name {
					if !bytes.Equal(got, first.payload) {
						t.Fatalf("Payload(%q) did not return the first match", e.name)
					}
					break
				}
			}
		}

		missing := genName.Draw(t, "missing")
		for _, e := range ents {
			if e.name == missing {
				return
			}
		}
		if _, err := a.Payload(missing); !errors.Is(err, ErrFileNotFound) {
			t.Fatalf("Payload(%q): expected ErrFileNotFound, got %v", missing, err)
		}
	})
}
