// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package tar

import (
	"github.com/bmatcuk/doublestar/v4"
)

// An Archive is the decoded contents of a tar buffer.
// It is never modified after [Parse] returns it,
// so it is safe for concurrent use by multiple goroutines.
type Archive struct {
	entries []Entry
}

// Len returns the number of entries.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Names returns the entry names in archive order. Duplicates are kept.
func (a *Archive) Names() []string {
	names := make([]string, len(a.entries))
	for i, e := range a.entries {
		names[i] = e.Name
	}
	return names
}

// Payload returns a copy of the data of the first entry named exactly name.
func (a *Archive) Payload(name string) ([]byte, error) {
	i := a.lookup(name)
	if i < 0 {
		return nil, ErrFileNotFound
	}
	return clonePayload(a.entries[i].Payload), nil
}

// Entry returns a copy of the first entry named exactly name.
func (a *Archive) Entry(name string) (Entry, bool) {
	i := a.lookup(name)
	if i < 0 {
		return Entry{}, false
	}
	return a.entries[i].clone(), true
}

// Entries returns copies of all entries in archive order.
func (a *Archive) Entries() []Entry {
	ret := make([]Entry, len(a.entries))
	for i, e := range a.entries {
		ret[i] = e.clone()
	}
	return ret
}

// Match returns the names matching a doublestar pattern, in archive order.
// An invalid pattern returns [doublestar.ErrBadPattern].
func (a *Archive) Match(pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}
	var names []string
	for _, e := range a.entries {
		if ok, _ := doublestar.Match(pattern, e.Name); ok {
			names = append(names, e.Name)
		}
	}
	return names, nil
}

// lookup returns the index of the first entry named name, or -1.
func (a *Archive) lookup(name string) int {
	for i := range a.entries {
		if a.entries[i].Name == name {
			return i
		}
	}
	return -1
}
