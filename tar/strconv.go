// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package tar

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"
)

// parser remembers the first error so that several fields can be decoded
// before checking.
type parser struct {
	err error
}

// parseString decodes a NUL-padded text field.
// Only trailing NULs are removed. Invalid UTF-8 is replaced, never rejected:
// each maximal subpart of an ill-formed sequence becomes one U+FFFD.
func (*parser) parseString(b []byte) string {
	b = bytes.TrimRight(b, "\x00")
	if utf8.Valid(b) {
		return string(b)
	}

	var sb strings.Builder
	sb.Grow(len(b) + 8)
	for len(b) > 0 {
		r, n := utf8.DecodeRune(b)
		if r != utf8.RuneError || n > 1 { // n > 1 is a literal U+FFFD
			sb.Write(b[:n])
			b = b[n:]
			continue
		}
		sb.WriteRune(utf8.RuneError)
		b = b[illFormedLen(b):]
	}
	return sb.String()
}

// illFormedLen returns the length of the maximal subpart at the start of b,
// which is known not to begin a valid encoding: the longest prefix that
// could still have begun one, or 1 if there is none.
func illFormedLen(b []byte) int {
	lo, hi := byte(0x80), byte(0xbf)
	var need int
	switch c := b[0]; {
	case c >= 0xc2 && c <= 0xdf:
		need = 1
	case c == 0xe0:
		need, lo = 2, 0xa0
	case c == 0xed:
		need, hi = 2, 0x9f // no surrogates
	case c >= 0xe1 && c <= 0xef:
		need = 2
	case c == 0xf0:
		need, lo = 3, 0x90
	case c >= 0xf1 && c <= 0xf3:
		need = 3
	case c == 0xf4:
		need, hi = 3, 0x8f // nothing above U+10FFFF
	default:
		return 1
	}

	n := 1
	for n <= need && n < len(b) && b[n] >= lo && b[n] <= hi {
		n++
		lo, hi = 0x80, 0xbf
	}
	return n
}

// parseOctal decodes a NUL-padded field of ASCII octal digits.
// Anything else, including an empty field, spaces and the GNU base-256
// encoding, is ErrSizeUnreadable.
func (p *parser) parseOctal(b []byte) int64 {
	s := string(bytes.TrimRight(b, "\x00"))
	n, err := strconv.ParseUint(s, 8, 63)
	if err != nil {
		if p.err == nil {
			p.err = ErrSizeUnreadable
		}
		return 0
	}
	return int64(n)
}
