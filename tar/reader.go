// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package tar

// Parse decodes every entry in buf, in order.
//
// The walk stops successfully at the end of buf or at the first header whose
// name field is empty (an archive conventionally ends with zero blocks).
// Any structural problem fails the whole parse and no partial archive is
// returned:
//   - buf is shorter than one block: [ErrNotATarFile]
//   - a header or its payload runs past the end of buf: [ErrDamagedHeader]
//   - a size field is not octal: [ErrSizeUnreadable]
//
// Parse keeps no state between calls and does not retain buf.
func Parse(buf []byte) (*Archive, error) {
	if len(buf) < blockSize {
		return nil, ErrNotATarFile
	}

	var entries []Entry
	end := int64(len(buf))
	off := int64(0)
	for off < end {
		if end-off < blockSize {
			return nil, ErrDamagedHeader
		}
		hdr := header(buf[off:][:blockSize])

		var p parser
		name := p.parseString(hdr.name())
		if name == "" {
			break
		}
		size := p.parseOctal(hdr.size())
		if p.err != nil {
			return nil, p.err
		}

		data := off + blockSize
		if size > end-data {
			return nil, ErrDamagedHeader
		}

		entries = append(entries, Entry{
			Type:    entryType(hdr.typeFlag()),
			Name:    name,
			Size:    size,
			Offset:  off,
			Payload: clonePayload(buf[data:][:size]),
		})
		off = data + size + blockPadding(size)
	}
	return &Archive{entries: entries}, nil
}
