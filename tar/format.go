// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package tar

// Layout of the USTAR header block.
// Fields not listed here (mode, owner, times, checksum, link name,
// the USTAR prefix) are never read.
const (
	blockSize = 512 // header size, and the alignment of every payload

	nameOffset     = 0
	nameSize       = 100
	sizeOffset     = 124
	sizeSize       = 12
	typeFlagOffset = 156
)

// header is a view of exactly one header block.
type header []byte

func (h header) name() []byte   { return h[nameOffset:][:nameSize] }
func (h header) size() []byte   { return h[sizeOffset:][:sizeSize] }
func (h header) typeFlag() byte { return h[typeFlagOffset] }

// blockPadding computes the number of bytes needed to pad offset up to the
// nearest block edge where 0 <= n < blockSize.
func blockPadding(offset int64) (n int64) {
	return -offset & (blockSize - 1)
}
