package codec

import (
	"github.com/klauspost/compress/s2"

	"github.com/arloliu/mtcomp/errs"
)

// S2Codec implements S2 block compression.
type S2Codec struct{}

var _ Codec = (*S2Codec)(nil)

// NewS2Codec creates a new S2 codec.
func NewS2Codec() S2Codec {
	return S2Codec{}
}

// Compress compresses src into dst using S2. Level 0 or 1 selects the
// default encoder, 2 EncodeBetter and 3 or more EncodeBest.
func (S2Codec) Compress(dst, src []byte, level int) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}

	encode := s2.Encode
	switch {
	case level >= 3:
		encode = s2.EncodeBest
	case level == 2:
		encode = s2.EncodeBetter
	}

	// s2 allocates a fresh buffer when dst lacks capacity; detect that and
	// report the undersized destination instead of returning the hidden copy.
	out := encode(dst[:0], src)
	if len(out) > len(dst) {
		return 0, errs.ErrDstTooSmall
	}
	copy(dst, out)

	return len(out), nil
}

// Decompress decompresses S2 block data from src into dst.
func (S2Codec) Decompress(dst, src []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}

	out, err := s2.Decode(dst, src)
	if err != nil {
		return 0, err
	}
	if len(out) > len(dst) {
		return 0, errs.ErrDstTooSmall
	}
	copy(dst, out)

	return len(out), nil
}

// CompressBound returns the S2 worst-case encoded size.
func (S2Codec) CompressBound(srcLen int) int {
	return s2.MaxEncodedLen(srcLen)
}
