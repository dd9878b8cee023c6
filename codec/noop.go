package codec

import "github.com/arloliu/mtcomp/errs"

// NoOpCodec passes data through unchanged.
//
// It is useful for measuring the framing and threading overhead in isolation
// and for partition-geometry tests where the "compressed" bytes must equal
// the source bytes.
type NoOpCodec struct{}

var _ Codec = (*NoOpCodec)(nil)

// NewNoOpCodec creates a new pass-through codec.
func NewNoOpCodec() NoOpCodec {
	return NoOpCodec{}
}

// Compress copies src into dst unchanged.
func (NoOpCodec) Compress(dst, src []byte, _ int) (int, error) {
	if len(src) > len(dst) {
		return 0, errs.ErrDstTooSmall
	}

	return copy(dst, src), nil
}

// Decompress copies src into dst unchanged.
func (NoOpCodec) Decompress(dst, src []byte) (int, error) {
	if len(src) > len(dst) {
		return 0, errs.ErrDstTooSmall
	}

	return copy(dst, src), nil
}

// CompressBound returns srcLen; a pass-through never expands.
func (NoOpCodec) CompressBound(srcLen int) int {
	return srcLen
}
