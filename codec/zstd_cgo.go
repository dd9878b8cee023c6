//go:build cgo && !purego

package codec

import (
	"github.com/valyala/gozstd"

	"github.com/arloliu/mtcomp/errs"
)

// Compress compresses src into dst as one zstd frame using libzstd.
func (ZstdCodec) Compress(dst, src []byte, level int) (int, error) {
	if level == 0 {
		level = gozstd.DefaultCompressionLevel
	}

	out := gozstd.CompressLevel(dst[:0], src, level)
	if len(out) > len(dst) {
		return 0, errs.ErrDstTooSmall
	}
	copy(dst, out)

	return len(out), nil
}

// Decompress decompresses zstd frames from src into dst using libzstd.
// Concatenated frames are decoded as one stream.
func (ZstdCodec) Decompress(dst, src []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}

	out, err := gozstd.Decompress(dst[:0], src)
	if err != nil {
		return 0, err
	}
	if len(out) > len(dst) {
		return 0, errs.ErrDstTooSmall
	}
	copy(dst, out)

	return len(out), nil
}

// CompressBound returns the zstd worst-case compressed size,
// ZSTD_COMPRESSBOUND with the low-srcLen margin folded in.
func (ZstdCodec) CompressBound(srcLen int) int {
	margin := 0
	if srcLen < 128<<10 {
		margin = (128<<10 - srcLen) >> 11
	}

	return srcLen + srcLen>>8 + margin + 64
}
