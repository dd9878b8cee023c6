package codec

import (
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/mtcomp/errs"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Codec implements the LZ4 block format.
//
// The block format has no stored-block escape, so input that does not
// shrink is emitted as a single literal-only sequence; compression never
// fails on match-free data.
type LZ4Codec struct{}

var _ Codec = (*LZ4Codec)(nil)

// NewLZ4Codec creates a new LZ4 block codec.
func NewLZ4Codec() LZ4Codec {
	return LZ4Codec{}
}

// Compress compresses src into dst as a single LZ4 block. A level of 0
// selects the fast compressor; levels 1-9 select the high-compression
// match finder at the corresponding depth.
func (LZ4Codec) Compress(dst, src []byte, level int) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}
	if len(dst) < lz4.CompressBlockBound(len(src)) {
		return 0, errs.ErrDstTooSmall
	}

	var (
		n   int
		err error
	)
	if level > 0 {
		hc := lz4.CompressorHC{Level: lz4HCLevel(level)}
		n, err = hc.CompressBlock(src, dst)
	} else {
		lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
		defer lz4CompressorPool.Put(lc)
		n, err = lc.CompressBlock(src, dst)
	}
	if err != nil {
		return 0, err
	}
	if n == 0 {
		// The block API signals incompressible input with a zero length;
		// store it as a literal-only block instead. CompressBlockBound
		// covers the literal-length overhead, so dst always fits it.
		n = lz4LiteralBlock(dst, src)
	}

	return n, nil
}

// lz4LiteralBlock writes src as one literal-only LZ4 sequence: a token with
// the literal length, its continuation bytes when the length is 15 or more,
// then the raw literals. The final sequence of a block carries no match, so
// the result is a complete, valid block.
func lz4LiteralBlock(dst, src []byte) int {
	di := 0
	if len(src) < 15 {
		dst[di] = byte(len(src)) << 4
		di++
	} else {
		dst[di] = 0xf0
		di++
		rem := len(src) - 15
		for ; rem >= 255; rem -= 255 {
			dst[di] = 0xff
			di++
		}
		dst[di] = byte(rem)
		di++
	}
	di += copy(dst[di:], src)

	return di
}

// Decompress decompresses a single LZ4 block from src into dst.
func (LZ4Codec) Decompress(dst, src []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}

	return lz4.UncompressBlock(src, dst)
}

// CompressBound returns the LZ4 block worst-case compressed size.
func (LZ4Codec) CompressBound(srcLen int) int {
	return lz4.CompressBlockBound(srcLen)
}

func lz4HCLevel(level int) lz4.CompressionLevel {
	switch {
	case level <= 1:
		return lz4.Level1
	case level == 2:
		return lz4.Level2
	case level == 3:
		return lz4.Level3
	case level == 4:
		return lz4.Level4
	case level == 5:
		return lz4.Level5
	case level == 6:
		return lz4.Level6
	case level == 7:
		return lz4.Level7
	case level == 8:
		return lz4.Level8
	default:
		return lz4.Level9
	}
}
