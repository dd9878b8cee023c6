//go:build !cgo || purego

package codec

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/arloliu/mtcomp/errs"
)

// zstdDecoderPool pools zstd decoders for reuse to eliminate allocation
// overhead. The klauspost/compress/zstd library is explicitly designed for
// decoder reuse.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1), // the parallel executor owns the fan-out
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			// This should never happen with valid options
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}
		return decoder
	},
}

// zstdEncoderPool pools default-level zstd encoders for reuse.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			// This should never happen with valid options
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}
		return encoder
	},
}

// Compress compresses src into dst as one zstd frame. A level of 0 uses a
// pooled default-level encoder; explicit levels pay for a fresh encoder.
func (ZstdCodec) Compress(dst, src []byte, level int) (int, error) {
	var encoder *zstd.Encoder
	if level == 0 {
		encoder, _ = zstdEncoderPool.Get().(*zstd.Encoder)
		defer zstdEncoderPool.Put(encoder)
	} else {
		var err error
		encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			return 0, err
		}
		defer encoder.Close()
	}

	out := encoder.EncodeAll(src, dst[:0])
	if len(out) > len(dst) {
		return 0, errs.ErrDstTooSmall
	}
	copy(dst, out)

	return len(out), nil
}

// Decompress decompresses zstd frames from src into dst. Concatenated
// frames are decoded as one stream.
func (ZstdCodec) Decompress(dst, src []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}

	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	out, err := decoder.DecodeAll(src, dst[:0])
	if err != nil {
		return 0, err
	}
	if len(out) > len(dst) {
		return 0, errs.ErrDstTooSmall
	}
	copy(dst, out)

	return len(out), nil
}

// CompressBound returns the zstd worst-case compressed size.
func (ZstdCodec) CompressBound(srcLen int) int {
	encoder, _ := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)

	return encoder.MaxEncodedSize(srcLen)
}
