package codec

import (
	"bytes"
	"hash/adler32"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"

	"github.com/arloliu/mtcomp/endian"
	"github.com/arloliu/mtcomp/errs"
)

// DeflateCodec implements a zlib-framed deflate stream.
//
// It is the reference partition-aware codec: partitions are sync-flushed
// deflate segments, the first partition carries the 2-byte zlib header, the
// final partition finishes the deflate stream and carries the 4-byte adler32
// trailer. Concatenated after the RAP frame, the partitions form one valid
// zlib stream that any single-threaded zlib decoder accepts.
//
// The adler32 trailer doubles as the stream checksum for parallel decodes:
// per-partition checksums are folded with Combine and validated against it.
type DeflateCodec struct{}

var (
	_ PartitionCodec = (*DeflateCodec)(nil)
	_ Checksummer    = (*DeflateCodec)(nil)
)

// NewDeflateCodec creates a new zlib/deflate codec.
func NewDeflateCodec() DeflateCodec {
	return DeflateCodec{}
}

// zlibHeader is the fixed CMF/FLG pair for a 32KiB window at default
// compression, the header every partitioned stream starts with.
var zlibHeader = [2]byte{0x78, 0x9c}

// trailerSize is the adler32 trailer ending a zlib stream. Unlike the RAP
// frame, zlib stores its trailer big-endian.
const trailerSize = 4

var trailerEngine = endian.GetBigEndianEngine()

// flateWriterPool pools default-level flate writers; Reset makes them
// reusable across partitions and calls.
var flateWriterPool = sync.Pool{
	New: func() any {
		fw, _ := flate.NewWriter(io.Discard, flate.DefaultCompression)
		return fw
	},
}

// sliceWriter writes into a fixed, caller-owned byte slice.
type sliceWriter struct {
	buf []byte
	n   int
}

func (w *sliceWriter) Write(p []byte) (int, error) {
	if w.n+len(p) > len(w.buf) {
		return 0, errs.ErrDstTooSmall
	}
	w.n += copy(w.buf[w.n:], p)

	return len(p), nil
}

// Compress compresses src into dst as a complete zlib stream.
func (DeflateCodec) Compress(dst, src []byte, level int) (int, error) {
	if level == 0 {
		level = zlib.DefaultCompression
	}

	w := &sliceWriter{buf: dst}
	zw, err := zlib.NewWriterLevel(w, level)
	if err != nil {
		return 0, err
	}
	if _, err := zw.Write(src); err != nil {
		return 0, err
	}
	if err := zw.Close(); err != nil {
		return 0, err
	}

	return w.n, nil
}

// Decompress decompresses a complete zlib stream from src into dst.
func (DeflateCodec) Decompress(dst, src []byte) (int, error) {
	zr, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return 0, err
	}
	defer zr.Close()

	total, err := readInto(dst, zr)
	if err != nil {
		return total, err
	}
	if total == len(dst) {
		// Drain the trailer so the reader verifies the stream checksum, and
		// catch plaintext that would not have fit.
		var probe [1]byte
		n, perr := zr.Read(probe[:])
		if n > 0 {
			return 0, errs.ErrDstTooSmall
		}
		if perr != nil && perr != io.EOF {
			return 0, perr
		}
	}

	return total, nil
}

// CompressBound returns the zlib worst-case compressed size for srcLen
// input bytes, covering header, stored blocks, sync flushes and trailer.
func (DeflateCodec) CompressBound(srcLen int) int {
	return srcLen + srcLen>>12 + srcLen>>14 + srcLen>>25 + 13
}

// CompressPartition compresses one partition of a larger stream into dst.
//
// Non-final partitions end on a sync flush so the next partition starts at
// a deflate block boundary. The final partition's trailer holds this
// partition's adler32 only; the aggregator patches in the combined stream
// checksum after concatenation.
func (DeflateCodec) CompressPartition(dst, src []byte, level int, pos Position) (int, error) {
	w := &sliceWriter{buf: dst}
	if pos.First {
		if _, err := w.Write(zlibHeader[:]); err != nil {
			return 0, err
		}
	}

	var (
		fw  *flate.Writer
		err error
	)
	if level == 0 {
		fw, _ = flateWriterPool.Get().(*flate.Writer)
		defer flateWriterPool.Put(fw)
		fw.Reset(w)
	} else {
		fw, err = flate.NewWriter(w, level)
		if err != nil {
			return 0, err
		}
	}

	if _, err := fw.Write(src); err != nil {
		return 0, err
	}
	if pos.Final {
		if err := fw.Close(); err != nil {
			return 0, err
		}
		var trailer [trailerSize]byte
		trailerEngine.PutUint32(trailer[:], adler32.Checksum(src))
		if _, err := w.Write(trailer[:]); err != nil {
			return 0, err
		}
	} else {
		if err := fw.Flush(); err != nil {
			return 0, err
		}
	}

	return w.n, nil
}

// DecompressPartition decompresses one partition into dst. dst must be
// sized to the partition's exact decompressed length from its RAP record.
func (DeflateCodec) DecompressPartition(dst, src []byte, pos Position) (int, error) {
	if pos.First {
		if len(src) < len(zlibHeader) {
			return 0, io.ErrUnexpectedEOF
		}
		src = src[len(zlibHeader):]
	}
	if pos.Final {
		if len(src) < trailerSize {
			return 0, io.ErrUnexpectedEOF
		}
		src = src[:len(src)-trailerSize]
	}

	fr := flate.NewReader(bytes.NewReader(src))
	defer fr.Close()

	return readInto(dst, fr)
}

// readInto fills dst from r. Reaching len(dst) counts as success even when
// the segment has no final deflate block: non-final partitions end on a
// sync flush, the deflate analogue of zlib's benign Z_BUF_ERROR.
func readInto(dst []byte, r io.Reader) (int, error) {
	total := 0
	for total < len(dst) {
		n, err := r.Read(dst[total:])
		total += n
		if total >= len(dst) {
			break
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// Checksum returns the adler32 checksum of p. Checksum(nil) is the adler32
// seed value 1.
func (DeflateCodec) Checksum(p []byte) uint32 {
	return adler32.Checksum(p)
}

// Combine merges adler32 checksum b of an n-byte block onto checksum a.
// Based on adler32_combine() from zlib.
func (DeflateCodec) Combine(a, b uint32, n int) uint32 {
	const base = uint32(65521) // largest prime smaller than 65536

	rem := uint32(n) % base
	sum1 := a & 0xffff
	sum2 := (rem * sum1) % base
	sum1 += (b & 0xffff) + base - 1
	sum2 += ((a >> 16) & 0xffff) + ((b >> 16) & 0xffff) + base - rem
	if sum1 >= base {
		sum1 -= base
	}
	if sum1 >= base {
		sum1 -= base
	}
	if sum2 >= (base << 1) {
		sum2 -= base << 1
	}
	if sum2 >= base {
		sum2 -= base
	}

	return sum1 | (sum2 << 16)
}

// ReadStreamChecksum reads the big-endian adler32 trailer ending stream.
func (DeflateCodec) ReadStreamChecksum(stream []byte) (uint32, bool) {
	if len(stream) < trailerSize {
		return 0, false
	}

	return trailerEngine.Uint32(stream[len(stream)-trailerSize:]), true
}

// WriteStreamChecksum patches the big-endian adler32 trailer ending stream.
func (DeflateCodec) WriteStreamChecksum(stream []byte, sum uint32) bool {
	if len(stream) < trailerSize {
		return false
	}
	trailerEngine.PutUint32(stream[len(stream)-trailerSize:], sum)

	return true
}
