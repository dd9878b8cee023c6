// Package rap implements the RAP (Random Access Point) wire frame: the
// self-describing metadata header plus per-partition table prepended to a
// multithreaded-compressed stream.
//
// The frame lets a parallel decoder locate and independently decode each
// partition, while a legacy single-threaded decoder only needs to skip
// SkipFrame(src) bytes and decode the remainder unchanged.
//
// Frame layout, little-endian, fixed field widths:
//
//	magic word            8 bytes   byte offset 0-7
//	metadata length       4 bytes   byte offset 8-11, total frame length
//	num main threads      2 bytes   byte offset 12-13, top-level partitions
//	num child threads     2 bytes   byte offset 14-15, reserved, always 0
//	per main thread, num main threads times:
//	  rap offset          4 bytes   partition's byte offset in the stream
//	  rap length          4 bytes   partition's compressed byte length
//	  decompressed length 4 bytes   partition's plaintext byte length
//
// Presence of the magic word is the sole discriminator between a RAP-framed
// stream and a plain single-threaded stream.
package rap

import (
	"runtime"

	"github.com/arloliu/mtcomp/endian"
	"github.com/arloliu/mtcomp/errs"
)

// MagicWord identifies a RAP-framed stream. It reads as "AOCL_LLC" when the
// eight bytes are interpreted little-endian.
const MagicWord uint64 = 0x434C4C5F4C434F41

const (
	MagicWordSize   = 8
	MetadataLenSize = 4
	MainCountSize   = 2
	ChildCountSize  = 2

	// HeaderSize is the fixed-size portion before the partition records.
	HeaderSize = MagicWordSize + MetadataLenSize + MainCountSize + ChildCountSize

	OffsetSize    = 4
	LengthSize    = 4
	DecompLenSize = 4

	// RecordSize is the size of one main-thread partition record.
	RecordSize = OffsetSize + LengthSize + DecompLenSize
)

// engine is the wire byte order. The frame is always little-endian.
var engine = endian.GetLittleEndianEngine()

// Header is the fixed-size portion of a parsed RAP frame.
type Header struct {
	// MetadataLen is the total frame length (header + partition table).
	MetadataLen uint32 // byte offset 8-11
	// MainThreads is the number of top-level partitions, always >= 1.
	MainThreads uint16 // byte offset 12-13
	// ChildThreads is reserved for a finer-grained scheme and is always 0.
	ChildThreads uint16 // byte offset 14-15
}

// Record is one partition's entry in the frame's table.
type Record struct {
	// Offset is the partition's byte offset in the stream.
	Offset uint32
	// Length is the partition's compressed byte length. A zero length marks
	// a valid "nothing to decode" partition.
	Length uint32
	// DecompLen is the partition's expected decompressed byte length,
	// enabling pre-sizing of per-worker output buffers.
	DecompLen uint32
}

// FrameLen returns the byte length of a RAP frame describing mainThreads
// partitions.
func FrameLen(mainThreads int) int {
	return HeaderSize + mainThreads*RecordSize
}

// FrameBound returns the worst-case RAP frame byte length for the given
// worker limit, so a caller can pre-size its destination buffer. A
// non-positive maxWorkers means the runtime's available parallelism.
func FrameBound(maxWorkers int) int {
	if maxWorkers <= 0 {
		maxWorkers = runtime.GOMAXPROCS(0)
	}

	return FrameLen(maxWorkers)
}

// HasFrame reports whether src starts with the RAP magic word.
func HasFrame(src []byte) bool {
	return len(src) >= MagicWordSize && engine.Uint64(src[0:MagicWordSize]) == MagicWord
}

// SkipFrame inspects src and returns the byte length of an embedded RAP
// frame, or 0 if none is present. A legacy single-threaded decoder can skip
// that many bytes and decode the remainder with an unmodified decoder.
func SkipFrame(src []byte) int {
	if !HasFrame(src) {
		return 0
	}

	return int(engine.Uint32(src[MagicWordSize : MagicWordSize+MetadataLenSize]))
}

// WriteHeader writes the frame header for mainThreads partitions into dst
// and returns the total frame length. The partition records are zeroed and
// patched later by the aggregator via PutRecord.
//
// Returns errs.ErrDstTooSmall if dst cannot hold the whole frame.
func WriteHeader(dst []byte, mainThreads int) (int, error) {
	frameLen := FrameLen(mainThreads)
	if len(dst) < frameLen {
		return 0, errs.ErrDstTooSmall
	}

	engine.PutUint64(dst[0:8], MagicWord)
	engine.PutUint32(dst[8:12], uint32(frameLen))
	engine.PutUint16(dst[12:14], uint16(mainThreads))
	engine.PutUint16(dst[14:16], 0)
	clear(dst[HeaderSize:frameLen])

	return frameLen, nil
}

// ParseHeader parses the fixed-size frame header from src. The caller must
// have verified the magic word with HasFrame.
//
// Returns errs.ErrZeroPartitions for a frame recording zero main threads
// and errs.ErrInvalidFrame when the recorded metadata length cannot fit the
// partition table or exceeds the stream.
func ParseHeader(src []byte) (Header, error) {
	var h Header
	if len(src) < HeaderSize {
		return h, errs.ErrInvalidFrame
	}

	h.MetadataLen = engine.Uint32(src[8:12])
	h.MainThreads = engine.Uint16(src[12:14])
	h.ChildThreads = engine.Uint16(src[14:16])

	if h.MainThreads == 0 {
		return h, errs.ErrZeroPartitions
	}
	if int(h.MetadataLen) < FrameLen(int(h.MainThreads)) || int(h.MetadataLen) > len(src) {
		return h, errs.ErrInvalidFrame
	}

	return h, nil
}

// PutRecord patches partition idx's record into the frame at the start of
// dst. The frame header must already be present.
func PutRecord(dst []byte, idx int, rec Record) {
	pos := HeaderSize + idx*RecordSize
	engine.PutUint32(dst[pos:pos+4], rec.Offset)
	engine.PutUint32(dst[pos+4:pos+8], rec.Length)
	engine.PutUint32(dst[pos+8:pos+12], rec.DecompLen)
}

// ReadRecord reads partition idx's record from the frame at the start of
// src.
func ReadRecord(src []byte, idx int) (Record, error) {
	pos := HeaderSize + idx*RecordSize
	if pos+RecordSize > len(src) {
		return Record{}, errs.ErrInvalidFrame
	}

	return Record{
		Offset:    engine.Uint32(src[pos : pos+4]),
		Length:    engine.Uint32(src[pos+4 : pos+8]),
		DecompLen: engine.Uint32(src[pos+8 : pos+12]),
	}, nil
}
