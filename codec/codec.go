// Package codec defines the capability contract mtcomp requires from its
// external collaborator codecs, plus implementations backed by the LZ4, S2,
// Zstandard and deflate ecosystems.
//
// All codecs are one-shot and buffer-to-buffer: the caller owns both
// buffers, sizes the destination with CompressBound, and receives the number
// of bytes written. Implementations must be safe for concurrent use; the
// parallel executor invokes one call per worker simultaneously.
package codec

import "fmt"

// Type identifies a built-in codec.
type Type uint8

const (
	TypeNone    Type = 0x1 // TypeNone passes data through unchanged.
	TypeDeflate Type = 0x2 // TypeDeflate is a zlib-framed deflate stream.
	TypeLZ4     Type = 0x3 // TypeLZ4 is the LZ4 block format.
	TypeS2      Type = 0x4 // TypeS2 is S2, the Snappy-compatible extension.
	TypeZstd    Type = 0x5 // TypeZstd is Zstandard.
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "None"
	case TypeDeflate:
		return "Deflate"
	case TypeLZ4:
		return "LZ4"
	case TypeS2:
		return "S2"
	case TypeZstd:
		return "Zstd"
	default:
		return "Unknown"
	}
}

// Codec is the synchronous, one-shot compress/decompress entry point pair.
type Codec interface {
	// Compress compresses src into dst and returns the number of bytes
	// written. A level of 0 selects the codec's default. Returns
	// errs.ErrDstTooSmall if dst cannot hold the result; size dst with
	// CompressBound.
	Compress(dst, src []byte, level int) (int, error)

	// Decompress decompresses src into dst and returns the number of bytes
	// written. dst must be at least the decompressed size.
	Decompress(dst, src []byte) (int, error)

	// CompressBound returns the worst-case compressed size for an input of
	// srcLen bytes, used to size per-worker scratch buffers.
	CompressBound(srcLen int) int
}

// Position tells a partition-aware codec where its partition sits in the
// aggregated stream.
type Position struct {
	// First marks the stream's first partition.
	First bool
	// Final marks the stream's last partition.
	Final bool
}

// PartitionCodec is implemented by codecs whose stream format carries a
// stream-level header or trailer (zlib). CompressPartition emits the header
// only on the first partition and finishes the stream only on the final one,
// so that the partitions concatenated after the RAP frame form one valid
// stream for a legacy single-threaded decoder. Codecs without this interface
// are invoked through Compress/Decompress once per partition.
type PartitionCodec interface {
	Codec

	CompressPartition(dst, src []byte, level int, pos Position) (int, error)
	DecompressPartition(dst, src []byte, pos Position) (int, error)
}

// Checksummer is implemented by codecs that expose a per-partition checksum
// and a positional combine, enabling whole-stream validation after a
// parallel decode. Combine is a function of the checksum so far, the next
// partition's checksum and that partition's plaintext length, not a simple
// sum.
type Checksummer interface {
	// Checksum returns the running checksum of p. Checksum(nil) is the seed.
	Checksum(p []byte) uint32

	// Combine merges checksum b of an n-byte block onto checksum a.
	Combine(a, b uint32, n int) uint32

	// ReadStreamChecksum reads the stream checksum embedded in the trailer
	// at the end of stream. ok is false if stream is too short to carry one.
	ReadStreamChecksum(stream []byte) (sum uint32, ok bool)

	// WriteStreamChecksum patches the stream checksum into the trailer at
	// the end of stream. Reports whether stream could hold it.
	WriteStreamChecksum(stream []byte, sum uint32) bool
}

// New creates a Codec of the given type.
func New(t Type) (Codec, error) {
	switch t {
	case TypeNone:
		return NewNoOpCodec(), nil
	case TypeDeflate:
		return NewDeflateCodec(), nil
	case TypeLZ4:
		return NewLZ4Codec(), nil
	case TypeS2:
		return NewS2Codec(), nil
	case TypeZstd:
		return NewZstdCodec(), nil
	default:
		return nil, fmt.Errorf("invalid codec type: %s", t)
	}
}

var builtinCodecs = map[Type]Codec{
	TypeNone:    NewNoOpCodec(),
	TypeDeflate: NewDeflateCodec(),
	TypeLZ4:     NewLZ4Codec(),
	TypeS2:      NewS2Codec(),
	TypeZstd:    NewZstdCodec(),
}

// Get retrieves a built-in Codec for the given type.
func Get(t Type) (Codec, error) {
	if c, ok := builtinCodecs[t]; ok {
		return c, nil
	}

	return nil, fmt.Errorf("unsupported codec type: %s", t)
}
