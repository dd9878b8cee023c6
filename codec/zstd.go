package codec

// ZstdCodec implements Zstandard compression.
//
// Each partition is emitted as a complete zstd frame; concatenated frames
// form one valid stream, so a RAP-framed output remains decodable by any
// single-threaded zstd decoder after skipping the frame.
//
// Two backends exist: a cgo binding to libzstd and a pure-Go fallback.
// The build selects one; see zstd_cgo.go and zstd_pure.go.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a new Zstandard codec.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}
