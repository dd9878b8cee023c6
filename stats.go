package mtcomp

import "github.com/arloliu/mtcomp/codec"

// Stats reports what one compress-or-decompress call actually did. It is
// useful for monitoring and for verifying partitioning behavior in tests.
type Stats struct {
	// Codec identifies the codec used.
	Codec codec.Type

	// Workers is the resolved worker count for this call.
	Workers int

	// FrameLen is the RAP frame length at the start of the compressed
	// stream; 0 means a plain single-threaded stream.
	FrameLen int

	// SrcSize and DstSize are the input and output byte counts.
	SrcSize int
	DstSize int

	// SourceDigest is the xxHash64 of the plaintext, populated only when
	// WithSourceDigest is set.
	SourceDigest uint64
}

// Ratio returns the compressed-to-plaintext size ratio of a compression
// call (less than 1.0 when compression helped), or 0 when the source was
// empty.
func (s *Stats) Ratio() float64 {
	if s.SrcSize == 0 {
		return 0.0
	}

	return float64(s.DstSize) / float64(s.SrcSize)
}
