package mtcomp

import (
	"bytes"
	"compress/zlib"
	"io"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/mtcomp/codec"
	"github.com/arloliu/mtcomp/errs"
	"github.com/arloliu/mtcomp/rap"
)

// testPayload returns size bytes of compressible, position-dependent data.
func testPayload(size int) []byte {
	words := []string{"metric", "series", "window", "stream", "buffer", "worker"}
	var buf bytes.Buffer
	buf.Grow(size + 16)
	for i := 0; buf.Len() < size; i++ {
		buf.WriteString(words[i%len(words)])
		buf.WriteByte(byte(i))
	}

	return buf.Bytes()[:size]
}

func TestCompress_RoundTrip(t *testing.T) {
	src := testPayload(1 << 20)

	codecs := []codec.Type{
		codec.TypeNone, codec.TypeDeflate, codec.TypeLZ4, codec.TypeS2, codec.TypeZstd,
	}
	for _, ct := range codecs {
		t.Run(ct.String(), func(t *testing.T) {
			opts := []Option{
				WithCodec(ct),
				WithWindow(16384, 4),
				WithMaxWorkers(8),
			}

			dst := make([]byte, CompressBound(len(src), opts...))
			n, stats, err := Compress(dst, src, opts...)
			require.NoError(t, err)
			require.Equal(t, 8, stats.Workers)
			require.Equal(t, rap.FrameLen(8), stats.FrameLen)
			require.Equal(t, n, stats.DstSize)

			out := make([]byte, len(src))
			m, dstats, err := Decompress(out, dst[:n], opts...)
			require.NoError(t, err)
			require.Equal(t, len(src), m)
			require.Equal(t, src, out)
			require.Equal(t, 8, dstats.Workers)
		})
	}
}

func TestCompress_ConcreteFrameLength(t *testing.T) {
	// 1 MiB over a 16384-byte window with factor 4 yields 16 partitions; a
	// machine with 8 threads runs 8 workers, whose frame is 112 bytes.
	src := testPayload(1048576)
	opts := []Option{WithWindow(16384, 4), WithMaxWorkers(8)}

	dst := make([]byte, CompressBound(len(src), opts...))
	n, stats, err := Compress(dst, src, opts...)
	require.NoError(t, err)
	require.Equal(t, 112, stats.FrameLen)
	require.Equal(t, 112, SkipFrame(dst[:n]))
}

func TestCompress_SmallInputHasNoFrame(t *testing.T) {
	// Below one chunk the stream is byte-identical to non-threaded output.
	src := testPayload(100)
	opts := []Option{WithMaxWorkers(8)}

	dst := make([]byte, CompressBound(len(src), opts...))
	n, stats, err := Compress(dst, src, opts...)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Workers)
	require.Equal(t, 0, stats.FrameLen)
	require.Equal(t, 0, SkipFrame(dst[:n]))

	// A plain zlib decoder consumes it directly.
	zr, err := zlib.NewReader(bytes.NewReader(dst[:n]))
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.Equal(t, src, plain)
}

func TestCompress_LegacyDecoderCompatible(t *testing.T) {
	// The defining property of the deflate driver: skip the frame and the
	// remainder is one valid zlib stream, checksum included.
	src := testPayload(1 << 20)
	opts := []Option{WithWindow(16384, 4), WithMaxWorkers(8)}

	dst := make([]byte, CompressBound(len(src), opts...))
	n, _, err := Compress(dst, src, opts...)
	require.NoError(t, err)

	skip := SkipFrame(dst[:n])
	require.Equal(t, 112, skip)

	zr, err := zlib.NewReader(bytes.NewReader(dst[skip:n]))
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.Equal(t, src, plain)
}

func TestDecompress_SingleThreadMatchesParallel(t *testing.T) {
	src := testPayload(1 << 20)
	opts := []Option{WithWindow(16384, 4), WithMaxWorkers(8)}

	dst := make([]byte, CompressBound(len(src), opts...))
	n, _, err := Compress(dst, src, opts...)
	require.NoError(t, err)

	parOut := make([]byte, len(src))
	pn, pstats, err := Decompress(parOut, dst[:n], opts...)
	require.NoError(t, err)
	require.Equal(t, 8, pstats.Workers)

	seqOut := make([]byte, len(src))
	sn, sstats, err := Decompress(seqOut, dst[:n], WithSingleThread())
	require.NoError(t, err)
	require.Equal(t, 1, sstats.Workers)
	require.Equal(t, rap.FrameLen(8), sstats.FrameLen)

	require.Equal(t, pn, sn)
	require.Equal(t, parOut, seqOut)
	require.Equal(t, src, seqOut)
}

func TestDecompress_FewerWorkersFallsBack(t *testing.T) {
	// A consumer with fewer threads than the recorded partition count falls
	// back to one worker walking every recorded partition, which must work
	// for block codecs whose partitions do not concatenate into one stream.
	src := testPayload(1 << 20)

	codecs := []codec.Type{
		codec.TypeNone, codec.TypeDeflate, codec.TypeLZ4, codec.TypeS2, codec.TypeZstd,
	}
	for _, ct := range codecs {
		t.Run(ct.String(), func(t *testing.T) {
			copts := []Option{WithCodec(ct), WithWindow(16384, 4), WithMaxWorkers(8)}

			dst := make([]byte, CompressBound(len(src), copts...))
			n, _, err := Compress(dst, src, copts...)
			require.NoError(t, err)

			out := make([]byte, len(src))
			m, stats, err := Decompress(out, dst[:n], WithCodec(ct), WithMaxWorkers(2))
			require.NoError(t, err)
			require.Equal(t, 1, stats.Workers)
			require.Equal(t, len(src), m)
			require.Equal(t, src, out)
		})
	}
}

func TestDecompress_ChecksumMismatch(t *testing.T) {
	src := testPayload(1 << 20)
	opts := []Option{WithWindow(16384, 4), WithMaxWorkers(8)}

	dst := make([]byte, CompressBound(len(src), opts...))
	n, _, err := Compress(dst, src, opts...)
	require.NoError(t, err)

	// Flip a bit in the Adler-32 trailer of the final partition.
	dst[n-1] ^= 0x01

	out := make([]byte, len(src))
	_, _, err = Decompress(out, dst[:n], opts...)
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)
}

func TestDecompress_NoFrameStream(t *testing.T) {
	// Streams produced by a plain single-threaded compressor decode as-is.
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	src := testPayload(8192)
	_, err := zw.Write(src)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	out := make([]byte, len(src))
	n, stats, err := Decompress(out, buf.Bytes(), WithMaxWorkers(8))
	require.NoError(t, err)
	require.Equal(t, 1, stats.Workers)
	require.Equal(t, 0, stats.FrameLen)
	require.Equal(t, src, out[:n])
}

func TestCompress_SourceDigest(t *testing.T) {
	src := testPayload(1 << 20)
	opts := []Option{
		WithWindow(16384, 4),
		WithMaxWorkers(8),
		WithSourceDigest(),
	}

	dst := make([]byte, CompressBound(len(src), opts...))
	n, cstats, err := Compress(dst, src, opts...)
	require.NoError(t, err)
	require.Equal(t, xxhash.Sum64(src), cstats.SourceDigest)

	out := make([]byte, len(src))
	_, dstats, err := Decompress(out, dst[:n], opts...)
	require.NoError(t, err)
	require.Equal(t, cstats.SourceDigest, dstats.SourceDigest)
}

func TestCompress_Levels(t *testing.T) {
	src := testPayload(1 << 20)

	for _, level := range []int{0, 1, 6, 9} {
		opts := []Option{
			WithWindow(16384, 4),
			WithMaxWorkers(4),
			WithLevel(level),
		}

		dst := make([]byte, CompressBound(len(src), opts...))
		n, _, err := Compress(dst, src, opts...)
		require.NoError(t, err)

		out := make([]byte, len(src))
		m, _, err := Decompress(out, dst[:n], opts...)
		require.NoError(t, err)
		require.Equal(t, len(src), m)
		require.Equal(t, src, out)
	}
}

func TestCompress_InvalidOptions(t *testing.T) {
	src := testPayload(1024)
	dst := make([]byte, 4096)

	_, _, err := Compress(dst, src, WithWindow(0, 4))
	require.ErrorIs(t, err, errs.ErrInvalidWindow)

	_, _, err = Compress(dst, src, WithCodec(codec.Type(0xff)))
	require.Error(t, err)

	_, _, err = Compress(dst, src, WithCustomCodec(nil))
	require.Error(t, err)

	_, _, err = Compress(nil, src)
	require.ErrorIs(t, err, errs.ErrNilDestination)

	_, _, err = Decompress(dst, nil)
	require.ErrorIs(t, err, errs.ErrNilSource)
}

func TestCompress_CustomCodec(t *testing.T) {
	src := testPayload(1 << 20)
	custom, err := codec.New(codec.TypeS2)
	require.NoError(t, err)

	opts := []Option{
		WithCustomCodec(custom),
		WithWindow(16384, 4),
		WithMaxWorkers(4),
	}

	dst := make([]byte, custom.CompressBound(len(src))+rap.FrameBound(4))
	n, _, err := Compress(dst, src, opts...)
	require.NoError(t, err)

	out := make([]byte, len(src))
	m, _, err := Decompress(out, dst[:n], opts...)
	require.NoError(t, err)
	require.Equal(t, src, out[:m])
}

func TestCompressBound_InvalidOptions(t *testing.T) {
	// An erroring option must not collapse the bound to zero; callers use
	// the return value as a buffer size and Compress reports the error.
	bad := CompressBound(1<<20, WithWindow(0, 0))
	require.Equal(t, CompressBound(1<<20), bad)
	require.Greater(t, bad, 1<<20)
}

func TestStats_Ratio(t *testing.T) {
	s := &Stats{SrcSize: 1000, DstSize: 250}
	require.InDelta(t, 0.25, s.Ratio(), 1e-9)

	empty := &Stats{}
	require.Zero(t, empty.Ratio())
}

func TestCompressBound_CoversWorstCase(t *testing.T) {
	// Incompressible input through the pass-through codec must still fit in
	// the advertised bound, frame included.
	src := make([]byte, 1<<20)
	state := uint64(0x9e3779b97f4a7c15)
	for i := range src {
		state = state*6364136223846793005 + 1442695040888963407
		src[i] = byte(state >> 56)
	}

	opts := []Option{
		WithCodec(codec.TypeNone),
		WithWindow(16384, 4),
		WithMaxWorkers(8),
	}

	dst := make([]byte, CompressBound(len(src), opts...))
	n, _, err := Compress(dst, src, opts...)
	require.NoError(t, err)
	require.LessOrEqual(t, n, len(dst))

	out := make([]byte, len(src))
	m, _, err := Decompress(out, dst[:n], opts...)
	require.NoError(t, err)
	require.Equal(t, src, out[:m])
}
