// Package mtcomp parallelizes single-threaded, buffer-to-buffer compression
// codecs across CPU cores while keeping the output consumable by legacy
// single-threaded decoders.
//
// A multithreaded stream starts with a self-describing RAP (Random Access
// Point) frame indexing each independently-compressed partition. A parallel
// decoder uses it to decode partitions concurrently; a legacy decoder skips
// SkipFrame(src) bytes and decodes the remainder unchanged. Inputs too small
// to split carry no frame at all and are byte-identical to non-threaded
// output.
//
// # Basic Usage
//
//	src := loadData()
//	dst := make([]byte, mtcomp.CompressBound(len(src)))
//
//	n, _, err := mtcomp.Compress(dst, src, mtcomp.WithCodec(codec.TypeZstd))
//	if err != nil {
//	    return err
//	}
//	stream := dst[:n]
//
//	plain := make([]byte, len(src))
//	m, _, err := mtcomp.Decompress(plain, stream, mtcomp.WithCodec(codec.TypeZstd))
//
// # Package Structure
//
// This package provides the one-call drivers. The rap package defines the
// wire frame, the parallel package the planner/executor/aggregator core,
// and the codec package the collaborator contract plus the built-in LZ4,
// S2, Zstandard, deflate and pass-through codecs.
package mtcomp

import (
	"github.com/cespare/xxhash/v2"

	"github.com/arloliu/mtcomp/codec"
	"github.com/arloliu/mtcomp/parallel"
	"github.com/arloliu/mtcomp/rap"
)

// Compress compresses src into dst, using as many workers as the source
// size, the window constraint and the worker cap allow. It returns the
// number of bytes written to dst.
//
// Size dst with CompressBound. After any error the contents of dst are
// unspecified and must not be interpreted.
func Compress(dst, src []byte, opts ...Option) (int, *Stats, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return 0, nil, err
	}

	g, err := parallel.PlanCompress(src, dst, cfg.windowLen, cfg.windowFactor, cfg.maxWorkers)
	if err != nil {
		return 0, nil, err
	}

	stats := &Stats{
		Codec:    cfg.codecType,
		Workers:  g.Workers,
		FrameLen: g.FrameLen,
		SrcSize:  len(src),
	}
	if cfg.sourceDigest {
		stats.SourceDigest = xxhash.Sum64(src)
	}

	if g.Workers == 1 {
		// Plain single-threaded stream, no frame to skip.
		n, err := cfg.codec.Compress(dst, src, cfg.level)
		if err != nil {
			return 0, nil, err
		}
		stats.DstSize = n

		return n, stats, nil
	}

	pc, isPartitioned := cfg.codec.(codec.PartitionCodec)
	cs, hasChecksum := cfg.codec.(codec.Checksummer)

	g.Execute(func(t *parallel.Task) {
		length := g.PartLen(t.ID)
		pad := cfg.codec.CompressBound(length) - length
		if err := g.PartitionCompress(t, pad); err != nil {
			t.Err = err
			return
		}

		pos := codec.Position{First: t.ID == 0, Final: t.ID == g.Partitions-1}
		var n int
		var cerr error
		if isPartitioned {
			n, cerr = pc.CompressPartition(t.Scratch, t.Src, cfg.level, pos)
		} else {
			n, cerr = cfg.codec.Compress(t.Scratch, t.Src, cfg.level)
		}
		t.Written, t.Err = n, cerr
		if cerr == nil && hasChecksum {
			t.Checksum = cs.Checksum(t.Src)
		}
	})

	var cc parallel.ChecksumCombiner
	if hasChecksum {
		cc = cs
	}
	n, err := g.AggregateCompress(cc)
	if err != nil {
		return 0, nil, err
	}
	stats.DstSize = n

	return n, stats, nil
}

// Decompress decompresses src into dst, recovering partition boundaries
// from the RAP frame when one is present. It returns the number of bytes
// written to dst.
//
// dst must be at least the decompressed size. After any error the contents
// of dst are unspecified and must not be interpreted.
func Decompress(dst, src []byte, opts ...Option) (int, *Stats, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return 0, nil, err
	}

	g, err := parallel.PlanDecompress(src, dst, cfg.maxWorkers, cfg.singleThread)
	if err != nil {
		return 0, nil, err
	}

	stats := &Stats{
		Codec:    cfg.codecType,
		Workers:  g.Workers,
		FrameLen: g.FrameLen,
		SrcSize:  len(src),
	}

	if len(g.Tasks()) == 0 {
		// No frame, or a forced legacy decode: skip the frame (if any) and
		// decode the remainder whole. Framed streams with recorded
		// partitions go through the task path even with one worker, since
		// block-codec partitions are not one concatenatable stream.
		n, err := cfg.codec.Decompress(dst, src[g.FrameLen:])
		if err != nil {
			return 0, nil, err
		}
		stats.DstSize = n
		if cfg.sourceDigest {
			stats.SourceDigest = xxhash.Sum64(dst[:n])
		}

		return n, stats, nil
	}

	pc, isPartitioned := cfg.codec.(codec.PartitionCodec)
	cs, hasChecksum := cfg.codec.(codec.Checksummer)

	g.Execute(func(t *parallel.Task) {
		if err := g.PartitionDecompress(t, 0); err != nil {
			t.Err = err
			return
		}
		if t.Skip {
			return
		}

		pos := codec.Position{First: t.ID == 0, Final: t.ID == g.Partitions-1}
		var n int
		var cerr error
		if isPartitioned {
			n, cerr = pc.DecompressPartition(t.Scratch, t.Src, pos)
		} else {
			n, cerr = cfg.codec.Decompress(t.Scratch, t.Src)
		}
		t.Written, t.Err = n, cerr
		if cerr == nil && hasChecksum {
			t.Checksum = cs.Checksum(t.Scratch[:n])
		}
	})

	var cc parallel.ChecksumCombiner
	if hasChecksum {
		cc = cs
	}
	n, err := g.AggregateDecompress(cc)
	if err != nil {
		return 0, nil, err
	}
	stats.DstSize = n
	if cfg.sourceDigest {
		stats.SourceDigest = xxhash.Sum64(dst[:n])
	}

	return n, stats, nil
}

// CompressBound returns the worst-case output size of Compress for a source
// of srcLen bytes with the given options: the codec's own bound plus the
// worst-case RAP frame for the call's worker cap. Invalid options fall back
// to the default configuration's bound; the Compress call itself reports
// the error.
func CompressBound(srcLen int, opts ...Option) int {
	cfg, err := newConfig(opts...)
	if err != nil {
		cfg, _ = newConfig()
	}

	return cfg.codec.CompressBound(srcLen) + rap.FrameBound(cfg.maxWorkers)
}

// SkipFrame inspects a compressed stream and returns the byte length of an
// embedded RAP frame, or 0 if none is present. A legacy single-threaded
// decoder skips that many bytes and decodes the remainder with an
// unmodified decoder.
func SkipFrame(src []byte) int {
	return rap.SkipFrame(src)
}
