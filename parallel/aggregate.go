package parallel

import (
	"fmt"

	"github.com/arloliu/mtcomp/errs"
	"github.com/arloliu/mtcomp/rap"
)

// ChecksumCombiner folds per-partition checksums into a stream checksum and
// moves it in and out of the stream trailer. It is the slice of the codec
// package's Checksummer the aggregators need; the codec supplies the
// arithmetic, this package only sequences it.
type ChecksumCombiner interface {
	Checksum(p []byte) uint32
	Combine(a, b uint32, n int) uint32
	ReadStreamChecksum(stream []byte) (sum uint32, ok bool)
	WriteStreamChecksum(stream []byte, sum uint32) bool
}

// AggregateCompress walks the tasks in partition order, appends each
// worker's output to the group destination after the RAP frame, and patches
// that partition's record in the already-written frame header. It returns
// the total stream length, frame included.
//
// The first failed task aborts aggregation and its error, wrapped with the
// partition index, is returned; the destination's partially written prefix
// is then unspecified and must not be interpreted. All scratch buffers are
// released on every path.
//
// When cc is non-nil the per-partition checksums are folded positionally
// and the combined value is patched into the stream trailer.
func (g *Group) AggregateCompress(cc ChecksumCombiner) (int, error) {
	defer g.releaseAll()

	total := g.FrameLen
	var combined uint32
	if cc != nil {
		combined = cc.Checksum(nil)
	}

	for i := range g.tasks {
		t := &g.tasks[i]
		if t.Err != nil {
			return 0, fmt.Errorf("compress partition %d: %w", i, t.Err)
		}
		if total+t.Written > len(g.Dst) {
			return 0, errs.ErrDstTooSmall
		}

		copy(g.Dst[total:], t.Scratch[:t.Written])
		rap.PutRecord(g.Dst, i, rap.Record{
			Offset:    uint32(total),
			Length:    uint32(t.Written),
			DecompLen: uint32(len(t.Src)),
		})
		total += t.Written

		if cc != nil {
			combined = cc.Combine(combined, t.Checksum, len(t.Src))
		}
	}

	if cc != nil {
		cc.WriteStreamChecksum(g.Dst[:total], combined)
	}

	return total, nil
}

// AggregateDecompress walks the tasks in partition order and concatenates
// each worker's decompressed output into the group destination. Zero-length
// partitions are skipped without being treated as errors; the first real
// failure aborts aggregation as in AggregateCompress.
//
// When cc is non-nil the per-partition checksums are folded positionally
// and compared against the stream checksum the producer embedded in the
// trailer of the final partition; a mismatch is errs.ErrChecksumMismatch,
// reported only after every partition decoded successfully.
func (g *Group) AggregateDecompress(cc ChecksumCombiner) (int, error) {
	defer g.releaseAll()

	total := 0
	var combined uint32
	if cc != nil {
		combined = cc.Checksum(nil)
	}
	var finalSrc []byte

	for i := range g.tasks {
		t := &g.tasks[i]
		if t.Skip {
			continue
		}
		if t.Err != nil {
			return 0, fmt.Errorf("decompress partition %d: %w", i, t.Err)
		}
		if total+t.Written > len(g.Dst) {
			return 0, errs.ErrDstTooSmall
		}

		copy(g.Dst[total:], t.Scratch[:t.Written])
		total += t.Written

		if cc != nil {
			combined = cc.Combine(combined, t.Checksum, t.Written)
		}
		finalSrc = t.Src
	}

	if cc != nil && finalSrc != nil {
		want, ok := cc.ReadStreamChecksum(finalSrc)
		if !ok || want != combined {
			return 0, errs.ErrChecksumMismatch
		}
	}

	return total, nil
}
