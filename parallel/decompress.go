package parallel

import (
	"runtime"

	"github.com/arloliu/mtcomp/errs"
	"github.com/arloliu/mtcomp/rap"
)

// PlanDecompress recovers the worker count and partition geometry from the
// RAP frame of a compressed stream, mirroring PlanCompress.
//
// Streams without the magic word plan as a single worker with FrameLen 0:
// the caller runs the plain single-threaded decode path over all of src.
// When forceSingle is set, only the frame length is recovered; the caller
// skips the frame and feeds the remainder to a single-threaded decoder.
// When the frame records more partitions than maxWorkers, the plan falls
// back to a single worker that walks every recorded partition in order, so
// block codecs whose partitions are not one concatenatable stream still
// decode correctly.
//
// The tentative even split divides the destination size: the decompressed
// length, not the compressed one, is what must be parallel-written without
// overlap.
func PlanDecompress(src, dst []byte, maxWorkers int, forceSingle bool) (*Group, error) {
	if src == nil {
		return nil, errs.ErrNilSource
	}
	if maxWorkers <= 0 {
		maxWorkers = runtime.GOMAXPROCS(0)
	}

	g := &Group{
		Src:        src,
		Dst:        dst,
		Workers:    1,
		Partitions: 1,
	}

	if !rap.HasFrame(src) {
		// Plain single-threaded stream, no header to skip.
		return g, nil
	}

	hdr, err := rap.ParseHeader(src)
	if err != nil {
		return nil, err
	}
	g.FrameLen = int(hdr.MetadataLen)

	if forceSingle {
		return g, nil
	}

	g.Partitions = int(hdr.MainThreads)
	if g.Partitions <= maxWorkers {
		g.Workers = g.Partitions
	}

	g.commonPartSize = len(dst) / g.Partitions
	g.leftoverBytes = len(dst) % g.Partitions
	g.newTasks()

	return g, nil
}

// PartitionDecompress locates worker t's partition from its RAP record and
// allocates a scratch buffer sized to the recorded decompressed length plus
// pad. A zero-length record marks a valid "nothing to decode" partition:
// t.Skip is set and no scratch is allocated.
func (g *Group) PartitionDecompress(t *Task, pad int) error {
	rec, err := rap.ReadRecord(g.Src, t.ID)
	if err != nil {
		return err
	}

	if rec.Length == 0 {
		t.Skip = true
		return nil
	}

	end := int(rec.Offset) + int(rec.Length)
	if int(rec.Offset) < g.FrameLen || end > len(g.Src) {
		return errs.ErrInvalidFrame
	}

	t.Src = g.Src[rec.Offset:end]
	t.grabScratch(int(rec.DecompLen) + pad)

	return nil
}
