package parallel

import (
	"runtime"

	"github.com/arloliu/mtcomp/errs"
	"github.com/arloliu/mtcomp/rap"
)

// Default tuning knobs for the partition planner. The window length matches
// the largest back-reference distance of the deflate family, so a partition
// boundary never splits a span a codec could reference across.
const (
	DefaultWindowLen    = 32768
	DefaultWindowFactor = 4
)

// PlanCompress decides the worker count and partition geometry for
// compressing src into dst, and writes the RAP frame header into dst when
// more than one worker will run.
//
// The minimum per-worker chunk is windowLen*windowFactor bytes. Sources
// smaller than one chunk, and plans that resolve to a single worker, skip
// header emission entirely so tiny inputs stay byte-compatible with
// non-threaded output. A non-positive maxWorkers means the runtime's
// available parallelism.
//
// The returned group's FrameLen tells the caller where partition payloads
// begin; it is 0 on the single-threaded path.
func PlanCompress(src, dst []byte, windowLen, windowFactor, maxWorkers int) (*Group, error) {
	if dst == nil {
		return nil, errs.ErrNilDestination
	}
	if windowLen <= 0 || windowFactor <= 0 {
		return nil, errs.ErrInvalidWindow
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

	chunkSize := windowLen * windowFactor
	if len(src) < chunkSize {
		// Single-threaded execution for a very small stream.
		return g, nil
	}

	numPartitions := len(src) / chunkSize
	leftover := len(src) % chunkSize

	// A sufficiently large leftover earns its own partition instead of
	// producing a pathologically small trailing one.
	threshold := windowLen >> 1
	if windowFactor > 1 {
		threshold = chunkSize >> 1
	}
	if leftover >= threshold {
		numPartitions++
	}

	g.Workers = min(maxWorkers, numPartitions)
	if g.Workers == 1 {
		return g, nil
	}
	g.Partitions = g.Workers

	// Tentative even split; the per-worker partitioner resolves exact ranges.
	g.commonPartSize = len(src) / g.Workers
	g.leftoverBytes = len(src) % g.Workers
	g.newTasks()

	frameLen, err := rap.WriteHeader(dst, g.Workers)
	if err != nil {
		return nil, err
	}
	g.FrameLen = frameLen

	return g, nil
}

// PartitionCompress computes worker t's exact byte range of the group
// source and allocates its scratch buffer, sized to the partition length
// plus the codec's worst-case padding for that length.
func (g *Group) PartitionCompress(t *Task, pad int) error {
	start := t.ID * g.commonPartSize
	length := g.PartLen(t.ID)

	t.Src = g.Src[start : start+length]
	t.grabScratch(length + pad)

	return nil
}
