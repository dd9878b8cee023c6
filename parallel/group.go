// Package parallel implements the multithreading façade that lets a
// single-threaded, buffer-to-buffer codec scale across CPU cores.
//
// A compress or decompress call builds one Group: a planner derives the
// worker count and partition geometry from the buffer sizes and a search
// window constraint, partitioners compute each worker's byte range and
// scratch buffer, a fork-join executor runs the codec once per worker, and
// an aggregator reassembles the results into the caller's buffer in
// partition order.
//
// Workers share the source read-only over disjoint sub-ranges and each
// writes only its own Task slot, so the parallel region needs no locks; the
// join barrier in Execute orders everything before aggregation.
package parallel

import (
	"github.com/arloliu/mtcomp/internal/pool"
)

// Task carries one worker's partition state for the lifetime of a single
// compress-or-decompress call.
type Task struct {
	// ID is this worker's index into the group's task list.
	ID int

	// Src is this worker's partition of the group source, borrowed, never
	// copied.
	Src []byte

	// Scratch is this worker's exclusively-owned output buffer, sized for
	// the partition's worst-case output. Ownership transfers to the
	// aggregator after the join barrier.
	Scratch []byte

	// Written is the number of bytes the codec wrote into Scratch.
	Written int

	// Checksum is the partition checksum reported after execution, when the
	// codec exposes one.
	Checksum uint32

	// Skip marks a valid zero-length partition with nothing to decode.
	Skip bool

	// Err is this worker's codec or partitioning failure, nil on success.
	Err error

	release func()
}

// Group tracks the state of one parallel compress-or-decompress call. It is
// created fresh per call by PlanCompress or PlanDecompress and never reused.
type Group struct {
	// Src and Dst are the caller's buffers, borrowed, not owned.
	Src []byte
	Dst []byte

	// Workers is the resolved worker count, at least 1.
	Workers int

	// Partitions is the stream's partition count. It equals Workers except
	// on a fallback decompression plan, where a single worker walks more
	// recorded partitions than it has siblings.
	Partitions int

	// FrameLen is the RAP frame length at the start of the stream; 0 means
	// a plain single-threaded stream with no frame.
	FrameLen int

	// commonPartSize and leftoverBytes are the tentative even split of the
	// partitioned quantity: the source size on compression, the destination
	// size on decompression.
	commonPartSize int
	leftoverBytes  int

	tasks []Task
}

// Tasks returns the group's per-partition task slots. Each worker may touch
// only its own index during the parallel region.
func (g *Group) Tasks() []Task {
	return g.tasks
}

// PartLen returns the source byte length of partition id under the group's
// even split: every partition gets the common share, the last one also
// absorbs the leftover.
func (g *Group) PartLen(id int) int {
	if id == g.Partitions-1 {
		return g.commonPartSize + g.leftoverBytes
	}

	return g.commonPartSize
}

// newTasks allocates one task slot per partition.
func (g *Group) newTasks() {
	g.tasks = make([]Task, g.Partitions)
	for i := range g.tasks {
		g.tasks[i].ID = i
	}
}

// grabScratch allocates t's scratch buffer from the pool.
func (t *Task) grabScratch(size int) {
	t.Scratch, t.release = pool.GetByteSlice(size)
}

// releaseAll returns every scratch buffer to the pool. Called exactly once,
// by the aggregator, after results are copied out or abandoned.
func (g *Group) releaseAll() {
	for i := range g.tasks {
		t := &g.tasks[i]
		if t.release != nil {
			t.release()
			t.release = nil
		}
		t.Scratch = nil
	}
}
