package parallel

import "sync"

// Execute runs fn once per task, each in its own goroutine, and joins them
// all before returning.
//
// fn receives this worker's Task and must confine itself to it: the group
// source is shared read-only, task slots are disjoint by index, so the
// region needs no synchronization beyond the join barrier. There is no
// ordering between workers and no cancellation; a worker that fails records
// its error in its slot and its siblings run to completion, their results
// discarded later by the aggregator.
//
// A single-worker group runs its tasks sequentially in the calling
// goroutine: fallback decompression plans carry one task per recorded
// partition but only one worker to process them.
func (g *Group) Execute(fn func(t *Task)) {
	if len(g.tasks) == 0 {
		return
	}
	if g.Workers == 1 {
		for i := range g.tasks {
			fn(&g.tasks[i])
		}

		return
	}

	var wg sync.WaitGroup
	wg.Add(len(g.tasks))
	for i := range g.tasks {
		t := &g.tasks[i]
		go func() {
			defer wg.Done()
			fn(t)
		}()
	}
	wg.Wait()
}
