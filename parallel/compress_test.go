package parallel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mtcomp/errs"
	"github.com/arloliu/mtcomp/rap"
)

func TestPlanCompress_InvalidInput(t *testing.T) {
	src := make([]byte, 1024)

	_, err := PlanCompress(src, nil, 16384, 4, 8)
	require.ErrorIs(t, err, errs.ErrNilDestination)

	dst := make([]byte, 1024)
	_, err = PlanCompress(src, dst, 0, 4, 8)
	require.ErrorIs(t, err, errs.ErrInvalidWindow)

	_, err = PlanCompress(src, dst, 16384, 0, 8)
	require.ErrorIs(t, err, errs.ErrInvalidWindow)

	_, err = PlanCompress(src, dst, -1, -1, 8)
	require.ErrorIs(t, err, errs.ErrInvalidWindow)
}

func TestPlanCompress_SmallInputSingleThreaded(t *testing.T) {
	// Source below one chunk (window_len * window_factor) never emits a frame.
	src := make([]byte, 16384*4-1)
	dst := make([]byte, 1<<20)

	g, err := PlanCompress(src, dst, 16384, 4, 8)
	require.NoError(t, err)
	require.Equal(t, 1, g.Workers)
	require.Equal(t, 0, g.FrameLen)
	require.Empty(t, g.Tasks())
	require.Equal(t, 0, rap.SkipFrame(dst))
}

func TestPlanCompress_ConcreteScenario(t *testing.T) {
	// 1 MiB source, window 16384 x 4 => chunk 65536 => 16 partitions;
	// a machine reporting 8 hardware threads runs 8 workers and the frame
	// is 8 + 4 + 2 + 2 + 8*(4+4+4) = 112 bytes.
	src := make([]byte, 1048576)
	dst := make([]byte, 2<<20)

	g, err := PlanCompress(src, dst, 16384, 4, 8)
	require.NoError(t, err)
	require.Equal(t, 8, g.Workers)
	require.Equal(t, 112, g.FrameLen)
	require.Equal(t, 112, rap.SkipFrame(dst))
}

func TestPlanCompress_WorkerCountBounds(t *testing.T) {
	dst := make([]byte, 2<<20)

	tests := []struct {
		name        string
		srcSize     int
		windowLen   int
		factor      int
		maxWorkers  int
		wantWorkers int
	}{
		{"partitions below worker cap", 1 << 20, 16384, 4, 64, 16},
		{"worker cap below partitions", 1 << 20, 16384, 4, 8, 8},
		{"exactly one chunk", 65536, 16384, 4, 8, 1},
		{"two chunks", 131072, 16384, 4, 8, 2},
		{"one worker cap", 1 << 20, 16384, 4, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := PlanCompress(make([]byte, tt.srcSize), dst, tt.windowLen, tt.factor, tt.maxWorkers)
			require.NoError(t, err)
			require.Equal(t, tt.wantWorkers, g.Workers)
		})
	}
}

func TestPlanCompress_LeftoverPromotion(t *testing.T) {
	dst := make([]byte, 2<<20)

	// chunk = 65536. A leftover of half a chunk or more earns a partition.
	g, err := PlanCompress(make([]byte, 2*65536+32768), dst, 16384, 4, 64)
	require.NoError(t, err)
	require.Equal(t, 3, g.Workers)

	// Below half a chunk it is folded into the even split.
	g, err = PlanCompress(make([]byte, 2*65536+32767), dst, 16384, 4, 64)
	require.NoError(t, err)
	require.Equal(t, 2, g.Workers)
}

func TestPlanCompress_LeftoverThresholdUnitFactor(t *testing.T) {
	dst := make([]byte, 2<<20)

	// With window_factor == 1 the promotion threshold is half the window.
	g, err := PlanCompress(make([]byte, 2*16384+8192), dst, 16384, 1, 64)
	require.NoError(t, err)
	require.Equal(t, 3, g.Workers)

	g, err = PlanCompress(make([]byte, 2*16384+8191), dst, 16384, 1, 64)
	require.NoError(t, err)
	require.Equal(t, 2, g.Workers)
}

func TestPartitionCompress_Disjointness(t *testing.T) {
	// Partition ranges must exactly cover [0, srcSize) with no overlap and
	// no gap, the last partition absorbing the leftover.
	src := make([]byte, 1048576+12345)
	dst := make([]byte, 4<<20)

	g, err := PlanCompress(src, dst, 16384, 4, 8)
	require.NoError(t, err)
	require.Equal(t, 8, g.Workers)

	covered := 0
	for i := range g.Tasks() {
		task := &g.Tasks()[i]
		require.NoError(t, g.PartitionCompress(task, 0))

		start := i * g.PartLen(0)
		require.Equal(t, src[start:start+len(task.Src)], task.Src)
		require.Equal(t, g.PartLen(i), len(task.Src))
		covered += len(task.Src)
	}
	require.Equal(t, len(src), covered)
}

func TestPartitionCompress_ScratchSizing(t *testing.T) {
	src := make([]byte, 1<<20)
	dst := make([]byte, 4<<20)

	g, err := PlanCompress(src, dst, 16384, 4, 4)
	require.NoError(t, err)

	task := &g.Tasks()[0]
	require.NoError(t, g.PartitionCompress(task, 777))
	require.Len(t, task.Scratch, g.PartLen(0)+777)
}

func TestPlanCompress_FrameDoesNotFit(t *testing.T) {
	src := make([]byte, 1<<20)
	dst := make([]byte, rap.FrameLen(8)-1)

	_, err := PlanCompress(src, dst, 16384, 4, 8)
	require.ErrorIs(t, err, errs.ErrDstTooSmall)
}
