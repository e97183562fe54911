package movebase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/movebase.go/pkg/l1/msgs"
)

func TestScanHolderResolvesOffsetOnce(t *testing.T) {
	w := &world{laserOffset: 0.2, failures: 2}
	h := NewScanHolder(w, testConfig())
	assert.Nil(t, h.LatestScan())
	assert.Equal(t, OffsetUnresolved, h.OffsetState())
	_, known := h.Offset()
	assert.False(t, known)

	first, second := testScan(), testScan(1, 1, 1, 1, 1)
	h.Update(context.Background(), first)
	h.Update(context.Background(), second)
	assert.Same(t, second, h.LatestScan())
	h.Wait()

	require.True(t, h.OffsetKnown())
	offset, known := h.Offset()
	assert.True(t, known)
	assert.Equal(t, 0.2, offset)
	w.lock.Lock()
	assert.Equal(t, 3, w.lookups)
	w.laserOffset = 0.5
	w.lock.Unlock()

	h.Update(context.Background(), first)
	h.Wait()
	offset, _ = h.Offset()
	assert.Equal(t, 0.2, offset)
	w.lock.Lock()
	assert.Equal(t, 3, w.lookups)
	w.lock.Unlock()
}

func TestScanHolderResolutionCanceled(t *testing.T) {
	w := &world{failures: 1 << 30}
	h := NewScanHolder(w, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	h.Update(ctx, testScan())
	assert.Equal(t, OffsetResolving, h.OffsetState())
	time.Sleep(5 * time.Millisecond)
	cancel()
	h.Wait()
	assert.Equal(t, OffsetUnresolved, h.OffsetState())
	assert.False(t, h.OffsetKnown())
}

func TestScanFromMsg(t *testing.T) {
	scan := ScanFromMsg(&msgs.LaserScan{
		Header:         &msgs.Header{FrameId: "/base_laser", Stamp: int64(time.Second)},
		AngleMin:       -1,
		AngleMax:       1,
		AngleIncrement: 0.5,
		RangeMin:       0.1,
		RangeMax:       5,
		Ranges:         []float64{1, 2, 3, 4, 5},
	})
	assert.Equal(t, "base_laser", scan.Frame)
	assert.Equal(t, time.Unix(1, 0), scan.Stamp)
	assert.Equal(t, 0.0, scan.Bearing(2))
	assert.Len(t, scan.Ranges, 5)
}
