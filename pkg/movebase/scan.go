package movebase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"

	fx "github.com/robotalks/movebase.go/pkg/framework"
	"github.com/robotalks/movebase.go/pkg/l1/msgs"
	"github.com/robotalks/movebase.go/pkg/tf"
)

// RangeScan is an immutable snapshot of a planar range scan.
type RangeScan struct {
	Frame          string
	Stamp          time.Time
	AngleMin       float64
	AngleMax       float64
	AngleIncrement float64
	RangeMin       float64
	RangeMax       float64
	Ranges         []float64
}

// ScanFromMsg converts a LaserScan message.
func ScanFromMsg(m *msgs.LaserScan) *RangeScan {
	s := &RangeScan{
		AngleMin:       m.AngleMin,
		AngleMax:       m.AngleMax,
		AngleIncrement: m.AngleIncrement,
		RangeMin:       m.RangeMin,
		RangeMax:       m.RangeMax,
		Ranges:         append([]float64(nil), m.Ranges...),
	}
	if h := m.Header; h != nil {
		s.Frame = tf.NormalizeFrame(h.FrameId)
		s.Stamp = tf.StampFromNanos(h.Stamp)
	}
	return s
}

// Bearing returns the bearing of reading i in the sensor frame.
func (s *RangeScan) Bearing(i int) float64 {
	return s.AngleMin + float64(i)*s.AngleIncrement
}

// Covers determines if the scan sees the full aperture centered at bearing.
func (s *RangeScan) Covers(bearing, aperture float64) bool {
	return bearing-aperture/2 >= s.AngleMin && bearing+aperture/2 <= s.AngleMax
}

// Transformer resolves transforms between frames, waiting up to timeout.
type Transformer interface {
	LookupTransform(ctx context.Context, target, source string, stamp time.Time, timeout time.Duration) (tf.Transform, error)
}

// OffsetState is the resolution state of the sensor offset.
type OffsetState int32

// Offset states.
const (
	OffsetUnresolved OffsetState = iota
	OffsetResolving
	OffsetResolved
)

func (s OffsetState) String() string {
	switch s {
	case OffsetUnresolved:
		return "unresolved"
	case OffsetResolving:
		return "resolving"
	case OffsetResolved:
		return "resolved"
	}
	return "unknown"
}

// ScanHolder keeps the latest scan and the forward offset of the sensor
// relative to the footprint. The offset is resolved once from the first
// scan and never changes afterwards.
type ScanHolder struct {
	FootprintFrame string
	Timeout        time.Duration
	Backoff        time.Duration
	Clock          clock.Clock

	transformer Transformer
	scan        atomic.Pointer[RangeScan]
	state       atomic.Int32
	offset      float64
	resolving   sync.WaitGroup
}

// NewScanHolder creates a ScanHolder.
func NewScanHolder(transformer Transformer, conf *Config) *ScanHolder {
	return &ScanHolder{
		FootprintFrame: tf.NormalizeFrame(conf.FootprintFrame),
		Timeout:        conf.TransformTimeout,
		Backoff:        conf.TransformBackoff,
		transformer:    transformer,
	}
}

func (h *ScanHolder) clock() clock.Clock {
	if h.Clock == nil {
		return clock.New()
	}
	return h.Clock
}

// Update replaces the latest scan. The first scan starts offset resolution,
// which keeps retrying until it succeeds or ctx is done.
func (h *ScanHolder) Update(ctx context.Context, scan *RangeScan) {
	h.scan.Store(scan)
	if h.state.CompareAndSwap(int32(OffsetUnresolved), int32(OffsetResolving)) {
		h.resolving.Add(1)
		go h.resolveOffset(ctx, scan.Frame)
	}
}

func (h *ScanHolder) resolveOffset(ctx context.Context, frame string) {
	defer h.resolving.Done()
	for {
		tr, err := h.transformer.LookupTransform(ctx, h.FootprintFrame, frame, time.Time{}, h.Timeout)
		if err == nil {
			h.offset = tr.X
			h.state.Store(int32(OffsetResolved))
			glog.Infof("sensor offset %s <- %s: %v", h.FootprintFrame, frame, tr.X)
			return
		}
		if ctx.Err() != nil {
			h.state.Store(int32(OffsetUnresolved))
			return
		}
		glog.Warningf("resolve sensor offset: %v", err)
		timer := h.clock().Timer(h.Backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			h.state.Store(int32(OffsetUnresolved))
			return
		case <-timer.C:
		}
	}
}

// Wait waits until an ongoing offset resolution finishes.
func (h *ScanHolder) Wait() {
	h.resolving.Wait()
}

// LatestScan returns the most recent scan, nil if none received.
func (h *ScanHolder) LatestScan() *RangeScan {
	return h.scan.Load()
}

// OffsetState returns the resolution state of the offset.
func (h *ScanHolder) OffsetState() OffsetState {
	return OffsetState(h.state.Load())
}

// OffsetKnown determines if the sensor offset is resolved.
func (h *ScanHolder) OffsetKnown() bool {
	return h.OffsetState() == OffsetResolved
}

// Offset returns the sensor offset, valid only when OffsetKnown.
func (h *ScanHolder) Offset() (float64, bool) {
	if !h.OffsetKnown() {
		return 0, false
	}
	return h.offset, true
}

// Control implements Controller and consumes LaserScan events.
func (h *ScanHolder) Control(cc fx.ControlContext) error {
	fx.TakeMessages(cc.Messages(), func(m *msgs.LaserScan) {
		h.Update(cc.Context(), ScanFromMsg(m))
	})
	return nil
}

// AddToLoop implements LoopAdder.
func (h *ScanHolder) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvSense, h)
}
