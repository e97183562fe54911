package tf

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	fx "github.com/robotalks/movebase.go/pkg/framework"
	"github.com/robotalks/movebase.go/pkg/l1/msgs"
)

// DefaultCacheTime is how long dynamic transforms are kept.
const DefaultCacheTime = 10 * time.Second

var (
	// ErrNoPath indicates the two frames are not connected.
	ErrNoPath = errors.New("frames not connected")
	// ErrExtrapolation indicates the requested time is outside the buffered
	// history.
	ErrExtrapolation = errors.New("extrapolation into the future or past")
)

// LookupError reports a failed lookup between two frames.
type LookupError struct {
	Target string
	Source string
	Err    error
}

// Error implements error.
func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %s <- %s: %v", e.Target, e.Source, e.Err)
}

// Cause returns the underlying error.
func (e *LookupError) Cause() error { return e.Err }

// Unwrap supports errors.Is.
func (e *LookupError) Unwrap() error { return e.Err }

// IsUnavailable determines if err means the transform is not (yet) known.
func IsUnavailable(err error) bool {
	switch errors.Cause(err) {
	case ErrNoPath, ErrExtrapolation:
		return true
	}
	return false
}

type frameHistory struct {
	parent  string
	static  bool
	entries []Stamped
}

// Buffer maintains the frame tree. Each child frame has a single parent.
type Buffer struct {
	CacheTime time.Duration
	Clock     clock.Clock

	lock    sync.RWMutex
	frames  map[string]*frameHistory
	changed chan struct{}
}

// NewBuffer creates a Buffer.
func NewBuffer() *Buffer {
	return &Buffer{
		CacheTime: DefaultCacheTime,
		frames:    make(map[string]*frameHistory),
		changed:   make(chan struct{}),
	}
}

// WithClock replaces the clock, used by tests.
func (b *Buffer) WithClock(clk clock.Clock) *Buffer {
	b.Clock = clk
	return b
}

func (b *Buffer) clock() clock.Clock {
	if b.Clock == nil {
		return clock.New()
	}
	return b.Clock
}

// SetTransform inserts a transform. Static transforms replace the history
// of the child frame and never expire.
func (b *Buffer) SetTransform(st Stamped, static bool) error {
	st.Parent, st.Child = NormalizeFrame(st.Parent), NormalizeFrame(st.Child)
	if st.Parent == "" || st.Child == "" {
		return errors.New("transform requires both parent and child frame")
	}
	if st.Parent == st.Child {
		return errors.Errorf("frame %q can't be parent of itself", st.Child)
	}
	if st.Stamp.IsZero() && !static {
		st.Stamp = b.clock().Now()
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	h := b.frames[st.Child]
	if h == nil {
		h = &frameHistory{}
		b.frames[st.Child] = h
	}
	if h.parent != "" && h.parent != st.Parent {
		glog.Warningf("frame %q re-parented from %q to %q", st.Child, h.parent, st.Parent)
		h.entries = nil
	}
	h.parent, h.static = st.Parent, static
	if static {
		h.entries = []Stamped{st}
	} else {
		h.insert(st, b.CacheTime)
	}
	close(b.changed)
	b.changed = make(chan struct{})
	return nil
}

func (h *frameHistory) insert(st Stamped, cacheTime time.Duration) {
	n := sort.Search(len(h.entries), func(i int) bool {
		return !h.entries[i].Stamp.Before(st.Stamp)
	})
	if n < len(h.entries) && h.entries[n].Stamp.Equal(st.Stamp) {
		h.entries[n] = st
	} else {
		h.entries = append(h.entries, Stamped{})
		copy(h.entries[n+1:], h.entries[n:])
		h.entries[n] = st
	}
	if cacheTime > 0 {
		latest := h.entries[len(h.entries)-1].Stamp
		drop := 0
		for drop < len(h.entries)-1 && latest.Sub(h.entries[drop].Stamp) > cacheTime {
			drop++
		}
		h.entries = h.entries[drop:]
	}
}

func (h *frameHistory) at(stamp time.Time) (Transform, error) {
	if len(h.entries) == 0 {
		return Identity, ErrNoPath
	}
	if h.static || stamp.IsZero() {
		return h.entries[len(h.entries)-1].Transform, nil
	}
	first, last := h.entries[0], h.entries[len(h.entries)-1]
	if stamp.Equal(last.Stamp) {
		return last.Transform, nil
	}
	if stamp.Before(first.Stamp) || stamp.After(last.Stamp) {
		return Identity, ErrExtrapolation
	}
	n := sort.Search(len(h.entries), func(i int) bool {
		return !h.entries[i].Stamp.Before(stamp)
	})
	next := h.entries[n]
	if next.Stamp.Equal(stamp) {
		return next.Transform, nil
	}
	prev := h.entries[n-1]
	ratio := float64(stamp.Sub(prev.Stamp)) / float64(next.Stamp.Sub(prev.Stamp))
	return prev.Interpolate(next.Transform, ratio), nil
}

func (b *Buffer) ancestors(frame string) ([]string, error) {
	path := []string{frame}
	seen := map[string]bool{frame: true}
	for h := b.frames[frame]; h != nil; h = b.frames[h.parent] {
		if seen[h.parent] {
			return nil, errors.Errorf("loop detected at frame %q", h.parent)
		}
		seen[h.parent] = true
		path = append(path, h.parent)
	}
	return path, nil
}

// toAncestor maps points in frame into its ancestor anc.
func (b *Buffer) toAncestor(frame, anc string, stamp time.Time) (Transform, error) {
	acc := Identity
	for cur := frame; cur != anc; {
		h := b.frames[cur]
		tr, err := h.at(stamp)
		if err != nil {
			return Identity, err
		}
		acc = tr.Compose(acc)
		cur = h.parent
	}
	return acc, nil
}

// Lookup returns the transform mapping points in source frame into target
// frame at the given time. The zero time means the latest available.
func (b *Buffer) Lookup(target, source string, stamp time.Time) (Transform, error) {
	target, source = NormalizeFrame(target), NormalizeFrame(source)
	if target == source {
		return Identity, nil
	}
	b.lock.RLock()
	defer b.lock.RUnlock()
	tr, err := b.lookup(target, source, stamp)
	if err != nil {
		return Identity, &LookupError{Target: target, Source: source, Err: err}
	}
	return tr, nil
}

func (b *Buffer) lookup(target, source string, stamp time.Time) (Transform, error) {
	tgtPath, err := b.ancestors(target)
	if err != nil {
		return Identity, err
	}
	srcPath, err := b.ancestors(source)
	if err != nil {
		return Identity, err
	}
	inTarget := make(map[string]bool, len(tgtPath))
	for _, f := range tgtPath {
		inTarget[f] = true
	}
	common := ""
	for _, f := range srcPath {
		if inTarget[f] {
			common = f
			break
		}
	}
	if common == "" {
		return Identity, ErrNoPath
	}
	srcTr, err := b.toAncestor(source, common, stamp)
	if err != nil {
		return Identity, err
	}
	tgtTr, err := b.toAncestor(target, common, stamp)
	if err != nil {
		return Identity, err
	}
	return tgtTr.Inverse().Compose(srcTr), nil
}

// Changed returns a channel closed when the next transform is inserted.
func (b *Buffer) Changed() <-chan struct{} {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.changed
}

// LookupTransform waits up to timeout for the transform to become available.
// A zero timeout performs a single lookup.
func (b *Buffer) LookupTransform(ctx context.Context, target, source string, stamp time.Time, timeout time.Duration) (Transform, error) {
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := b.clock().Timer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}
	for {
		changed := b.Changed()
		tr, err := b.Lookup(target, source, stamp)
		if err == nil || !IsUnavailable(err) || deadline == nil {
			return tr, err
		}
		select {
		case <-ctx.Done():
			return Identity, ctx.Err()
		case <-deadline:
			return Identity, err
		case <-changed:
		}
	}
}

// Frames lists the known child frames and their parents.
func (b *Buffer) Frames() map[string]string {
	b.lock.RLock()
	defer b.lock.RUnlock()
	frames := make(map[string]string, len(b.frames))
	for child, h := range b.frames {
		frames[child] = h.parent
	}
	return frames
}

// Control implements Controller and feeds TransformStamped events into the
// buffer. The events are taken from the store.
func (b *Buffer) Control(cc fx.ControlContext) error {
	fx.TakeMessages(cc.Messages(), func(m *msgs.TransformStamped) {
		if err := b.SetTransform(FromMsg(m), m.Static); err != nil {
			glog.Warningf("drop transform %s: %v", m.ChildFrameId, err)
		}
	})
	return nil
}

// AddToLoop implements LoopAdder.
func (b *Buffer) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvSense, b)
}
