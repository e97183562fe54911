// Package see streams a simulated 2D world to the robotalks/see
// visualizer as JSON lines.
package see

import (
	"encoding/json"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/golang/glog"

	fx "github.com/robotalks/movebase.go/pkg/framework"
	"github.com/robotalks/movebase.go/pkg/sim"
)

// Adapter collects object changes during an iteration and writes them to
// Out in the post processing stage.
type Adapter struct {
	Config *Config
	Mapper ObjectMapper
	Out    io.Writer

	started bool
	changed map[string]sim.Object
	removed map[string]struct{}
}

// NewAdapter creates the adapter drawing objects as circles.
func NewAdapter(config *Config) *Adapter {
	a := &Adapter{Config: config, Out: os.Stdout}
	a.Mapper = MapObjectFunc(func(obj VisibleObject) []*Shape {
		return []*Shape{ShapeFrom("circle", obj, a.Config.Scale)}
	})
	return a
}

// Subscribe is a helper to subscribe object changes.
func (a *Adapter) Subscribe(sub sim.ObjectsChangeSubscriber) *Adapter {
	sub.SubscribeObjectsChange(a)
	return a
}

// ObjectsChanged implements ObjectsChangeListener.
func (a *Adapter) ObjectsChanged(_ fx.ControlContext, objs ...sim.Object) {
	if a.changed == nil {
		a.changed = make(map[string]sim.Object)
	}
	for _, obj := range objs {
		a.changed[obj.Name()] = obj
		delete(a.removed, obj.Name())
	}
}

// ObjectsRemoved implements ObjectsChangeListener.
func (a *Adapter) ObjectsRemoved(_ fx.ControlContext, objs ...sim.Object) {
	if a.removed == nil {
		a.removed = make(map[string]struct{})
	}
	for _, obj := range objs {
		a.removed[obj.Name()] = struct{}{}
		delete(a.changed, obj.Name())
	}
}

// AddToLoop implements LoopAdder.
func (a *Adapter) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(a.ReportChanges))
}

// corners mark the visible area so the visualizer scales to it.
func (a *Adapter) corners() []Message {
	w, h := a.Config.W*a.Config.Scale/2, a.Config.H*a.Config.Scale/2
	msgs := []Message{{Action: ActionReset}}
	for _, c := range []struct {
		loc  string
		x, y float64
	}{{"lt", -w, -h}, {"lb", -w, h}, {"rt", w, -h}, {"rb", w, h}} {
		shape := NewShape("corner", "corner-"+c.loc).With("loc", c.loc).At(c.x, c.y).WithRadius(1)
		msgs = append(msgs, Message{Action: ActionObject, Object: shape})
	}
	return msgs
}

// ReportChanges writes the changes since last report as one JSON line.
// The first report resets the visualizer.
func (a *Adapter) ReportChanges(cc fx.ControlContext) error {
	var msgs []Message
	if !a.started {
		msgs = a.corners()
		a.started, a.removed = true, nil
	}
	for _, name := range slices.Sorted(maps.Keys(a.changed)) {
		vo, ok := a.changed[name].(VisibleObject)
		if !ok {
			continue
		}
		for _, shape := range a.Mapper.MapObject(vo) {
			if shape != nil {
				msgs = append(msgs, Message{Action: ActionObject, Object: shape})
			}
		}
	}
	for _, name := range slices.Sorted(maps.Keys(a.removed)) {
		msgs = append(msgs, Message{Action: ActionRemove, RemoveID: ObjectID(name)})
	}
	a.changed, a.removed = nil, nil
	if len(msgs) == 0 {
		return nil
	}
	encoded, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	if _, err = a.Out.Write(append(encoded, '\n')); err != nil {
		glog.V(2).Infof("report changes: %v", err)
	}
	return nil
}
