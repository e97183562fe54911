// Package sim provides the building blocks of a simulated planar world.
package sim

import (
	fx "github.com/robotalks/movebase.go/pkg/framework"
	"github.com/robotalks/movebase.go/pkg/tf"
)

// Round object has a circular outline.
type Round interface {
	Radius() float64
}

// Positionable2D object maintains a pose in the world frame.
type Positionable2D interface {
	Pose2D() tf.Transform
}

// Placeable2D object can be moved with a new pose on a 2D plane.
type Placeable2D interface {
	Positionable2D
	SetPose2D(tf.Transform) tf.Transform
}

// Object represents an object in the world.
type Object interface {
	fx.Named
}

// ObjectsChangeListener listens for object changes.
type ObjectsChangeListener interface {
	ObjectsChanged(fx.ControlContext, ...Object)
	ObjectsRemoved(fx.ControlContext, ...Object)
}

// ObjectsChangeSubscriber subscribes objects change notifications.
type ObjectsChangeSubscriber interface {
	SubscribeObjectsChange(ObjectsChangeListener)
}

// ObjectsChangeCaster fans out object changes to subscribed listeners.
type ObjectsChangeCaster struct {
	listeners []ObjectsChangeListener
}

// SubscribeObjectsChange implements ObjectsChangeSubscriber.
func (c *ObjectsChangeCaster) SubscribeObjectsChange(ln ObjectsChangeListener) {
	c.listeners = append(c.listeners, ln)
}

// ObjectsChanged implements ObjectsChangeListener.
func (c *ObjectsChangeCaster) ObjectsChanged(cc fx.ControlContext, objs ...Object) {
	if len(objs) == 0 {
		return
	}
	for _, ln := range c.listeners {
		ln.ObjectsChanged(cc, objs...)
	}
}

// ObjectsRemoved implements ObjectsChangeListener.
func (c *ObjectsChangeCaster) ObjectsRemoved(cc fx.ControlContext, objs ...Object) {
	if len(objs) == 0 {
		return
	}
	for _, ln := range c.listeners {
		ln.ObjectsRemoved(cc, objs...)
	}
}
