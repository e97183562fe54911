// Package tf keeps track of planar coordinate frames and resolves
// transforms between them.
package tf

import (
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/num/quat"

	"github.com/robotalks/movebase.go/pkg/l1/msgs"
)

// Transform is the pose of a child frame expressed in its parent frame,
// restricted to the plane.
type Transform struct {
	X   float64
	Y   float64
	Yaw float64
}

// Identity is the transform of a frame to itself.
var Identity = Transform{}

// Compose returns t*o, mapping points of o's child frame into t's parent frame.
func (t Transform) Compose(o Transform) Transform {
	x, y := t.Apply(o.X, o.Y)
	return Transform{X: x, Y: y, Yaw: NormalizeAngle(t.Yaw + o.Yaw)}
}

// Inverse returns the transform from parent to child.
func (t Transform) Inverse() Transform {
	cos, sin := math.Cos(t.Yaw), math.Sin(t.Yaw)
	return Transform{
		X:   -cos*t.X - sin*t.Y,
		Y:   sin*t.X - cos*t.Y,
		Yaw: NormalizeAngle(-t.Yaw),
	}
}

// Apply maps a point in the child frame into the parent frame.
func (t Transform) Apply(x, y float64) (float64, float64) {
	cos, sin := math.Cos(t.Yaw), math.Sin(t.Yaw)
	return t.X + cos*x - sin*y, t.Y + sin*x + cos*y
}

// Interpolate linearly interpolates between t and o, ratio in [0, 1].
func (t Transform) Interpolate(o Transform, ratio float64) Transform {
	return Transform{
		X:   t.X + (o.X-t.X)*ratio,
		Y:   t.Y + (o.Y-t.Y)*ratio,
		Yaw: NormalizeAngle(t.Yaw + NormalizeAngle(o.Yaw-t.Yaw)*ratio),
	}
}

// Stamped is a Transform between named frames at a point in time.
type Stamped struct {
	Parent string
	Child  string
	Stamp  time.Time
	Transform
}

// NormalizeAngle wraps an angle into [-pi, pi].
func NormalizeAngle(r float64) float64 {
	return math.Atan2(math.Sin(r), math.Cos(r))
}

// NormalizeFrame strips the leading slash of a frame id.
func NormalizeFrame(frame string) string {
	return strings.TrimPrefix(frame, "/")
}

// YawFromQuaternion extracts the heading of an orientation, that is the angle
// of the rotated X axis projected onto the plane.
func YawFromQuaternion(q *msgs.Quaternion) float64 {
	if q == nil {
		return 0
	}
	n := quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
	abs := quat.Abs(n)
	if abs == 0 {
		return 0
	}
	n = quat.Scale(1/abs, n)
	x := quat.Mul(quat.Mul(n, quat.Number{Imag: 1}), quat.Conj(n))
	return math.Atan2(x.Jmag, x.Imag)
}

// QuaternionFromYaw builds the orientation rotating by yaw around Z.
func QuaternionFromYaw(yaw float64) *msgs.Quaternion {
	n := quat.Exp(quat.Number{Kmag: yaw / 2})
	return &msgs.Quaternion{X: n.Imag, Y: n.Jmag, Z: n.Kmag, W: n.Real}
}

// StampFromNanos converts a message stamp, 0 means latest (zero time).
func StampFromNanos(nanos int64) time.Time {
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}

// NanosFromStamp converts a time into a message stamp.
func NanosFromStamp(stamp time.Time) int64 {
	if stamp.IsZero() {
		return 0
	}
	return stamp.UnixNano()
}

// FromPose converts a message pose into a planar transform.
func FromPose(pose *msgs.Pose) Transform {
	if pose == nil {
		return Identity
	}
	var t Transform
	if p := pose.Position; p != nil {
		t.X, t.Y = p.X, p.Y
	}
	t.Yaw = YawFromQuaternion(pose.Orientation)
	return t
}

// ToPose converts a planar transform into a message pose.
func (t Transform) ToPose() *msgs.Pose {
	return &msgs.Pose{
		Position:    &msgs.Vector3{X: t.X, Y: t.Y},
		Orientation: QuaternionFromYaw(t.Yaw),
	}
}

// FromMsg converts a TransformStamped event.
func FromMsg(m *msgs.TransformStamped) Stamped {
	st := Stamped{Child: NormalizeFrame(m.ChildFrameId)}
	if h := m.Header; h != nil {
		st.Parent = NormalizeFrame(h.FrameId)
		st.Stamp = StampFromNanos(h.Stamp)
	}
	if tr := m.Transform; tr != nil {
		if v := tr.Translation; v != nil {
			st.X, st.Y = v.X, v.Y
		}
		st.Yaw = YawFromQuaternion(tr.Rotation)
	}
	return st
}

// ToMsg converts to a TransformStamped event.
func (s Stamped) ToMsg(static bool) *msgs.TransformStamped {
	return &msgs.TransformStamped{
		Header:       &msgs.Header{FrameId: s.Parent, Stamp: NanosFromStamp(s.Stamp)},
		ChildFrameId: s.Child,
		Transform: &msgs.Transform{
			Translation: &msgs.Vector3{X: s.X, Y: s.Y},
			Rotation:    QuaternionFromYaw(s.Yaw),
		},
		Static: static,
	}
}
