package nav

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/movebase.go/pkg/l1/msgs"
	"github.com/robotalks/movebase.go/pkg/sim/physics"
	"github.com/robotalks/movebase.go/pkg/tf"
)

type placeable struct {
	pose tf.Transform
}

func (p *placeable) Pose2D() tf.Transform {
	return p.pose
}

func (p *placeable) SetPose2D(pose tf.Transform) tf.Transform {
	p.pose = pose
	return pose
}

func TestMotionEstimate(t *testing.T) {
	testCases := []struct {
		name   string
		from   tf.Transform
		twist  msgs.Twist
		after  time.Duration
		expect tf.Transform
	}{
		{
			name:   "forward",
			twist:  msgs.Twist{LinearX: 1},
			after:  time.Second,
			expect: tf.Transform{X: 1},
		},
		{
			name:   "reverse",
			twist:  msgs.Twist{LinearX: -0.5},
			after:  2 * time.Second,
			expect: tf.Transform{X: -1},
		},
		{
			name:   "forward when facing left",
			from:   tf.Transform{X: 1, Yaw: math.Pi / 2},
			twist:  msgs.Twist{LinearX: 1},
			after:  time.Second,
			expect: tf.Transform{X: 1, Y: 1, Yaw: math.Pi / 2},
		},
		{
			name:   "strafe",
			twist:  msgs.Twist{LinearY: 1},
			after:  time.Second,
			expect: tf.Transform{Y: 1},
		},
		{
			name:   "rotate in place",
			twist:  msgs.Twist{AngularZ: -math.Pi / 2},
			after:  time.Second,
			expect: tf.Transform{Yaw: -math.Pi / 2},
		},
		{
			name:   "quarter arc",
			twist:  msgs.Twist{LinearX: 1, AngularZ: math.Pi / 2},
			after:  time.Second,
			expect: tf.Transform{X: 2 / math.Pi, Y: 2 / math.Pi, Yaw: math.Pi / 2},
		},
		{
			name:   "half circle strafing",
			twist:  msgs.Twist{LinearY: 1, AngularZ: math.Pi},
			after:  time.Second,
			expect: tf.Transform{X: -2 / math.Pi, Yaw: math.Pi},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var baseTime time.Time
			s := newMotionState(tc.from, baseTime, tc.twist.LinearX, tc.twist.LinearY, tc.twist.AngularZ)
			require.NotNil(t, s)
			pose := s.estimate(baseTime.Add(tc.after))
			assert.InDelta(t, tc.expect.X, pose.X, 1e-9)
			assert.InDelta(t, tc.expect.Y, pose.Y, 1e-9)
			assert.InDelta(t, 0, tf.NormalizeAngle(tc.expect.Yaw-pose.Yaw), 1e-9)
		})
	}
}

func TestEngineMove(t *testing.T) {
	testCases := []struct {
		name   string
		caps   msgs.BaseCaps
		twist  msgs.Twist
		expect tf.Transform
	}{
		{
			name:   "differential drops strafe",
			twist:  msgs.Twist{LinearX: 1, LinearY: 1},
			expect: tf.Transform{X: 1},
		},
		{
			name:   "holonomic",
			caps:   msgs.BaseCaps{Holonomic: true},
			twist:  msgs.Twist{LinearX: 1, LinearY: 1},
			expect: tf.Transform{X: 1, Y: 1},
		},
		{
			name:   "linear speed limited",
			caps:   msgs.BaseCaps{Holonomic: true, LinearSpeedMax: 0.5},
			twist:  msgs.Twist{LinearX: 3, LinearY: 4},
			expect: tf.Transform{X: 0.3, Y: 0.4},
		},
		{
			name:   "angular speed limited",
			caps:   msgs.BaseCaps{AngularSpeedMax: 0.5},
			twist:  msgs.Twist{AngularZ: -2},
			expect: tf.Transform{Yaw: -0.5},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			obj := &placeable{}
			e := New(obj)
			e.Caps = tc.caps
			var baseTime time.Time
			ctx := context.Background()
			e.Move(physics.At(ctx, baseTime), &tc.twist)
			assert.True(t, e.Moving())
			e.Step(physics.At(ctx, baseTime.Add(time.Second)))
			assert.InDelta(t, tc.expect.X, obj.pose.X, 1e-9)
			assert.InDelta(t, tc.expect.Y, obj.pose.Y, 1e-9)
			assert.InDelta(t, tc.expect.Yaw, obj.pose.Yaw, 1e-9)
		})
	}
}

func TestEngineStop(t *testing.T) {
	obj := &placeable{}
	e := New(obj)
	var baseTime time.Time
	ctx := context.Background()
	e.Move(physics.At(ctx, baseTime), &msgs.Twist{LinearX: 1})
	e.Move(physics.At(ctx, baseTime.Add(time.Second)), &msgs.Twist{})
	assert.False(t, e.Moving())
	e.Step(physics.At(ctx, baseTime.Add(5*time.Second)))
	assert.InDelta(t, 1, obj.pose.X, 1e-9)
}

func TestEngineCommandTimeout(t *testing.T) {
	obj := &placeable{}
	e := New(obj)
	e.CommandTimeout = time.Second
	var baseTime time.Time
	ctx := context.Background()
	e.Move(physics.At(ctx, baseTime), &msgs.Twist{LinearX: 1})
	e.Step(physics.At(ctx, baseTime.Add(500*time.Millisecond)))
	assert.True(t, e.Moving())
	e.Step(physics.At(ctx, baseTime.Add(1500*time.Millisecond)))
	assert.False(t, e.Moving())
	assert.InDelta(t, 1.5, obj.pose.X, 1e-9)
	e.Step(physics.At(ctx, baseTime.Add(3*time.Second)))
	assert.InDelta(t, 1.5, obj.pose.X, 1e-9)
}

func TestEngineCaps(t *testing.T) {
	e := New(&placeable{})
	e.Caps = msgs.BaseCaps{LinearSpeedMax: 0.5, FootprintFrame: "base_footprint"}
	caps := e.CapsQuery(physics.Now(context.Background()), &msgs.BaseCapsQuery{})
	assert.Equal(t, e.Caps, *caps)
}
