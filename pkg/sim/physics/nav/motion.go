package nav

import (
	"math"
	"time"

	"github.com/robotalks/movebase.go/pkg/tf"
)

// motionState integrates a constant body frame velocity from startPose.
type motionState struct {
	startPose tf.Transform
	startTime time.Time
	linearX   float64
	linearY   float64
	angularZ  float64
}

func newMotionState(pose tf.Transform, now time.Time, vx, vy, wz float64) *motionState {
	if vx == 0 && vy == 0 && wz == 0 {
		return nil
	}
	return &motionState{
		startPose: pose,
		startTime: now,
		linearX:   vx,
		linearY:   vy,
		angularZ:  wz,
	}
}

// estimate returns the pose at now. The body velocity is constant, so the
// path is an arc when turning and a line otherwise.
func (s *motionState) estimate(now time.Time) tf.Transform {
	secs := now.Sub(s.startTime).Seconds()
	if secs <= 0 {
		return s.startPose
	}
	yaw0 := s.startPose.Yaw
	if s.angularZ == 0 {
		x, y := s.linearX*secs, s.linearY*secs
		cos, sin := math.Cos(yaw0), math.Sin(yaw0)
		return tf.Transform{
			X:   s.startPose.X + cos*x - sin*y,
			Y:   s.startPose.Y + sin*x + cos*y,
			Yaw: yaw0,
		}
	}
	yaw := yaw0 + s.angularZ*secs
	dsin, dcos := math.Sin(yaw)-math.Sin(yaw0), math.Cos(yaw)-math.Cos(yaw0)
	return tf.Transform{
		X:   s.startPose.X + (s.linearX*dsin+s.linearY*dcos)/s.angularZ,
		Y:   s.startPose.Y + (s.linearY*dsin-s.linearX*dcos)/s.angularZ,
		Yaw: tf.NormalizeAngle(yaw),
	}
}
