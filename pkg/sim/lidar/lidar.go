// Package lidar simulates a planar range scanner sweeping round obstacles.
package lidar

import (
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/robotalks/movebase.go/pkg/tf"
)

// Obstacle is a round obstacle in the world frame.
type Obstacle struct {
	ID     string
	Center r2.Point
	R      float64
}

// Name implements Named.
func (o *Obstacle) Name() string {
	return o.ID
}

// Radius implements sim.Round.
func (o *Obstacle) Radius() float64 {
	return o.R
}

// Pose2D implements sim.Positionable2D.
func (o *Obstacle) Pose2D() tf.Transform {
	return tf.Transform{X: o.Center.X, Y: o.Center.Y}
}

// Contains determines if p is inside the obstacle.
func (o *Obstacle) Contains(p r2.Point) bool {
	return p.Sub(o.Center).Norm() <= o.R
}

// Intersect returns the distance along the ray from origin in unit
// direction dir to the first boundary crossing of the obstacle.
func (o *Obstacle) Intersect(origin, dir r2.Point) (float64, bool) {
	f := origin.Sub(o.Center)
	b := f.Dot(dir)
	c := f.Dot(f) - o.R*o.R
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		// origin is inside, the ray exits through the far side.
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// Scanner produces range readings of Obstacles.
type Scanner struct {
	AngleMin       float64
	AngleMax       float64
	AngleIncrement float64
	RangeMin       float64
	RangeMax       float64
	Obstacles      []*Obstacle
}

// Readings is the number of readings in a sweep.
func (s *Scanner) Readings() int {
	if s.AngleIncrement <= 0 || s.AngleMax < s.AngleMin {
		return 0
	}
	return int(math.Floor((s.AngleMax-s.AngleMin)/s.AngleIncrement+1e-9)) + 1
}

// Scan sweeps from the sensor pose in the world frame. Rays hitting nothing
// within RangeMax report RangeMax.
func (s *Scanner) Scan(pose tf.Transform) []float64 {
	ranges := make([]float64, s.Readings())
	origin := r2.Point{X: pose.X, Y: pose.Y}
	for i := range ranges {
		angle := pose.Yaw + s.AngleMin + float64(i)*s.AngleIncrement
		dir := r2.Point{X: math.Cos(angle), Y: math.Sin(angle)}
		ranges[i] = s.cast(origin, dir)
	}
	return ranges
}

func (s *Scanner) cast(origin, dir r2.Point) float64 {
	nearest := s.RangeMax
	for _, o := range s.Obstacles {
		if t, ok := o.Intersect(origin, dir); ok && t < nearest {
			nearest = t
		}
	}
	return math.Max(nearest, s.RangeMin)
}

// ParseObstacles parses obstacles in the form "x,y,r;x,y,r".
func ParseObstacles(s string) ([]*Obstacle, error) {
	var obstacles []*Obstacle
	for i, item := range strings.Split(s, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fields := strings.Split(item, ",")
		if len(fields) != 3 {
			return nil, errors.Errorf("obstacle %q: expect x,y,r", item)
		}
		var vals [3]float64
		for n, field := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "obstacle %q", item)
			}
			vals[n] = v
		}
		if vals[2] <= 0 {
			return nil, errors.Errorf("obstacle %q: radius must be positive", item)
		}
		obstacles = append(obstacles, &Obstacle{
			ID:     "obstacle-" + strconv.Itoa(i),
			Center: r2.Point{X: vals[0], Y: vals[1]},
			R:      vals[2],
		})
	}
	return obstacles, nil
}
