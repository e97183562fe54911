package lidar

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/movebase.go/pkg/tf"
)

func TestIntersect(t *testing.T) {
	o := &Obstacle{Center: r2.Point{X: 2}, R: 0.5}
	testCases := []struct {
		name   string
		origin r2.Point
		dir    r2.Point
		hit    bool
		dist   float64
	}{
		{name: "head on", dir: r2.Point{X: 1}, hit: true, dist: 1.5},
		{name: "away", dir: r2.Point{X: -1}},
		{name: "miss", dir: r2.Point{Y: 1}},
		{name: "tangent", origin: r2.Point{Y: 0.5}, dir: r2.Point{X: 1}, hit: true, dist: 2},
		{name: "inside", origin: r2.Point{X: 2}, dir: r2.Point{X: 1}, hit: true, dist: 0.5},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dist, hit := o.Intersect(tc.origin, tc.dir)
			require.Equal(t, tc.hit, hit)
			if hit {
				assert.InDelta(t, tc.dist, dist, 1e-9)
			}
		})
	}
}

func TestScan(t *testing.T) {
	s := &Scanner{
		AngleMin:       -math.Pi / 2,
		AngleMax:       math.Pi / 2,
		AngleIncrement: math.Pi / 2,
		RangeMin:       0.05,
		RangeMax:       10,
		Obstacles: []*Obstacle{
			{Center: r2.Point{X: 3}, R: 1},
			{Center: r2.Point{X: 1.5}, R: 0.5},
			{Center: r2.Point{Y: 0.06}, R: 0.05},
		},
	}
	require.Equal(t, 3, s.Readings())

	ranges := s.Scan(tf.Transform{})
	require.Len(t, ranges, 3)
	assert.Equal(t, 10.0, ranges[0])
	assert.InDelta(t, 1, ranges[1], 1e-9)
	// closer than RangeMin is clamped.
	assert.Equal(t, 0.05, ranges[2])

	// facing +Y from below the obstacles.
	ranges = s.Scan(tf.Transform{X: 1.5, Y: -2, Yaw: math.Pi / 2})
	assert.Equal(t, 10.0, ranges[0])
	assert.InDelta(t, 1.5, ranges[1], 1e-9)
}

func TestParseObstacles(t *testing.T) {
	obstacles, err := ParseObstacles("1,2,0.5; -1,0,1 ;")
	require.NoError(t, err)
	require.Len(t, obstacles, 2)
	assert.Equal(t, r2.Point{X: 1, Y: 2}, obstacles[0].Center)
	assert.Equal(t, 0.5, obstacles[0].Radius())
	assert.Equal(t, tf.Transform{X: -1}, obstacles[1].Pose2D())
	assert.True(t, obstacles[1].Contains(r2.Point{X: -0.5}))

	obstacles, err = ParseObstacles("")
	require.NoError(t, err)
	assert.Empty(t, obstacles)

	for _, bad := range []string{"1,2", "a,b,c", "1,1,0"} {
		_, err = ParseObstacles(bad)
		assert.Error(t, err, bad)
	}
}
