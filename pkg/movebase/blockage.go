package movebase

import (
	"fmt"
	"math"
)

// BlockageParams are the parameters used by Evaluate.
type BlockageParams struct {
	RangeMinimum  float64
	SlowdownRange float64
	GoalThreshold float64
}

// BlockReason describes the reading which blocked the path.
type BlockReason struct {
	// Index of the reading in the scan.
	Index int
	// Distance and Bearing of the obstacle relative to the footprint.
	Distance float64
	Bearing  float64
	// AngleDiff is the absolute difference between Bearing and the goal direction.
	AngleDiff float64
}

func (r *BlockReason) String() string {
	return fmt.Sprintf("distance %.3f at angle %.3f (%.3f angle difference to goal direction)",
		r.Distance, r.Bearing, r.AngleDiff)
}

// Evaluation is the result of Evaluate.
type Evaluation struct {
	Blocked bool
	// SpeedMultiplier scales the translation speed. It is at most 1 and may
	// be negative when past the goal or inside the safety radius.
	SpeedMultiplier float64
	// Reason is set only when Blocked.
	Reason *BlockReason
}

// Evaluate checks whether the straight path towards the goal is blocked and
// computes the speed multiplier for approaching goal and obstacles.
// Readings are visited in scan order and the first blocking reading stops
// the evaluation. Readings without a body bearing are skipped.
func Evaluate(scan *RangeScan, offset, targetBearing, targetDistance float64, p BlockageParams) Evaluation {
	ev := Evaluation{
		SpeedMultiplier: math.Min(1, (targetDistance-p.GoalThreshold)/p.SlowdownRange),
	}
	for i, raw := range scan.Ranges {
		dist, bearing := SensorToBody(raw, scan.Bearing(i), offset)
		if math.IsNaN(bearing) {
			continue
		}
		angleDiff := math.Abs(bearing - targetBearing)
		closer := angleDiff < math.Pi/2
		tooClose := dist < p.RangeMinimum && raw > scan.RangeMin
		if closer {
			ev.SpeedMultiplier = math.Min(ev.SpeedMultiplier, (dist-p.RangeMinimum)/p.SlowdownRange)
			if tooClose {
				ev.Blocked = true
				ev.Reason = &BlockReason{Index: i, Distance: dist, Bearing: bearing, AngleDiff: angleDiff}
				break
			}
		}
	}
	return ev
}
