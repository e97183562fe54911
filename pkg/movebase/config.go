package movebase

import (
	"flag"
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Config holds the parameters of move-base-straight. It is read-only while
// goals are executing.
type Config struct {
	// MaxSpeed is the maximum translation speed (m/s).
	MaxSpeed float64
	// MinSpeed is the translation speed floor (m/s).
	MinSpeed float64
	// AngularSpeed is the proportional gain of heading correction, 0.6 means
	// turning at 60% of the speed required to face the goal in 1 second.
	AngularSpeed float64
	// RotateSpeed is the magnitude of in-place rotation (rad/s).
	RotateSpeed float64
	// GoalThreshold is the distance (m) below which the goal position is reached.
	GoalThreshold float64
	// GoalThresholdAcceptable is the distance (m) within which a blocked goal
	// still succeeds.
	GoalThresholdAcceptable float64
	// YawGoalTolerance is the orientation tolerance (rad).
	YawGoalTolerance float64
	// RangeMinimum is the safety radius (m) around the footprint.
	RangeMinimum float64
	// SlowdownRange is the distance (m) to goal or obstacle where slowing down starts.
	SlowdownRange float64
	// RequiredAperture is the scanned aperture (rad) around the goal direction
	// for a movement to be considered safe. Only diagnostic.
	RequiredAperture float64
	Holonomic        bool
	FootprintFrame   string
	// GoalTopic optionally relays PoseStamped messages published on the topic as goals.
	GoalTopic string

	// Rate is the control frequency (Hz).
	Rate             float64
	TransformTimeout time.Duration
	TransformBackoff time.Duration
	// GoalTimeout aborts a goal running longer than this, 0 means unbounded.
	GoalTimeout time.Duration
}

var defaultConfig = Config{
	MaxSpeed:                0.2,
	MinSpeed:                0.05,
	AngularSpeed:            0.6,
	RotateSpeed:             0.2,
	GoalThreshold:           0.02,
	GoalThresholdAcceptable: 0.2,
	YawGoalTolerance:        0.2,
	RangeMinimum:            0.5,
	SlowdownRange:           0.5,
	RequiredAperture:        math.Pi * 0.75,
	FootprintFrame:          "base_footprint",
	Rate:                    10,
	TransformTimeout:        time.Second,
	TransformBackoff:        100 * time.Millisecond,
}

func init() {
	if val := os.Getenv("MOVEBASE_GOAL_TOPIC"); val != "" {
		defaultConfig.GoalTopic = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.Float64Var(&defaultConfig.MaxSpeed, "max-speed", defaultConfig.MaxSpeed, "Maximum speed (m/s)")
	flag.Float64Var(&defaultConfig.MinSpeed, "min-speed", defaultConfig.MinSpeed, "Minimum speed (m/s)")
	flag.Float64Var(&defaultConfig.AngularSpeed, "angular-speed", defaultConfig.AngularSpeed, "Heading correction gain")
	flag.Float64Var(&defaultConfig.RotateSpeed, "rotate-speed", defaultConfig.RotateSpeed, "In-place rotation speed (rad/s)")
	flag.Float64Var(&defaultConfig.GoalThreshold, "goal-threshold", defaultConfig.GoalThreshold, "Goal distance tolerance (m)")
	flag.Float64Var(&defaultConfig.GoalThresholdAcceptable, "goal-threshold-acceptable", defaultConfig.GoalThresholdAcceptable, "Goal distance accepted when blocked (m)")
	flag.Float64Var(&defaultConfig.YawGoalTolerance, "yaw-goal-tolerance", defaultConfig.YawGoalTolerance, "Goal orientation tolerance (rad)")
	flag.Float64Var(&defaultConfig.RangeMinimum, "range-minimum", defaultConfig.RangeMinimum, "Safety radius around footprint (m)")
	flag.Float64Var(&defaultConfig.SlowdownRange, "slowdown-range", defaultConfig.SlowdownRange, "Slow down range (m)")
	flag.Float64Var(&defaultConfig.RequiredAperture, "required-aperture", defaultConfig.RequiredAperture, "Scanned aperture around goal direction (rad)")
	flag.BoolVar(&defaultConfig.Holonomic, "holonomic", defaultConfig.Holonomic, "Base is holonomic")
	flag.StringVar(&defaultConfig.FootprintFrame, "footprint-frame", defaultConfig.FootprintFrame, "Footprint frame id")
	flag.StringVar(&defaultConfig.GoalTopic, "goal-topic", defaultConfig.GoalTopic, "Topic of PoseStamped goals to relay")
	flag.Float64Var(&defaultConfig.Rate, "rate", defaultConfig.Rate, "Control frequency (Hz)")
	flag.DurationVar(&defaultConfig.TransformTimeout, "transform-timeout", defaultConfig.TransformTimeout, "Wait for transform")
	flag.DurationVar(&defaultConfig.TransformBackoff, "transform-backoff", defaultConfig.TransformBackoff, "Backoff after transform failure")
	flag.DurationVar(&defaultConfig.GoalTimeout, "goal-timeout", defaultConfig.GoalTimeout, "Abort goals running longer than this, 0 for unbounded")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Validate checks the parameters.
func (c *Config) Validate() error {
	nonNegative := map[string]float64{
		"max-speed":                 c.MaxSpeed,
		"min-speed":                 c.MinSpeed,
		"angular-speed":             c.AngularSpeed,
		"rotate-speed":              c.RotateSpeed,
		"goal-threshold":            c.GoalThreshold,
		"goal-threshold-acceptable": c.GoalThresholdAcceptable,
		"yaw-goal-tolerance":        c.YawGoalTolerance,
		"range-minimum":             c.RangeMinimum,
		"required-aperture":         c.RequiredAperture,
	}
	for name, val := range nonNegative {
		if val < 0 || math.IsNaN(val) {
			return errors.Errorf("%s must be non-negative: %v", name, val)
		}
	}
	if !(c.SlowdownRange > 0) {
		return errors.Errorf("slowdown-range must be positive: %v", c.SlowdownRange)
	}
	if c.MinSpeed > c.MaxSpeed {
		return errors.Errorf("min-speed %v exceeds max-speed %v", c.MinSpeed, c.MaxSpeed)
	}
	if !(c.Rate > 0) {
		return errors.Errorf("rate must be positive: %v", c.Rate)
	}
	if c.FootprintFrame == "" {
		return errors.New("footprint-frame must be specified")
	}
	if c.TransformTimeout < 0 || c.TransformBackoff < 0 || c.GoalTimeout < 0 {
		return errors.New("durations must be non-negative")
	}
	return nil
}

// Interval is the control period.
func (c *Config) Interval() time.Duration {
	return time.Duration(float64(time.Second) / c.Rate)
}

// BlockageParams extracts the parameters of blockage evaluation.
func (c *Config) BlockageParams() BlockageParams {
	return BlockageParams{
		RangeMinimum:  c.RangeMinimum,
		SlowdownRange: c.SlowdownRange,
		GoalThreshold: c.GoalThreshold,
	}
}
