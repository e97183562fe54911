package base

import (
	"flag"
	"math"
	"time"

	env "github.com/robotalks/movebase.go/pkg/l1/env/controller"
	"github.com/robotalks/movebase.go/pkg/sim/lidar"
	"github.com/robotalks/movebase.go/pkg/tf"
)

// Config defines the configuration for the bot.
type Config struct {
	Radius          float64
	LinearSpeedMax  float64
	AngularSpeedMax float64
	Holonomic       bool
	CommandTimeout  time.Duration

	OdomFrame      string
	FootprintFrame string
	LaserFrame     string
	LaserOffset    float64

	ScanAngleMin       float64
	ScanAngleMax       float64
	ScanAngleIncrement float64
	ScanRangeMin       float64
	ScanRangeMax       float64
	Obstacles          string
}

// Defaults
const (
	DefaultRadius          float64 = 0.2
	DefaultLinearSpeedMax  float64 = 0.5
	DefaultAngularSpeedMax float64 = 1.5
	DefaultLaserOffset     float64 = 0.15
)

var defaultConfig = Config{
	Radius:             DefaultRadius,
	LinearSpeedMax:     DefaultLinearSpeedMax,
	AngularSpeedMax:    DefaultAngularSpeedMax,
	CommandTimeout:     time.Second,
	OdomFrame:          "odom",
	FootprintFrame:     "base_footprint",
	LaserFrame:         "base_laser",
	LaserOffset:        DefaultLaserOffset,
	ScanAngleMin:       -3 * math.Pi / 4,
	ScanAngleMax:       3 * math.Pi / 4,
	ScanAngleIncrement: math.Pi / 180,
	ScanRangeMin:       0.05,
	ScanRangeMax:       8,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Float64Var(&defaultConfig.Radius, "bot-radius", defaultConfig.Radius, "Radius (m) of the bot, it's round.")
	flag.Float64Var(&defaultConfig.LinearSpeedMax, "linear-speed-max", defaultConfig.LinearSpeedMax, "Maximum linear speed (m/s), 0 means unlimited.")
	flag.Float64Var(&defaultConfig.AngularSpeedMax, "angular-speed-max", defaultConfig.AngularSpeedMax, "Maximum angular speed (rad/s), 0 means unlimited.")
	flag.BoolVar(&defaultConfig.Holonomic, "holonomic", defaultConfig.Holonomic, "Whether the bot can move sideways.")
	flag.DurationVar(&defaultConfig.CommandTimeout, "cmd-timeout", defaultConfig.CommandTimeout, "Stop if no velocity command received in time, 0 disables.")
	flag.StringVar(&defaultConfig.OdomFrame, "odom-frame", defaultConfig.OdomFrame, "Odometry frame.")
	flag.StringVar(&defaultConfig.FootprintFrame, "footprint-frame", defaultConfig.FootprintFrame, "Footprint frame of the bot.")
	flag.StringVar(&defaultConfig.LaserFrame, "laser-frame", defaultConfig.LaserFrame, "Frame of the range scanner.")
	flag.Float64Var(&defaultConfig.LaserOffset, "laser-offset", defaultConfig.LaserOffset, "Forward offset (m) of the range scanner.")
	flag.Float64Var(&defaultConfig.ScanAngleMin, "scan-angle-min", defaultConfig.ScanAngleMin, "Start angle (rad) of the scan.")
	flag.Float64Var(&defaultConfig.ScanAngleMax, "scan-angle-max", defaultConfig.ScanAngleMax, "End angle (rad) of the scan.")
	flag.Float64Var(&defaultConfig.ScanAngleIncrement, "scan-angle-increment", defaultConfig.ScanAngleIncrement, "Angular distance (rad) between readings.")
	flag.Float64Var(&defaultConfig.ScanRangeMin, "scan-range-min", defaultConfig.ScanRangeMin, "Minimum range (m) of the scanner.")
	flag.Float64Var(&defaultConfig.ScanRangeMax, "scan-range-max", defaultConfig.ScanRangeMax, "Maximum range (m) of the scanner.")
	flag.StringVar(&defaultConfig.Obstacles, "obstacles", defaultConfig.Obstacles, "Round obstacles in odom frame: x,y,r;x,y,r")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates the default configuration.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewController creates the Controller.
func (c *Config) NewController(e *env.Env) (*Controller, error) {
	obstacles, err := lidar.ParseObstacles(c.Obstacles)
	if err != nil {
		return nil, err
	}
	ctl := NewController(e)
	ctl.R = c.Radius
	ctl.Nav.Caps.LinearSpeedMax = c.LinearSpeedMax
	ctl.Nav.Caps.AngularSpeedMax = c.AngularSpeedMax
	ctl.Nav.Caps.Holonomic = c.Holonomic
	ctl.Nav.Caps.FootprintFrame = tf.NormalizeFrame(c.FootprintFrame)
	ctl.Nav.CommandTimeout = c.CommandTimeout
	ctl.OdomFrame = tf.NormalizeFrame(c.OdomFrame)
	ctl.FootprintFrame = tf.NormalizeFrame(c.FootprintFrame)
	ctl.LaserFrame = tf.NormalizeFrame(c.LaserFrame)
	ctl.LaserMount = tf.Transform{X: c.LaserOffset}
	ctl.Scanner = &lidar.Scanner{
		AngleMin:       c.ScanAngleMin,
		AngleMax:       c.ScanAngleMax,
		AngleIncrement: c.ScanAngleIncrement,
		RangeMin:       c.ScanRangeMin,
		RangeMax:       c.ScanRangeMax,
		Obstacles:      obstacles,
	}
	return ctl, nil
}
