package movebase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSynthesize(t *testing.T) {
	conf := NewConfig()
	holonomic := NewConfig()
	holonomic.Holonomic = true

	tests := []struct {
		name       string
		conf       *Config
		target     BodyTarget
		multiplier float64
		action     Action
		cmd        VelocityCommand
	}{
		{"drive full speed", conf, BodyTarget{X: 1}, 1, ActionDrive, VelocityCommand{LinearX: 0.2}},
		{"drive throttled", conf, BodyTarget{X: 1}, 0.5, ActionDrive, VelocityCommand{LinearX: 0.1}},
		{"drive floor", conf, BodyTarget{X: 1}, 0.1, ActionDrive, VelocityCommand{LinearX: 0.05}},
		{"drive negative multiplier", conf, BodyTarget{X: 1}, -3, ActionDrive, VelocityCommand{LinearX: 0.05}},
		{"drive with heading correction", conf, BodyTarget{X: 1, Y: 1}, 1, ActionDrive, VelocityCommand{LinearX: 0.2, AngularZ: 0.6 * 0.7853981633974483}},
		{"strafe", holonomic, BodyTarget{X: 3, Y: 4}, 1, ActionStrafe, VelocityCommand{LinearX: 0.12, LinearY: 0.16}},
		{"strafe floor", holonomic, BodyTarget{X: 0, Y: -1}, 0, ActionStrafe, VelocityCommand{LinearY: -0.05}},
		{"rotate left", conf, BodyTarget{Yaw: 0.5}, 1, ActionRotate, VelocityCommand{AngularZ: 0.2}},
		{"rotate right", conf, BodyTarget{X: 0.01, Yaw: -0.5}, 1, ActionRotate, VelocityCommand{AngularZ: -0.2}},
		{"holonomic rotate", holonomic, BodyTarget{Yaw: 0.3}, 1, ActionRotate, VelocityCommand{AngularZ: 0.2}},
		{"arrived", conf, BodyTarget{X: 0.01, Yaw: 0.1}, 1, ActionArrived, VelocityCommand{}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cmd, action := Synthesize(test.conf, test.target, test.multiplier)
			assert.Equal(t, test.action, action)
			assert.InDelta(t, test.cmd.LinearX, cmd.LinearX, 1e-9)
			assert.InDelta(t, test.cmd.LinearY, cmd.LinearY, 1e-9)
			assert.InDelta(t, test.cmd.AngularZ, cmd.AngularZ, 1e-9)
		})
	}
}

func TestSynthesizeSpeedFloor(t *testing.T) {
	conf := NewConfig()
	for m := -2.0; m <= 0; m += 0.25 {
		cmd, _ := Synthesize(conf, BodyTarget{X: 3}, m)
		assert.Equal(t, conf.MinSpeed, cmd.LinearX)
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, NewConfig().Validate())

	tests := map[string]func(*Config){
		"negative gain":      func(c *Config) { c.AngularSpeed = -1 },
		"zero slowdown":      func(c *Config) { c.SlowdownRange = 0 },
		"min above max":      func(c *Config) { c.MinSpeed = 1 },
		"negative threshold": func(c *Config) { c.GoalThreshold = -0.1 },
		"zero rate":          func(c *Config) { c.Rate = 0 },
		"no footprint":       func(c *Config) { c.FootprintFrame = "" },
		"negative timeout":   func(c *Config) { c.GoalTimeout = -1 },
	}
	for name, modify := range tests {
		t.Run(name, func(t *testing.T) {
			c := NewConfig()
			modify(c)
			assert.Error(t, c.Validate())
		})
	}
}
