package physics

import (
	"context"

	fx "github.com/robotalks/movebase.go/pkg/framework"
	"github.com/robotalks/movebase.go/pkg/l1/msgs"
)

// Context provides the simulation context.
type Context interface {
	fx.TimeSource
	Context() context.Context
}

// Base simulates a mobile base driven by body frame velocities.
type Base interface {
	Move(Context, *msgs.Twist)
}
