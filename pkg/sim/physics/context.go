package physics

import (
	"context"
	"time"
)

// TimeContext wraps context.Context with a fixed time.
type TimeContext struct {
	now time.Time
	ctx context.Context
}

// At creates a Context at time t.
func At(ctx context.Context, t time.Time) Context {
	return &TimeContext{now: t, ctx: ctx}
}

// Now creates a Context at current time.
func Now(ctx context.Context) Context {
	return At(ctx, time.Now())
}

// Time implements TimeSource.
func (c TimeContext) Time() time.Time {
	return c.now
}

// Context implements Context.
func (c TimeContext) Context() context.Context {
	return c.ctx
}
