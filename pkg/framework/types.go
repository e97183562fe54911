// Package framework provides the control loop shared by controllers and
// brains: periodic iterations of prioritized controllers consuming
// messages posted by background runners.
package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable is a background task stopped by canceling the context.
type Runnable interface {
	Run(context.Context) error
}

// Message is anything delivered to controllers through the loop.
type Message interface {
	// NewMessage creates an empty message of the same type.
	NewMessage() Message
}

// MessageHandler processes a message.
type MessageHandler interface {
	HandleMessage(context.Context, Message)
}

// HandleMessageFunc is the func form of MessageHandler.
type HandleMessageFunc func(context.Context, Message)

// HandleMessage implements MessageHandler.
func (f HandleMessageFunc) HandleMessage(ctx context.Context, msg Message) {
	f(ctx, msg)
}

// Controller runs once per iteration at the priority level it's added.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc defines the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(ctx ControlContext) error {
	return f(ctx)
}

// TimeSource provides the time for controlling logic.
type TimeSource interface {
	Time() time.Time
}

// ControlContext is the context of the current iteration.
type ControlContext interface {
	// Time is when the iteration started, the same for all controllers.
	TimeSource
	Context() context.Context
	PriorityLevel() int
	// Messages are the ones posted before the iteration started.
	Messages() MessageStore
	// PostRun installs one-shot hooks running after the controllers of the
	// current priority level. Hooks installed by hooks run in the next
	// iteration.
	PostRun(hooks ...Controller)

	LoopControl
}

// PriorityLevels is the total levels of priorities, 0 runs first.
const PriorityLevels int = 16

// Predefined priority levels.
const (
	PrLvTop    int = 0
	PrLvHigh   int = 4
	PrLvNormal int = 8
	PrLvLow    int = 12
	PrLvIdle   int = PriorityLevels - 1

	// PrLvSense is for sensors and state estimation, e.g. transforms.
	PrLvSense = PrLvHigh
	// PrLvControl is for controllers handling commands.
	PrLvControl = PrLvNormal
	// PrLvAcuate is for acuators.
	PrLvAcuate = PrLvLow
	// PrLvPostProc is for publishing state after acuation.
	PrLvPostProc = PrLvIdle - 1
)

// LoopControl is safe to use from any goroutine.
type LoopControl interface {
	// PreRunAt injects one-shot hooks running before the controllers at
	// priorityLevel.
	PreRunAt(priorityLevel int, controllers ...Controller)
	// PostRunAt injects one-shot hooks running after the controllers at
	// priorityLevel.
	PostRunAt(priorityLevel int, controllers ...Controller)
	// PostMessage enqueues the message for the next iteration.
	PostMessage(Message)
	// TriggerNext starts the next iteration without waiting for the interval.
	TriggerNext()
}

// MessageStore provides read/write access to the messages of an iteration.
type MessageStore interface {
	ProcessMessages(MessageProcessor)

	MessageAppender
}

// MessageAppender appends messages visible to the controllers which
// haven't run yet in the iteration.
type MessageAppender interface {
	AddMessages(msgs ...Message)
}

// MessageProcessor visits messages one by one.
type MessageProcessor interface {
	ProcessMessage(MessageProcessingContext)
}

// ProcessMessageFunc is the func form of MessageProcessor.
type ProcessMessageFunc func(MessageProcessingContext)

// ProcessMessage implements MessageProcessor.
func (f ProcessMessageFunc) ProcessMessage(mc MessageProcessingContext) {
	f(mc)
}

// MessageProcessingContext provides context for current message.
type MessageProcessingContext interface {
	CurrentMessage() Message
	// MessageTaken removes the message from the store.
	MessageTaken()
	// StopProcessing skips the rest of the messages.
	StopProcessing()

	MessageAppender
}

// TakeMessages removes all messages of type T from the store and passes
// them to fn in order.
func TakeMessages[T Message](store MessageStore, fn func(T)) {
	store.ProcessMessages(ProcessMessageFunc(func(mctx MessageProcessingContext) {
		if msg, ok := mctx.CurrentMessage().(T); ok {
			mctx.MessageTaken()
			fn(msg)
		}
	}))
}
