// Package l1 defines the contract between L1 controllers, which drive
// devices such as a mobile base, and the L2 components commanding them.
//
// An L1 controller receives commands through its Registrar and replies
// each command exactly once. It publishes events, e.g. laser scans and
// transforms, to whoever is connected. An L2 component finds controllers
// with a Connector and sends commands over a ControllerConn.
package l1

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	fx "github.com/robotalks/movebase.go/pkg/framework"
)

// ErrNoResult is returned by Await when a future closes without result.
var ErrNoResult = errors.New("command finished without result")

// Registrar publishes an L1 controller.
type Registrar interface {
	// SendEvent publishes an event to connected L2 components.
	SendEvent(context.Context, fx.Message) error
}

// Command is a received command. Done sends the reply and must be called
// exactly once.
type Command interface {
	Msg() fx.Message
	Done(fx.Message) error
}

// CommandMsg carries a Command through the loop message store.
type CommandMsg struct {
	Command Command
}

// NewMessage implements Message.
func (m *CommandMsg) NewMessage() fx.Message { return &CommandMsg{} }

// ControllerRef identifies an L1 controller as TYPE/ID.
type ControllerRef struct {
	Type string
	ID   string
}

// ParseControllerRef parses TYPE/ID.
func ParseControllerRef(s string) (ControllerRef, error) {
	typ, id, ok := strings.Cut(s, "/")
	ref := ControllerRef{Type: typ, ID: id}
	if !ok || !ref.IsValid() || strings.Contains(id, "/") {
		return ControllerRef{}, errors.Errorf("invalid controller ref %q, expect TYPE/ID", s)
	}
	return ref, nil
}

// Name returns TYPE/ID, which is also the topic prefix of the controller.
func (r ControllerRef) Name() string {
	return r.Type + "/" + r.ID
}

// String implements fmt.Stringer.
func (r ControllerRef) String() string {
	return r.Name()
}

// IsValid indicates both Type and ID are present.
func (r ControllerRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// ControllerMeta is published with the controller for discovery.
type ControllerMeta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// ControllerInfo describes a discovered controller.
type ControllerInfo struct {
	Ref  ControllerRef
	Meta ControllerMeta
}

// Connector is used by L2 components to connect to an L1 controller.
type Connector interface {
	// Discover enumerates registered controllers.
	Discover(context.Context) ([]ControllerInfo, error)
	// Connect connects to the specified controller.
	Connect(context.Context, ControllerRef) (ControllerConn, error)
}

// ControllerConn is the connection to a controller.
type ControllerConn interface {
	// DoCommand sends a command. It never blocks on the reply.
	DoCommand(fx.Message) CommandFuture
}

// Result is the reply of a command, Err is set when the command failed
// or got no reply.
type Result struct {
	Msg fx.Message
	Err error
}

// CommandFuture delivers exactly one Result.
type CommandFuture interface {
	ResultChan() <-chan Result
}

// Await waits for the reply of a command and returns the reply message.
func Await(ctx context.Context, f CommandFuture) (fx.Message, error) {
	select {
	case res, ok := <-f.ResultChan():
		if !ok {
			return nil, ErrNoResult
		}
		return res.Msg, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
