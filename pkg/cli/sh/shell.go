package sh

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"reflect"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/pkg/errors"

	fx "github.com/robotalks/movebase.go/pkg/framework"
	"github.com/robotalks/movebase.go/pkg/l1"
	env "github.com/robotalks/movebase.go/pkg/l1/env/connector"
	"github.com/robotalks/movebase.go/pkg/l1/msgs"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive    bool
	OutputJSON     bool
	AutoConnect    bool
	CommandTimeout time.Duration

	Shell  *ishell.Shell
	Config *env.Config
	Loop   *ConnLoop

	watching atomic.Bool
}

// ConnLoop is a running loop with a controller connection.
type ConnLoop struct {
	Ctx    context.Context
	Cancel func()
	Ref    l1.ControllerRef
	Loop   *fx.Loop
	Conn   l1.ControllerConn
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly       bool
	outputJSON     bool
	commandTimeout  = time.Second
	discoverTimeout = 3 * time.Second

	// commands
	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&WatchCmd,
	}

	errNotConnected = errors.New("not connected")
)

// SetupFlags sets command line flags of the shell.
func SetupFlags() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.DurationVar(&commandTimeout, "timeout", commandTimeout, "Timeout waiting for command results.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive:    !evalOnly,
		OutputJSON:     outputJSON,
		CommandTimeout: commandTimeout,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Loop == nil {
			c.Err(errNotConnected)
			return
		}
		fn(c)
	}
}

// FormatInfo prints ControllerInfo into friendly string for display.
func FormatInfo(info l1.ControllerInfo) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%s", info.Ref.Name())
	if info.Meta.Description != "" {
		fmt.Fprintf(&w, ": %s", info.Meta.Description)
	}
	return w.String()
}

// FormatMessage formats a message for display, either as JSON or as
// the type name followed by the compact text.
func FormatMessage(msg fx.Message, asJSON bool) (string, error) {
	sm, ok := msg.(msgs.SerializableMessage)
	if !ok {
		return "", errors.Errorf("message %T is not serializable", msg)
	}
	if asJSON {
		out, err := json.Marshal(sm.Serializable())
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	if _, ok := msg.(*msgs.CommandOK); ok {
		return "OK", nil
	}
	return fmt.Sprintf("%s %s",
		reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
		sm.Serializable().String()), nil
}

// DoCommand runs a command and waits for result.
func DoCommand(c *ishell.Context, msg fx.Message) (fx.Message, error) {
	s := ShellFrom(c)
	if s.Loop == nil {
		c.Err(errNotConnected)
		return nil, errNotConnected
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.CommandTimeout)
	defer cancel()
	reply, err := l1.Await(ctx, s.Loop.Conn.DoCommand(msg))
	if err == nil {
		var out string
		if out, err = FormatMessage(reply, s.OutputJSON); err == nil {
			c.Println(out)
			return reply, nil
		}
	}
	c.Err(err)
	return nil, err
}

// PrintEvents is a controller printing received events when watching.
func (s *Shell) PrintEvents(cc fx.ControlContext) error {
	if !s.watching.Load() {
		return nil
	}
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		msg := mctx.CurrentMessage()
		if _, ok := msg.(*l1.CommandMsg); ok {
			return
		}
		if out, err := FormatMessage(msg, s.OutputJSON); err == nil {
			s.Shell.Println(out)
		}
	}))
	return nil
}

// WithWatch prints events as soon as connected.
func (s *Shell) WithWatch(on bool) *Shell {
	s.watching.Store(on)
	return s
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// DiscoverControllers lists controllers accepted by filter.
func (s *Shell) DiscoverControllers(filter func(l1.ControllerInfo) bool) ([]l1.ControllerInfo, error) {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), discoverTimeout)
	defer cancel()
	infoList, err := connector.Discover(ctx)
	if err != nil {
		return nil, err
	}
	if filter != nil {
		infoList = slices.DeleteFunc(infoList, func(info l1.ControllerInfo) bool { return !filter(info) })
	}
	slices.SortFunc(infoList, func(a, b l1.ControllerInfo) int {
		return strings.Compare(a.Ref.Name(), b.Ref.Name())
	})
	return infoList, nil
}

// SelectController discovers controllers and asks for a choice when more
// than one is found. It returns nil if nothing is found.
func (s *Shell) SelectController(filter func(l1.ControllerInfo) bool) (*l1.ControllerInfo, error) {
	infoList, err := s.DiscoverControllers(filter)
	switch {
	case err != nil:
		return nil, err
	case len(infoList) == 0:
		return nil, nil
	case len(infoList) == 1:
		return &infoList[0], nil
	case !s.Interactive:
		return nil, errors.Errorf("%d controllers discovered in non-interactive mode", len(infoList))
	}
	choices := make([]string, len(infoList))
	for n, info := range infoList {
		choices[n] = FormatInfo(info)
	}
	index := s.Shell.MultiChoice(choices, "Which one to connect?")
	if index < 0 {
		return nil, nil
	}
	return &infoList[index], nil
}

// Connect replaces the current connection with a new one to ref.
func (s *Shell) Connect(ref l1.ControllerRef) error {
	conf := *s.Config
	conf.Ref = ref
	ctx, cancel := context.WithCancel(context.Background())
	conn, err := conf.Connect(ctx)
	if err != nil {
		cancel()
		return err
	}
	s.Disconnect()
	connLoop := &ConnLoop{Ctx: ctx, Cancel: cancel, Ref: ref, Loop: fx.NewLoop(), Conn: conn}
	if adder, ok := conn.(fx.LoopAdder); ok {
		connLoop.Loop.Add(adder)
	}
	connLoop.Loop.AddController(fx.PrLvSense, fx.ControlFunc(s.PrintEvents))
	go func() {
		if err := connLoop.Loop.Run(ctx); err != nil && ctx.Err() == nil {
			s.Shell.Printf("connection to %s lost: %v\n", ref, err)
		}
	}()
	s.Loop = connLoop
	s.Shell.SetPrompt(ref.Name() + " > ")
	return nil
}

// Disconnect stops the current connection if any.
func (s *Shell) Disconnect() {
	if s.Loop == nil {
		return
	}
	s.Loop.Cancel()
	if closer, ok := s.Loop.Conn.(io.Closer); ok {
		closer.Close()
	}
	s.Loop = nil
	s.Shell.SetPrompt(unconnectedPrompt)
}

// Run connects the configured controller, then runs args as a command or
// the interactive shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && (s.Config.Ref.IsValid() || s.Config.IsDirect()) {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Ref)
		}
		if err := s.Connect(s.Config.Ref); err != nil {
			log.Fatalln(err)
		}
	}
	switch {
	case len(args) > 0:
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
	case s.Interactive:
		s.Shell.Run()
	default:
		log.Fatalln("command expected")
	}
}
