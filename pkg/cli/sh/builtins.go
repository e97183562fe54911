package sh

import (
	"encoding/json"

	"github.com/abiosoft/ishell"
	"github.com/pkg/errors"

	"github.com/robotalks/movebase.go/pkg/l1"
)

var (
	// DiscoverCmd lists controllers.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "[TYPE]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			infoList, err := s.DiscoverControllers(typeFilter(c.Args))
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if infoList == nil {
					infoList = []l1.ControllerInfo{}
				}
				out, err := json.Marshal(infoList)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(infoList) == 0 {
				c.Println("No controllers found")
			}
			for _, info := range infoList {
				c.Println(FormatInfo(info))
			}
		},
	}

	// ConnectCmd connects a controller, discovering it when ID is omitted.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "TYPE/ID | TYPE ID | [TYPE]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ref, err := refFromArgs(c.Args)
			if err != nil {
				info, err := s.SelectController(typeFilter(c.Args))
				if err != nil {
					c.Err(err)
					return
				}
				if info == nil {
					c.Err(errors.New("no controller discovered"))
					return
				}
				ref = info.Ref
			}
			if err := s.Connect(ref); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current controller.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// WatchCmd toggles printing events from the connected controller.
	WatchCmd = ishell.Cmd{
		Name:    "watch",
		Aliases: []string{"w"},
		Help:    "[on|off]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			on := !s.watching.Load()
			if len(c.Args) > 0 {
				switch c.Args[0] {
				case "on":
					on = true
				case "off":
					on = false
				default:
					c.Err(errors.Errorf("invalid argument %q", c.Args[0]))
					return
				}
			}
			s.watching.Store(on)
			c.Printf("watch %v\n", on)
		},
	}
)

// refFromArgs accepts TYPE/ID or TYPE ID.
func refFromArgs(args []string) (l1.ControllerRef, error) {
	switch len(args) {
	case 1:
		return l1.ParseControllerRef(args[0])
	case 2:
		return l1.ParseControllerRef(args[0] + "/" + args[1])
	default:
		return l1.ControllerRef{}, errors.New("TYPE/ID expected")
	}
}

func typeFilter(args []string) func(l1.ControllerInfo) bool {
	if len(args) != 1 {
		return nil
	}
	return func(info l1.ControllerInfo) bool {
		return info.Ref.Type == args[0]
	}
}
