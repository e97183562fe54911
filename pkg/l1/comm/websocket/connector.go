package websocket

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
	"golang.org/x/net/websocket"

	"github.com/robotalks/movebase.go/pkg/l1"
	"github.com/robotalks/movebase.go/pkg/l1/comm"
)

// Connector connects to a Registrar directly, e.g. ws://host:port/l1.
type Connector struct {
	URL    string
	Origin string
}

// NewConnector creates a Connector.
func NewConnector(serverURL string) (*Connector, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}
	if u.Path == "" {
		u.Path = DefaultPath
	}
	origin := &url.URL{Scheme: "http", Host: u.Host}
	if u.Scheme == "wss" {
		origin.Scheme = "https"
	}
	return &Connector{URL: u.String(), Origin: origin.String()}, nil
}

// Discover implements Connector. Only the controller at URL is known.
func (c *Connector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	return []l1.ControllerInfo{{Ref: l1.ControllerRef{Type: "ws", ID: c.URL}}}, nil
}

// Connect implements Connector, ref is ignored.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	conf, err := websocket.NewConfig(c.URL, c.Origin)
	if err != nil {
		return nil, err
	}
	ws, err := websocket.DialConfig(conf)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", c.URL)
	}
	conn := &comm.ControllerConn{}
	conn.Init(New(ws))
	return conn, nil
}
