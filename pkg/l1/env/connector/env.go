// Package connector configures L2 components to find and connect to an
// L1 controller.
package connector

import (
	"context"
	"flag"
	"net/url"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/robotalks/movebase.go/pkg/l1"
	"github.com/robotalks/movebase.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/movebase.go/pkg/l1/comm/websocket"
)

// DefaultConnectTimeout bounds Connect.
const DefaultConnectTimeout = 10 * time.Second

// Config selects the controller and how to reach it.
type Config struct {
	Ref l1.ControllerRef

	// RegistryURL is mqtt://host:port/topic-prefix to find controllers on
	// a broker, or ws://host:port/l1 to connect to a controller directly.
	RegistryURL string
}

var defaultConfig = Config{
	RegistryURL: "mqtt://localhost:1883/robo/",
}

func init() {
	loadEnv(&defaultConfig, os.Getenv)
}

func loadEnv(c *Config, getenv func(string) string) {
	if val := getenv("ROBO_TYPE"); val != "" {
		c.Ref.Type = val
	}
	if val := getenv("ROBO_ID"); val != "" {
		c.Ref.ID = val
	}
	if val := getenv("ROBO_REGISTRY_URL"); val != "" {
		c.RegistryURL = val
	}
}

// SetupFlags sets up command line flags. -robot TYPE/ID sets both
// -robot-type and -robot-id.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.Type, "robot-type", defaultConfig.Ref.Type, "Robot type to connect.")
	flag.StringVar(&defaultConfig.Ref.ID, "robot-id", defaultConfig.Ref.ID, "Robot ID to connect.")
	flag.Func("robot", "Robot to connect as TYPE/ID.", func(s string) error {
		ref, err := l1.ParseControllerRef(s)
		if err == nil {
			defaultConfig.Ref = ref
		}
		return err
	})
	flag.StringVar(&defaultConfig.RegistryURL, "robot-reg", defaultConfig.RegistryURL, "Robot Registry URL.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig copies the default config.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// IsDirect indicates RegistryURL addresses a controller directly.
func (c *Config) IsDirect() bool {
	u, err := url.Parse(c.RegistryURL)
	return err == nil && (u.Scheme == "ws" || u.Scheme == "wss")
}

// NewConnector creates a Connector for RegistryURL.
func (c *Config) NewConnector() (l1.Connector, error) {
	u, err := url.Parse(c.RegistryURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid registry URL")
	}
	switch u.Scheme {
	case "mqtt", "tcp", "ssl", "tls":
		return mqtt.NewConnector(c.RegistryURL)
	case "ws", "wss":
		return websocket.NewConnector(c.RegistryURL)
	default:
		return nil, errors.Errorf("unknown registry URL scheme %q", u.Scheme)
	}
}

// Connect connects to the controller Ref, which can be omitted for
// direct connections.
func (c *Config) Connect(ctx context.Context) (l1.ControllerConn, error) {
	if !c.IsDirect() && !c.Ref.IsValid() {
		return nil, errors.New("robot type and id must be specified")
	}
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, DefaultConnectTimeout)
	defer cancel()
	conn, err := connector.Connect(ctx, c.Ref)
	if err != nil {
		return nil, errors.Wrapf(err, "connect %s", c.Ref)
	}
	glog.Infof("connected to %s via %s", c.Ref, c.RegistryURL)
	return conn, nil
}

// MustConnect connects or exits.
func (c *Config) MustConnect(ctx context.Context) l1.ControllerConn {
	conn, err := c.Connect(ctx)
	if err != nil {
		glog.Exit(err)
	}
	return conn
}
