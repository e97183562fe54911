// Package controller sets up the registrars publishing an L1 controller.
package controller

import (
	"flag"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	fx "github.com/robotalks/movebase.go/pkg/framework"
	"github.com/robotalks/movebase.go/pkg/l1"
	"github.com/robotalks/movebase.go/pkg/l1/comm"
	"github.com/robotalks/movebase.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/movebase.go/pkg/l1/comm/websocket"
	"github.com/robotalks/movebase.go/pkg/l1/env"
)

// Config identifies the controller and where it's published.
type Config struct {
	Info l1.ControllerInfo

	// MQTTBrokerURL registers the controller on a broker, e.g.
	// mqtt://host:port/topic-prefix. Empty disables MQTT.
	MQTTBrokerURL string
	// WebSocketAddr serves direct websocket connections, e.g. :8080.
	WebSocketAddr string
}

var defaultConfig = Config{
	MQTTBrokerURL: "mqtt://localhost:1883/robo/",
}

func init() {
	loadEnv(&defaultConfig, os.Getenv)
	defaultConfig.Info.Ref.ID = env.MachineID()
}

func loadEnv(c *Config, getenv func(string) string) {
	if val := getenv("ROBO_MQTT_URL"); val != "" {
		c.MQTTBrokerURL = val
	}
	if val := getenv("ROBO_WS_ADDR"); val != "" {
		c.WebSocketAddr = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.Type, "type", defaultConfig.Info.Ref.Type, "Controller type")
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Controller ID")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.StringVar(&defaultConfig.WebSocketAddr, "ws", defaultConfig.WebSocketAddr, "Serve websocket connections on address")
	flag.Func("label", "Controller label as KEY=VALUE, repeatable", func(s string) error {
		return setLabel(&defaultConfig.Info.Meta, s)
	})
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig copies the default config.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// SetControllerType should be called in init with basic info about the controller.
func SetControllerType(typ string, meta l1.ControllerMeta) {
	defaultConfig.Info.Ref.Type = typ
	defaultConfig.Info.Meta = meta
}

// setLabel parses KEY=VALUE into Labels.
func setLabel(meta *l1.ControllerMeta, s string) error {
	key, val, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return errors.Errorf("invalid label %q, expect KEY=VALUE", s)
	}
	if meta.Labels == nil {
		meta.Labels = make(map[string]string)
	}
	meta.Labels[key] = val
	return nil
}

// Env holds the registrars of an L1 controller.
type Env struct {
	Config *Config
	// RegistryURLs lists the URLs L2 components use to connect.
	RegistryURLs []string
	Registrar    *comm.RegistrarMux
}

// NewEnv creates registrars from config.
func (c *Config) NewEnv() (*Env, error) {
	if !c.Info.Ref.IsValid() {
		return nil, errors.New("controller type and id must be specified")
	}
	e := &Env{Config: c, Registrar: &comm.RegistrarMux{}}
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info)
		if err != nil {
			return nil, errors.Wrap(err, "create MQTT registrar")
		}
		e.Registrar.Add(reg)
		e.RegistryURLs = append(e.RegistryURLs, c.MQTTBrokerURL)
	}
	if c.WebSocketAddr != "" {
		e.Registrar.Add(websocket.NewRegistrar(c.WebSocketAddr))
		e.RegistryURLs = append(e.RegistryURLs, "ws://"+c.WebSocketAddr+websocket.DefaultPath)
	}
	if len(e.Registrar.Registrars) == 0 {
		return nil, errors.New("either -mqtt or -ws is required")
	}
	return e, nil
}

// MustNewEnv creates Env or exits.
func (c *Config) MustNewEnv() *Env {
	e, err := c.NewEnv()
	if err != nil {
		glog.Exit(err)
	}
	glog.Infof("%s registered at %s", c.Info.Ref, strings.Join(e.RegistryURLs, ", "))
	return e
}

// AddToLoop adds the registrars, and replies commands no controller takes
// as unsupported.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Registrar)
	loop.Add(&comm.UnsupportedCommands{})
}
