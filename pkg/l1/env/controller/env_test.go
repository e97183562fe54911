package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/movebase.go/pkg/l1"
)

func TestSetLabel(t *testing.T) {
	var meta l1.ControllerMeta
	require.NoError(t, setLabel(&meta, "holonomic=true"))
	require.NoError(t, setLabel(&meta, "site="))
	assert.Equal(t, map[string]string{"holonomic": "true", "site": ""}, meta.Labels)
	assert.Error(t, setLabel(&meta, "novalue"))
	assert.Error(t, setLabel(&meta, "=x"))
}

func TestNewEnv(t *testing.T) {
	conf := &Config{
		Info:          l1.ControllerInfo{Ref: l1.ControllerRef{Type: "movebase", ID: "t1"}},
		WebSocketAddr: "127.0.0.1:0",
	}
	e, err := conf.NewEnv()
	require.NoError(t, err)
	assert.Len(t, e.Registrar.Registrars, 1)
	assert.Equal(t, []string{"ws://127.0.0.1:0/l1"}, e.RegistryURLs)

	conf.WebSocketAddr = ""
	_, err = conf.NewEnv()
	assert.Error(t, err)

	conf.Info.Ref.ID = ""
	conf.WebSocketAddr = ":8080"
	_, err = conf.NewEnv()
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	conf := Config{MQTTBrokerURL: "mqtt://localhost"}
	loadEnv(&conf, func(key string) string {
		if key == "ROBO_WS_ADDR" {
			return ":9000"
		}
		return ""
	})
	assert.Equal(t, "mqtt://localhost", conf.MQTTBrokerURL)
	assert.Equal(t, ":9000", conf.WebSocketAddr)
}
