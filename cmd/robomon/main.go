package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/robotalks/movebase.go/pkg/cli/sh"
	"github.com/robotalks/movebase.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/movebase.go/pkg/l1/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/robo/"
	topic   = "#"
	asJSON  bool
	noScans bool
)

func init() {
	if val := os.Getenv("ROBO_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&topic, "topic", topic, "Topic filter relative to the prefix.")
	flag.BoolVar(&asJSON, "json", asJSON, "Print messages in JSON.")
	flag.BoolVar(&noScans, "no-scans", noScans, "Skip LaserScan events.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub(topic, mqtt.Handler(func(topic string, payload []byte) {
		if strings.HasSuffix(topic, "/meta") {
			log.Printf("%s: %s", topic, string(payload))
			return
		}
		msg, err := msgs.DecodeMessage(payload)
		if err != nil {
			log.Printf("%s: %v", topic, err)
			return
		}
		if _, ok := msg.(*msgs.LaserScan); ok && noScans {
			return
		}
		out, err := sh.FormatMessage(msg, asJSON)
		if err != nil {
			log.Printf("%s: %v", topic, err)
			return
		}
		log.Printf("%s: %s", topic, out)
	}))
	q.Connect()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	q.Close()
}
