package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"

	fx "github.com/robotalks/movebase.go/pkg/framework"
	"github.com/robotalks/movebase.go/pkg/l1"
	"github.com/robotalks/movebase.go/pkg/l1/comm/mqtt"
	connenv "github.com/robotalks/movebase.go/pkg/l1/env/connector"
	ctlenv "github.com/robotalks/movebase.go/pkg/l1/env/controller"
	"github.com/robotalks/movebase.go/pkg/movebase"
	"github.com/robotalks/movebase.go/pkg/tf"
)

func init() {
	ctlenv.SetControllerType("movebase", l1.ControllerMeta{Description: "Move base straight to goals"})
	ctlenv.SetupFlags()
	connenv.SetupFlags()
	movebase.SetupFlags()
}

func main() {
	flag.Parse()

	conf := movebase.NewConfig()
	if err := conf.Validate(); err != nil {
		log.Fatalln(err)
	}
	env := ctlenv.NewConfig().MustNewEnv()
	base := connenv.NewConfig().MustConnect(context.Background())

	buffer := tf.NewBuffer()
	scans := movebase.NewScanHolder(buffer, conf)
	executor := movebase.NewExecutor(conf, scans, buffer, &movebase.ConnSink{Conn: base})
	server := movebase.NewServer(executor, env.Registrar)

	loop := fx.NewLoop().WithRate(conf.Rate)
	loop.StopOnError = true
	if adder, ok := base.(fx.LoopAdder); ok {
		loop.Add(adder)
	}
	loop.Add(env, buffer, scans, server)
	loop.AddRunnable(fx.NamedRun("caps", &movebase.CapsChecker{Config: conf, Conn: base}))
	if conf.GoalTopic != "" {
		q, err := mqtt.NewQueueFromURL(env.Config.MQTTBrokerURL)
		if err != nil {
			log.Fatalln(err)
		}
		loop.AddRunnable(fx.NamedRun("relay", movebase.NewRelay(q, conf.GoalTopic, server)))
	}
	loop.RunOrFail()
}
