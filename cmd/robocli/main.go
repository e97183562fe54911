package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/robotalks/movebase.go/pkg/cli/sh"
	env "github.com/robotalks/movebase.go/pkg/l1/env/connector"

	_ "github.com/robotalks/movebase.go/pkg/cli/cmds/all"
)

var watch bool

func init() {
	env.SetupFlags()
	sh.SetupFlags()
	flag.BoolVar(&watch, "watch", watch, "Print events once connected.")
}

// robocli sends commands to a controller, e.g.
//
//	robocli -robot movebase/ID -e goal 1 0 90
//	robocli -robot sim-base/ID
func main() {
	flag.Parse()
	sh.New(env.NewConfig()).
		WithAutoConnect(true).
		WithWatch(watch).
		Run(flag.Args()...)
}
