package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	fx "github.com/robotalks/movebase.go/pkg/framework"
	"github.com/robotalks/movebase.go/pkg/l1"
	env "github.com/robotalks/movebase.go/pkg/l1/env/controller"
	basebot "github.com/robotalks/movebase.go/pkg/sim/bots/base"
	"github.com/robotalks/movebase.go/pkg/sim/visualization/see"
)

const (
	imageSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="-150 -150 300 300">
		<g>
			<circle cx="0" cy="0" r="140" fill="none" stroke="black" stroke-width="10" />
			<path d="M 30 -60 L 130 0 L 30 60 Z" />
		</g>
	</svg>`
)

var visualize = flag.Bool("see", false, "Print visualization updates for robotalks/see to stdout")

func init() {
	env.SetControllerType("sim-base", l1.ControllerMeta{Description: "Simulation: mobile base with range scanner"})
	env.SetupFlags()
	see.SetupFlags()
	basebot.SetupFlags()
}

func main() {
	flag.Parse()

	env := env.NewConfig().MustNewEnv()
	bot, err := basebot.NewConfig().NewController(env)
	if err != nil {
		log.Fatalln(err)
	}
	loop := fx.NewLoop().Add(env, bot)
	if *visualize {
		vis := see.NewConfig().NewAdapter()
		mapper := vis.Mapper
		vis.Mapper = see.MapObjectFunc(func(obj see.VisibleObject) []*see.Shape {
			if obj.Name() == bot.Name() {
				return []*see.Shape{
					see.ShapeFrom("image", obj, vis.Config.Scale).With("src", "data:image/svg+xml;utf8,"+imageSVG),
				}
			}
			return mapper.MapObject(obj)
		})
		vis.Subscribe(bot)
		loop.Add(vis)
	}
	loop.RunOrFail()
}
