package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/ht12d/pkg/env"
	fx "github.com/robotalks/ht12d/pkg/framework"
	"github.com/robotalks/ht12d/pkg/receiver"
)

var logFrames bool

func init() {
	env.SetupFlags()
	receiver.SetupFlags()
	flag.BoolVar(&logFrames, "log-frames", logFrames, "Log decoded frames.")
}

func main() {
	flag.Parse()

	conf, err := receiver.Current()
	if err != nil {
		glog.Exit(err)
	}
	if err := conf.Validate(); err != nil {
		glog.Exit(err)
	}
	if conf.ID == "" {
		conf.ID = env.MachineID()
	}
	src, err := conf.OpenSource()
	if err != nil {
		glog.Exit(err)
	}
	e, err := env.NewConfig().NewEnv(conf.ID)
	if err != nil {
		glog.Exit(err)
	}
	if logFrames || len(e.Sinks) == 0 {
		e.Add(receiver.LogSink, nil)
	}
	rx, err := conf.NewReceiver(src, e.Sinks...)
	if err != nil {
		glog.Exit(err)
	}

	fx.NewRunner().
		HandleSignals().
		Go(rx).
		Go(e.Runners...).
		WaitOrFail()
}
