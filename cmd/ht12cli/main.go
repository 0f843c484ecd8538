package main

import (
	"github.com/robotalks/ht12d/pkg/cli/sh"
	"github.com/robotalks/ht12d/pkg/receiver"

	_ "github.com/robotalks/ht12d/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	receiver.SetupFlags()
}

func main() {
	sh.Main()
}
