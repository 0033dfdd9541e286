// Command gxmreplay replays recorded render command traces.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/gogpu/gxm"
)

var app = &cli.App{
	Name:    "gxmreplay",
	Usage:   "replay render command traces against a backend",
	Version: gxm.Version,
	Flags: []cli.Flag{
		configFlag,
		logLevelFlag,
	},
	Before: setupLogging,
	Commands: []*cli.Command{
		replayCommand,
		backendsCommand,
		dumpConfigCommand,
	},
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
