package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/sadopc/timeplease/internal/cmd"
)

// Version is injected at build time via -ldflags="-X main.Version=v1.0.0".
var Version = "dev"

const tagline = "Flow and Pomodoro time tracking for the terminal"

func main() {
	var cli cmd.CLI
	ctx := kong.Parse(&cli,
		kong.Name("timeplease"),
		kong.Description(tagline),
		kong.Vars{
			"version": "timeplease " + Version,
		},
		kong.UsageOnError(),
		kong.Bind(&cli),
	)
	defer cli.Close()

	if err := ctx.Run(); err != nil {
		cli.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
