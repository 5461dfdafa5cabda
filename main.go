package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "school-backend",
		Usage: "student, invoice and fee item records for a school",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "optional YAML config file",
				EnvVars: []string{"SCHOOL_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand,
			seedCommand,
			exportCommand,
		},
		DefaultCommand: "serve",
	}
}
