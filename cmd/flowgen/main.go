package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli"

	"github.com/takehaya/flowgen/pkg/flowgen"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	app := newApp(version)
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("%+v", err)
	}
}

func newApp(version string) *cli.App {
	app := cli.NewApp()
	app.Name = "flowgen"
	app.Version = fmt.Sprintf("%s, %s, %s, %s", version, commit, date, builtBy)

	app.Usage = "traffic generator flow configurator"

	app.EnableBashCompletion = true
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "descriptor, d",
			Usage: "hardware descriptor file (JSON or YAML), default is $FLOWGEN_DESCRIPTOR or /etc/flowgen/descriptor.json",
		},
		cli.StringFlag{
			Name:  "snapshot, s",
			Usage: "snapshot file loaded at start and saved by editing commands",
		},
		cli.IntFlag{
			Name:  "verbose",
			Usage: "log verbosity, 1 or more enables debug logs",
		},
		cli.BoolFlag{
			Name:  "quiet",
			Usage: "only log warnings and errors",
		},
		cli.BoolFlag{
			Name:  "json-log",
			Usage: "log as JSON",
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "also write JSON logs to this rotated file",
		},
	}
	app.Commands = commands()
	return app
}

// loadConfig merges the environment with the global flags, flags winning.
func loadConfig(c *cli.Context) (flowgen.Config, error) {
	cfg, err := flowgen.LoadConfig()
	if err != nil {
		return cfg, err
	}
	if c.GlobalIsSet("descriptor") {
		cfg.Descriptor = c.GlobalString("descriptor")
	}
	if c.GlobalIsSet("snapshot") {
		cfg.Snapshot = c.GlobalString("snapshot")
	}
	if c.GlobalIsSet("verbose") {
		cfg.LoggerConfig.Verbose = c.GlobalInt("verbose")
	}
	if c.GlobalBool("quiet") {
		cfg.LoggerConfig.Quiet = true
	}
	if c.GlobalBool("json-log") {
		cfg.LoggerConfig.JSON = true
	}
	if c.GlobalIsSet("log-file") {
		cfg.LoggerConfig.File = c.GlobalString("log-file")
	}
	return cfg, nil
}

// withFlowgen runs fn on a freshly loaded Flowgen. Editing commands save the
// snapshot back when fn succeeds.
func withFlowgen(save bool, fn func(f *flowgen.Flowgen, c *cli.Context) error) func(*cli.Context) error {
	return func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		f, err := flowgen.NewFlowgen(cfg)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := fn(f, c); err != nil {
			return err
		}
		if save {
			return f.Save()
		}
		return nil
	}
}
