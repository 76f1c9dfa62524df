package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cfoust/vecsim/pkg/config"
	"github.com/cfoust/vecsim/pkg/version"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Version bool `help:"Print version information and exit." short:"v"`
	Debug   bool `help:"Whether to enable debug logging."`

	Serve struct {
		Configs []string `arg:"" optional:"" name:"configs" help:"Configuration files for the simulation." type:"existingfile"`
	} `cmd:"" help:"Run the particle simulation and stream frames over a websocket."`

	Run struct {
		Configs []string `arg:"" optional:"" name:"configs" help:"Configuration files for the simulation." type:"existingfile"`
		Steps   int      `help:"Number of ticks to simulate." default:"60"`
		Format  string   `help:"Frame encoding (${enum})." enum:"cbor,yaml" default:"yaml"`
		Out     string   `help:"File to write frames to. Defaults to standard output." short:"o" type:"path"`
	} `cmd:"" help:"Simulate a fixed number of ticks and write every frame."`

	Config struct {
	} `cmd:"" help:"Write the default configuration to standard output."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	// Frames may go to stdout, so logs do not
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if len(os.Args) == 1 {
		err := serveCommand([]string{})
		if err != nil {
			writeError(err)
		}
		return
	}

	ctx := kong.Parse(&CLI,
		kong.Name("vecsim"),
		kong.Description("a particle system drawn with plain vectors"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	if CLI.Version {
		fmt.Printf(
			"vecsim %s (commit %s)\n",
			version.Version,
			version.GitCommit,
		)
		fmt.Printf(
			"built %s\n",
			version.BuildTime,
		)
		os.Exit(0)
	}

	var err error
	switch ctx.Command() {
	case "serve", "serve <configs>":
		err = serveCommand(CLI.Serve.Configs)
	case "run", "run <configs>":
		err = runCommand(
			CLI.Run.Configs,
			CLI.Run.Steps,
			CLI.Run.Format,
			CLI.Run.Out,
		)
	case "config":
		_, err = os.Stdout.Write(config.DEFAULT)
	}

	if err != nil {
		writeError(err)
	}
}
