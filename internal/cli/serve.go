package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/imgmanager/internal/config"
	"github.com/mrlokans/imgmanager/internal/entrypoint"
	"github.com/mrlokans/imgmanager/internal/logging"
)

// ServeCommand runs the HTTP API, task queue and crawl scheduler.
type ServeCommand struct {
	Port    int
	Verbose bool

	cfg     *config.Config
	version string
}

func NewServeCommand(cfg *config.Config, version string) *ServeCommand {
	return &ServeCommand{cfg: cfg, version: version}
}

func (cmd *ServeCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	fs.IntVar(&cmd.Port, "port", int(cmd.cfg.HTTP.Port), "Port to listen on")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s serve [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Start the HTTP API. Crawls enqueued over HTTP or scheduled with\n")
		fmt.Fprintf(os.Stderr, "SCHEDULE_ENABLED run in the background.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Port <= 0 || cmd.Port > 65535 {
		return fmt.Errorf("invalid port %d", cmd.Port)
	}
	return nil
}

func (cmd *ServeCommand) Run() error {
	logging.Setup(cmd.Verbose)
	if !cmd.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	cmd.cfg.HTTP.Port = int32(cmd.Port)
	return entrypoint.Run(cmd.cfg, cmd.version)
}
