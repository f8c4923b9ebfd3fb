package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/imgmanager/internal/cli"
	"github.com/mrlokans/imgmanager/internal/config"
	"github.com/mrlokans/imgmanager/internal/logging"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	logging.Setup(false)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.NewConfig()
	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "crawl":
		cmd = cli.NewCrawlCommand(cfg)
	case "add":
		cmd = cli.NewAddCommand(cfg)
	case "templates":
		cmd = cli.NewTemplatesCommand(cfg)
	case "forget":
		cmd = cli.NewForgetCommand(cfg)
	case "serve":
		cmd = cli.NewServeCommand(cfg, Version)
	case "version":
		fmt.Printf("img-manager %s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  crawl      Crawl a site described by a template and register its media\n")
	fmt.Fprintf(os.Stderr, "  add        Register a local file or directory of media\n")
	fmt.Fprintf(os.Stderr, "  templates  List available crawl templates\n")
	fmt.Fprintf(os.Stderr, "  forget     Forget visited pages or saved credentials\n")
	fmt.Fprintf(os.Stderr, "  serve      Start the HTTP API, task queue and crawl scheduler\n")
	fmt.Fprintf(os.Stderr, "  version    Print the version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
