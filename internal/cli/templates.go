package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/imgmanager/internal/config"
	"github.com/mrlokans/imgmanager/internal/crawl"
)

// TemplatesCommand lists the templates available to crawl.
type TemplatesCommand struct {
	Dir string

	cfg *config.Config
	out io.Writer
}

func NewTemplatesCommand(cfg *config.Config) *TemplatesCommand {
	return &TemplatesCommand{cfg: cfg, out: os.Stdout}
}

func (cmd *TemplatesCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("templates", flag.ExitOnError)
	fs.StringVar(&cmd.Dir, "dir", cmd.cfg.Crawl.TemplatesDir, "Templates directory")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s templates [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List the crawl templates in the templates directory.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *TemplatesCommand) Run() error {
	names, err := crawl.ListTemplates(cmd.Dir)
	if err != nil {
		return err
	}

	if len(names) == 0 {
		fmt.Fprintf(cmd.out, "No templates found in %s\n", cmd.Dir)
		return nil
	}

	for _, name := range names {
		fmt.Fprintln(cmd.out, name)
	}
	return nil
}
