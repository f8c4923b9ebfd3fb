package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/imgmanager/internal/config"
	"github.com/mrlokans/imgmanager/internal/credentials"
	"github.com/mrlokans/imgmanager/internal/template"
)

// ForgetCommand drops visited markers so listings are crawled again, or
// removes the saved credentials of a template.
type ForgetCommand struct {
	Prefix       string
	Credentials  string
	DatabasePath string

	cfg *config.Config
	out io.Writer
}

func NewForgetCommand(cfg *config.Config) *ForgetCommand {
	return &ForgetCommand{cfg: cfg, out: os.Stdout}
}

func (cmd *ForgetCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("forget", flag.ExitOnError)

	fs.StringVar(&cmd.Prefix, "prefix", "", "Forget visited pages whose URL starts with this prefix")
	fs.StringVar(&cmd.Credentials, "credentials", "", "Forget the saved username and password of this template")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the database file (default: last used, then DATABASE_PATH)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s forget [-prefix <url>] [-credentials <template>] [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Forget crawl state.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s forget -prefix https://example.com/list\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s forget -credentials members\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Prefix == "" && cmd.Credentials == "" {
		return fmt.Errorf("one of -prefix or -credentials is required")
	}
	return nil
}

func (cmd *ForgetCommand) Run() error {
	if cmd.Credentials != "" {
		name := template.Name(cmd.Credentials)
		if err := credentials.NewStore(cmd.cfg.Global.DataDir, name).Forget(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.out, "Forgot saved credentials of %s\n", name)
	}

	if cmd.Prefix == "" {
		return nil
	}

	st, err := openStore(cmd.cfg, resolveDatabasePath(cmd.cfg, cmd.DatabasePath), false)
	if err != nil {
		return err
	}
	defer st.Close()

	removed, err := st.visited.ForgetPrefix(cmd.Prefix)
	if err != nil {
		return fmt.Errorf("failed to forget visited pages: %w", err)
	}
	st.audit.LogForget(cmd.Prefix, removed)

	fmt.Fprintf(cmd.out, "Forgot %d visited pages\n", removed)
	return nil
}
