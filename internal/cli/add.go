package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/imgmanager/internal/config"
)

// AddCommand registers local media files without crawling.
type AddCommand struct {
	Path         string
	DatabasePath string

	cfg *config.Config
	out io.Writer
}

func NewAddCommand(cfg *config.Config) *AddCommand {
	return &AddCommand{cfg: cfg, out: os.Stdout}
}

func (cmd *AddCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)

	fs.StringVar(&cmd.Path, "path", "", "File or directory to register (required)")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the database file (default: last used, then DATABASE_PATH)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s add -path <file|directory> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Register media files with the library. Directories are walked recursively\n")
		fmt.Fprintf(os.Stderr, "and only supported media (.jpg .jpeg .png .mp4 .mov) is registered.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Path == "" && fs.NArg() > 0 {
		cmd.Path = fs.Arg(0)
	}
	if cmd.Path == "" {
		return fmt.Errorf("required flag -path not provided")
	}
	return nil
}

func (cmd *AddCommand) Run() error {
	st, err := openStore(cmd.cfg, resolveDatabasePath(cmd.cfg, cmd.DatabasePath), false)
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := st.library.Add(cmd.Path)
	st.audit.LogRegister(cmd.Path, result.Registered, result.Total, err)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.out, "Registered %s files\n", result.String())
	return nil
}
