package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/briandowns/spinner"

	"github.com/mrlokans/imgmanager/internal/config"
	"github.com/mrlokans/imgmanager/internal/crawl"
	"github.com/mrlokans/imgmanager/internal/crawler"
	"github.com/mrlokans/imgmanager/internal/credentials"
	"github.com/mrlokans/imgmanager/internal/logging"
)

// CrawlCommand runs one template crawl in the foreground.
type CrawlCommand struct {
	Template     string
	Location     string
	DatabasePath string
	Username     string
	Password     string
	Policy       crawler.FailurePolicy
	Verbose      bool
	Quiet        bool

	cfg *config.Config
	out io.Writer
	in  io.Reader
}

func NewCrawlCommand(cfg *config.Config) *CrawlCommand {
	return &CrawlCommand{cfg: cfg, out: os.Stdout, in: os.Stdin}
}

func (cmd *CrawlCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("crawl", flag.ExitOnError)

	var policy string
	fs.StringVar(&cmd.Template, "template", "", "Template name in the templates directory, or a path to a template file")
	fs.StringVar(&cmd.Location, "location", "", "Download directory (default: last used, then DOWNLOAD_LOCATION)")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the database file (default: last used, then DATABASE_PATH)")
	fs.StringVar(&cmd.Username, "username", "", "Username for authenticated sites, saved for the next run")
	fs.StringVar(&cmd.Password, "password", "", "Password for authenticated sites, saved for the next run")
	fs.StringVar(&policy, "on-extract-failure", "", "What to do when an archive cannot be extracted: abort, continue or prompt (default: CRAWL_EXTRACT_FAILURE_POLICY)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable debug logging")
	fs.BoolVar(&cmd.Quiet, "quiet", false, "Do not show the progress spinner")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s crawl -template <name> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Crawl a site described by a template, download its media and register it.\n\n")
		fmt.Fprintf(os.Stderr, "Templates are looked up in the templates directory; the .xml suffix may be omitted.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s crawl -template gallery -location ~/Pictures/gallery\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s crawl -template members -username me -password secret\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Template == "" && fs.NArg() > 0 {
		cmd.Template = fs.Arg(0)
	}
	if cmd.Template == "" {
		return fmt.Errorf("required flag -template not provided")
	}

	if policy != "" {
		p, err := crawler.ParseFailurePolicy(policy)
		if err != nil {
			return err
		}
		cmd.Policy = p
	}

	return nil
}

func (cmd *CrawlCommand) Run() error {
	logging.Setup(cmd.Verbose)

	lastUsed := config.NewLastUsed(cmd.cfg.Global.DataDir)
	location := cmd.Location
	if location == "" {
		location = lastUsed.Location(cmd.cfg.Crawl.DownloadLocation)
	}

	st, err := openStore(cmd.cfg, resolveDatabasePath(cmd.cfg, cmd.DatabasePath), true)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := lastUsed.SetLocation(location); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := newProgress(cmd.out, !cmd.Quiet && !cmd.Verbose)
	defer progress.Stop()

	svc := crawl.NewService(cmd.cfg.Crawl, cmd.cfg.Global.DataDir, st.visited, st.library, st.audit)
	result, err := svc.Run(ctx, crawl.Options{
		Template: cmd.Template,
		Location: location,
		Username: cmd.Username,
		Password: cmd.Password,
		Policy:   cmd.Policy,
		Prompter: &pausingPrompter{progress: progress, next: crawler.NewConsolePrompter(cmd.in, cmd.out)},
		Progress: progress.Update,
		Trigger:  crawl.TriggerCLI,
	})
	progress.Stop()

	if err != nil {
		var authErr *credentials.AuthenticationError
		if errors.As(err, &authErr) {
			return fmt.Errorf("%w (pass -username and -password once, they are saved for later runs)", err)
		}
		if errors.Is(err, context.Canceled) {
			fmt.Fprintf(cmd.out, "\nInterrupted: %s\n", result.Stats.String())
			return nil
		}
		return err
	}

	fmt.Fprintf(cmd.out, "Crawl of %s finished in %s\n", result.Template, result.Duration.Round(time.Second))
	fmt.Fprintf(cmd.out, "  %s\n", result.Stats.String())
	fmt.Fprintf(cmd.out, "  Files saved to %s\n", result.Location)
	return nil
}

// progress renders crawl stats on a spinner. A disabled progress does nothing.
type progress struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
	active  bool
}

func newProgress(w io.Writer, enabled bool) *progress {
	if !enabled {
		return &progress{}
	}
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " starting crawl"
	s.Start()
	return &progress{spinner: s, active: true}
}

func (p *progress) Update(stats crawler.Stats) {
	if p.spinner == nil {
		return
	}
	p.spinner.Lock()
	p.spinner.Suffix = " " + stats.String()
	p.spinner.Unlock()
}

func (p *progress) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner != nil && p.active {
		p.spinner.Stop()
		p.active = false
	}
}

func (p *progress) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner != nil && !p.active {
		p.spinner.Start()
		p.active = true
	}
}

func (p *progress) Stop() {
	p.Pause()
}

// pausingPrompter hides the spinner while a question is on screen.
type pausingPrompter struct {
	progress *progress
	next     crawler.Prompter
}

func (p *pausingPrompter) Confirm(question string) (bool, error) {
	p.progress.Pause()
	defer p.progress.Resume()
	return p.next.Confirm(question)
}
