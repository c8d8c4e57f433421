package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/wordmark/internal/config"
	"github.com/mrlokans/wordmark/internal/entities"
	"github.com/mrlokans/wordmark/internal/entrypoint"
	"github.com/mrlokans/wordmark/internal/providers"
)

// FontsListCommand loads every provider and prints catalog counts.
type FontsListCommand struct {
	Provider string
	Timeout  time.Duration
	Verbose  bool

	Out io.Writer
}

func NewFontsListCommand() *FontsListCommand {
	return &FontsListCommand{Out: os.Stdout}
}

func (cmd *FontsListCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("fonts-list", flag.ExitOnError)

	fs.StringVar(&cmd.Provider, "provider", "", "Only load this provider (custom, google, adobe, openfoundry, fontsquirrel, fontsource)")
	fs.DurationVar(&cmd.Timeout, "timeout", 2*time.Minute, "Give up on providers that have not answered after this long")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print every family, not just the counts")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s fonts-list [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Load the font catalogs with the server's configuration and print how many\n")
		fmt.Fprintf(os.Stderr, "families each provider offers.\n\n")
		fmt.Fprintf(os.Stderr, "Open Foundry is read through the server's proxy route, so it only reports\n")
		fmt.Fprintf(os.Stderr, "families while a server is running (see OPENFOUNDRY_PROVIDER_URL).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Provider != "" {
		if _, ok := entities.ParseProviderName(cmd.Provider); !ok {
			return fmt.Errorf("unknown provider %q", cmd.Provider)
		}
	}
	return nil
}

func (cmd *FontsListCommand) Run() error {
	cfg := config.NewConfig()
	entrypoint.ConfigureLogging(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	stack, err := entrypoint.NewFontStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer stack.Close()

	selected := stack.Providers
	if cmd.Provider != "" {
		name, _ := entities.ParseProviderName(cmd.Provider)
		p, ok := stack.Aggregator.Provider(name)
		if !ok {
			return fmt.Errorf("provider %q is not configured", name)
		}
		selected = []providers.Provider{p}
	}

	// Providers log their own failures and come back empty.
	var g errgroup.Group
	for _, p := range selected {
		p := p
		g.Go(func() error {
			p.Fetch(ctx)
			return nil
		})
	}
	_ = g.Wait()

	return cmd.print(stack, selected)
}

func (cmd *FontsListCommand) print(stack *entrypoint.FontStack, selected []providers.Provider) error {
	w := tabwriter.NewWriter(cmd.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tFAMILIES\tLOADED")

	total := 0
	for _, p := range selected {
		records := stack.Aggregator.GetByProvider(p.Name())
		loaded, _ := p.Status()
		fmt.Fprintf(w, "%s\t%d\t%t\n", p.Name(), len(records), loaded)
		total += len(records)
	}
	fmt.Fprintf(w, "total\t%d\t\n", total)
	if err := w.Flush(); err != nil {
		return err
	}

	if cmd.Verbose {
		for _, p := range selected {
			fmt.Fprintf(cmd.Out, "\n== %s ==\n", p.Name())
			for _, r := range stack.Aggregator.GetByProvider(p.Name()) {
				fmt.Fprintf(cmd.Out, "%s (%s)\n", r.Family, r.Category)
			}
		}
	}
	return nil
}
