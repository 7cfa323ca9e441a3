// Command reviewctl is a terminal front end for the festival review list.
//
//	reviewctl list --type dj --min-rating 4 --page 1 --page-size 5
//	reviewctl list --stats
//	reviewctl delete <id> [id...]
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"festival_reviews/internal/adapters/observability"
	"festival_reviews/internal/adapters/reviewapi"
	"festival_reviews/internal/reviewlist"
	"festival_reviews/internal/shared"
)

type globals struct {
	apiBase      string
	festivalBase string
	rps          int
	timeout      time.Duration
	verbose      bool
	log          zerolog.Logger
}

func newRootCmd(cfg shared.Config) *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "reviewctl",
		Short:         "Browse and moderate festival reviews",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := cfg.LogLevel
			if g.verbose {
				level = "debug"
			}
			// the table goes to stdout, so logs stay on stderr
			g.log = observability.NewLoggerTo(cmd.ErrOrStderr(), "dev", level)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.apiBase, "api", cfg.ReviewAPIBase, "review service base URL")
	pf.StringVar(&g.festivalBase, "festival", cfg.FestivalBase, "festival application base URL (subject names)")
	pf.IntVar(&g.rps, "rps", cfg.ClientRPS, "outbound requests per second")
	pf.DurationVar(&g.timeout, "timeout", 30*time.Second, "overall command timeout")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newListCmd(g, cfg), newDeleteCmd(g))
	return root
}

// pipeline builds a pipeline over the review service client.
func (g *globals) pipeline() (*reviewlist.Pipeline, error) {
	cl, err := reviewapi.New(g.apiBase, g.rps)
	if err != nil {
		return nil, err
	}
	return reviewlist.New(cl, g.log), nil
}

// catalog returns nil when no festival URL is configured.
func (g *globals) catalog() (*reviewapi.FestivalClient, error) {
	if g.festivalBase == "" {
		return nil, nil
	}
	return reviewapi.NewFestival(g.festivalBase, g.rps)
}

func main() {
	if err := newRootCmd(shared.Load()).Execute(); err != nil {
		os.Exit(1)
	}
}
