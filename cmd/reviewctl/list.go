package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"festival_reviews/internal/domain"
	"festival_reviews/internal/reviewlist"
	"festival_reviews/internal/shared"
)

type listOpts struct {
	subjectType string
	minRating   int
	page        int
	pageSize    int
	stats       bool
}

func newListCmd(g *globals, cfg shared.Config) *cobra.Command {
	o := &listOpts{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show one page of reviews, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), g.timeout)
			defer cancel()
			return runList(ctx, cmd, g, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.subjectType, "type", "", "subject type: DJ, PERFORMANCE or EVENT")
	f.IntVar(&o.minRating, "min-rating", 0, "minimum rating 1..5 (0 = any)")
	f.IntVar(&o.page, "page", 1, "page number, starting at 1")
	f.IntVar(&o.pageSize, "page-size", cfg.PageSize, fmt.Sprintf("page size, one of %v", reviewlist.PageSizes))
	f.BoolVar(&o.stats, "stats", false, "print statistics over all reviews")
	return cmd
}

func (o *listOpts) filter() (reviewlist.Filter, error) {
	var f reviewlist.Filter
	if o.subjectType != "" {
		t, ok := domain.ParseSubjectType(o.subjectType)
		if !ok {
			return f, fmt.Errorf("%w: unknown subject type %q", reviewlist.ErrInvalidFilter, o.subjectType)
		}
		f.SubjectType = t
	}
	if o.minRating != 0 {
		f.MinRating = reviewlist.MinRatingOf(o.minRating)
	}
	return f, f.Validate()
}

func runList(ctx context.Context, cmd *cobra.Command, g *globals, o *listOpts) error {
	f, err := o.filter()
	if err != nil {
		return err
	}
	p, err := g.pipeline()
	if err != nil {
		return err
	}
	// check page flags before any network call
	if err := p.SetPage(o.page-1, o.pageSize); err != nil {
		return err
	}
	cat, err := g.catalog()
	if err != nil {
		return err
	}

	var subjects *reviewlist.SubjectIndex
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error { return p.Load(egCtx) })
	if cat != nil {
		eg.Go(func() error {
			idx, err := reviewlist.LoadSubjects(egCtx, cat)
			if err != nil {
				// names are cosmetic; fall back to raw ids
				g.log.Warn().Err(err).Msg("subject catalog unavailable")
				return nil
			}
			subjects = idx
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	// Load resets to the first page, so filter and page are applied after it.
	if err := p.ApplyFilter(f); err != nil {
		return err
	}
	if err := p.SetPage(o.page-1, o.pageSize); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	renderView(out, p.View(), subjects)
	if o.stats {
		renderStats(out, p.Statistics())
	}
	return nil
}
