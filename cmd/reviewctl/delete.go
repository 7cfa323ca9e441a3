package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"festival_reviews/internal/reviewlist"
)

func newDeleteCmd(g *globals) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "delete <id> [id...]",
		Short: "Delete reviews and show the refreshed list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), g.timeout)
			defer cancel()

			p, err := g.pipeline()
			if err != nil {
				return err
			}
			failed, reloadErr := deleteAll(ctx, g, p, args, workers)

			out := cmd.OutOrStdout()
			if ok := len(args) - len(failed); ok > 0 {
				if reloadErr == nil {
					renderView(out, p.View(), nil)
				}
				fmt.Fprintf(out, "deleted %d review(s)\n", ok)
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d of %d deletes failed: %v", len(failed), len(args), failed)
			}
			if reloadErr != nil {
				return fmt.Errorf("list not refreshed: %w", reloadErr)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent deletes")
	return cmd
}

// deleteAll runs pipeline deletes with bounded concurrency. Every
// successful delete reloads; a reload overtaken by a later one is not an
// error. It returns the ids that could not be deleted and the last reload
// failure seen for a delete that did go through.
func deleteAll(ctx context.Context, g *globals, p *reviewlist.Pipeline, ids []string, workers int) ([]string, error) {
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		failed    []string
		reloadErr error
	)
	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			failed = append(failed, id)
			mu.Unlock()
			continue
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			defer sem.Release(1)
			err := p.DeleteReview(ctx, id)
			if err == nil || errors.Is(err, reviewlist.ErrSuperseded) {
				return
			}
			if errors.Is(err, reviewlist.ErrReloadFailed) {
				g.log.Warn().Err(err).Str("id", id).Msg("deleted, reload failed")
				mu.Lock()
				reloadErr = err
				mu.Unlock()
				return
			}
			g.log.Error().Err(err).Str("id", id).Msg("delete failed")
			mu.Lock()
			failed = append(failed, id)
			mu.Unlock()
		}(id)
	}
	wg.Wait()
	return failed, reloadErr
}
