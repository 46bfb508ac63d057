// cmd_corrupt.go - Corrupt Command
// Hauptfunktionen: CorruptHandler, lokal oder ueber --remote am Server
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chishi/forge/api"
	"github.com/chishi/forge/corrupt"
	"github.com/chishi/forge/envconfig"
	"github.com/chishi/forge/format"
	"github.com/chishi/forge/progress"
)

// Balken-Aufloesung fuer Fortschritt als Bruch
const corruptSteps = 1000

// corruptJob korrumpiert eine Datei und meldet den Fortschritt in [0, 1]
type corruptJob func(ctx context.Context, in, out string, percent float64, report func(float64)) (string, error)

// CorruptHandler - Kippt zufaellige Bits in den Payload-Boxen von Containern
func CorruptHandler(cmd *cobra.Command, args []string) error {
	percent, err := cmd.Flags().GetFloat64("percent")
	if err != nil {
		return err
	}
	if !(percent > 0 && percent <= 1) {
		return fmt.Errorf("%w: %v", corrupt.ErrInvalidPercent, percent)
	}

	c := corrupt.New(corrupt.Options{
		MinPercent: envconfig.CorruptMinPercent(),
		MaxPercent: envconfig.CorruptMaxPercent(),
		MaxSize:    int64(envconfig.MaxFileSize()),
	})
	if clamped := c.Clamp(percent); clamped != percent {
		fmt.Fprintf(cmd.ErrOrStderr(), "percent %v clamped to %v\n", percent, clamped)
		percent = clamped
	}

	out, _ := cmd.Flags().GetString("output")
	paths, err := outputPaths(args, out, "_corrupted", filepath.Ext)
	if err != nil {
		return err
	}

	job := localCorrupt(c)
	if remote, _ := cmd.Flags().GetBool("remote"); remote {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return err
		}
		job = remoteCorrupt(client)
	}

	p := progress.NewProgress(os.Stderr)
	bars := newProgressBars(p, corruptSteps)

	results := make([]string, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(1, int(envconfig.NumParallel())))
	for i, in := range args {
		g.Go(func() error {
			name := filepath.Base(in)
			res, err := job(ctx, in, paths[i], percent, func(f float64) {
				bars.set(name, int64(f*corruptSteps))
			})
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			results[i] = res
			return nil
		})
	}

	err = g.Wait()
	p.Stop()
	for i, res := range results {
		if res != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", args[i], paths[i], res)
		}
	}
	return err
}

func summary(regions, planned, modified, size int) string {
	return fmt.Sprintf("%d region(s), %d/%d bytes modified, %s", regions, modified, planned, format.HumanBytes(int64(size)))
}

func localCorrupt(c *corrupt.Corruptor) corruptJob {
	return func(ctx context.Context, in, out string, percent float64, report func(float64)) (string, error) {
		f, err := os.Open(in)
		if err != nil {
			return "", err
		}
		defer f.Close()

		buf, stats, err := c.CorruptReader(ctx, f, percent, report)
		if err != nil {
			return "", err
		}

		if err := os.WriteFile(out, buf, 0o644); err != nil {
			return "", err
		}
		return summary(len(stats.Regions), stats.Planned, stats.Modified, len(buf)), nil
	}
}

func remoteCorrupt(client *api.Client) corruptJob {
	return func(ctx context.Context, in, out string, percent float64, report func(float64)) (string, error) {
		f, err := os.Open(in)
		if err != nil {
			return "", err
		}
		defer f.Close()

		var final api.ProgressResponse
		err = client.Corrupt(ctx, f, &api.CorruptRequest{Percent: percent}, func(resp api.ProgressResponse) error {
			switch resp.Status {
			case api.StatusProgress:
				report(resp.Progress)
			case api.StatusDone, api.StatusCancelled:
				final = resp
			}
			return nil
		})
		if err != nil {
			return "", err
		}
		if final.Status != api.StatusDone {
			return "", corrupt.ErrCancelled
		}

		if err := os.WriteFile(out, final.Data, 0o644); err != nil {
			return "", err
		}
		return summary(final.Regions, final.Planned, final.Modified, len(final.Data)), nil
	}
}

// newCorruptCmd - Erstellt den corrupt Command
func newCorruptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "corrupt FILE [FILE...]",
		Short:   "Flip random bits inside the media payload of MP4 files",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: checkServerHeartbeat,
		RunE:    CorruptHandler,
	}

	cmd.Flags().Float64P("percent", "p", 0.001, "Fraction of payload bytes to modify (0, 1]")
	cmd.Flags().StringP("output", "o", "", "Output file or directory")
	cmd.Flags().Bool("remote", false, "Run on the forge server at $FORGE_HOST")
	return cmd
}
