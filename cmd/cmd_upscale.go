// cmd_upscale.go - Upscale Command
// Hauptfunktionen: UpscaleHandler, lokal oder ueber --remote am Server
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chishi/forge/api"
	"github.com/chishi/forge/envconfig"
	"github.com/chishi/forge/format"
	"github.com/chishi/forge/progress"
	"github.com/chishi/forge/upscale"
	"github.com/chishi/forge/vision"
)

// upscaleJob skaliert eine Datei und meldet den Fortschritt in Prozent
type upscaleJob func(ctx context.Context, in, out string, report func(float64)) (image string, err error)

// UpscaleHandler - Skaliert ein oder mehrere Bilder
func UpscaleHandler(cmd *cobra.Command, args []string) error {
	scale, err := cmd.Flags().GetInt("scale")
	if err != nil {
		return err
	}
	if !slices.Contains(upscale.DefaultScales, scale) {
		return fmt.Errorf("%w: %dx (supported: %v)", upscale.ErrUnsupportedScale, scale, upscale.DefaultScales)
	}

	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = envconfig.Model()
	}

	tile, _ := cmd.Flags().GetInt("tile")
	if tile <= 0 {
		tile = int(envconfig.TileSize())
	}

	out, _ := cmd.Flags().GetString("output")
	paths, err := outputPaths(args, out, fmt.Sprintf("_x%d", scale), func(in string) string {
		return vision.FormatFromName(in).OutputFormat().Extension()
	})
	if err != nil {
		return err
	}
	for _, p := range paths {
		if f := vision.FormatFromName(p); f.OutputFormat() != f {
			return fmt.Errorf("%w: cannot write %s", vision.ErrUnsupportedFormat, filepath.Base(p))
		}
	}

	var job upscaleJob
	if remote, _ := cmd.Flags().GetBool("remote"); remote {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return err
		}
		job = remoteUpscale(client, model, scale, tile)
	} else {
		m, err := vision.OpenModel(model)
		if err != nil {
			return err
		}
		defer m.Close()

		comp := upscale.New(m, upscale.Options{TileSize: tile})
		job = localUpscale(comp, scale)
	}

	p := progress.NewProgress(os.Stderr)
	bars := newProgressBars(p, 100)

	results := make([]string, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(1, int(envconfig.NumParallel())))
	for i, in := range args {
		g.Go(func() error {
			name := filepath.Base(in)
			res, err := job(ctx, in, paths[i], func(pct float64) {
				bars.set(name, int64(pct))
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

func localUpscale(comp *upscale.Compositor, scale int) upscaleJob {
	return func(ctx context.Context, in, out string, report func(float64)) (string, error) {
		src, err := vision.LoadImage(in)
		if err != nil {
			return "", err
		}

		img, err := comp.Upscale(ctx, src.Image, scale, report)
		if err != nil {
			return "", err
		}

		if err := vision.SaveImage(out, img); err != nil {
			return "", err
		}
		return fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy()), nil
	}
}

func remoteUpscale(client *api.Client, model string, scale, tile int) upscaleJob {
	return func(ctx context.Context, in, out string, report func(float64)) (string, error) {
		data, err := os.ReadFile(in)
		if err != nil {
			return "", err
		}

		req := api.UpscaleRequest{
			Image:    data,
			Scale:    scale,
			Model:    model,
			TileSize: tile,
			Format:   vision.FormatFromName(out).OutputFormat().String(),
		}

		var final api.ProgressResponse
		err = client.Upscale(ctx, &req, func(resp api.ProgressResponse) error {
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
			return "", upscale.ErrCancelled
		}

		if err := os.WriteFile(out, final.Image, 0o644); err != nil {
			return "", err
		}
		return fmt.Sprintf("%dx%d, %s", final.Width, final.Height, format.HumanBytes(int64(len(final.Image)))), nil
	}
}

// newUpscaleCmd - Erstellt den upscale Command
func newUpscaleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "upscale IMAGE [IMAGE...]",
		Short:   "Upscale images with a super-resolution model",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: checkServerHeartbeat,
		RunE:    UpscaleHandler,
	}

	cmd.Flags().IntP("scale", "s", 4, "Target scale factor (1, 2, 3, 4 or 16)")
	cmd.Flags().StringP("model", "m", "", "Model name or path to an .onnx file (default $FORGE_MODEL)")
	cmd.Flags().Int("tile", 0, "Tile edge in source pixels (default adaptive)")
	cmd.Flags().StringP("output", "o", "", "Output file or directory")
	cmd.Flags().Bool("remote", false, "Run on the forge server at $FORGE_HOST")
	return cmd
}
