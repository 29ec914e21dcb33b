package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anointarray/sealforge/pkg/pipeline"
	"github.com/anointarray/sealforge/pkg/seal/geometry"
	"github.com/anointarray/sealforge/pkg/seal/layout"
)

// renderOpts holds the command-line flags shared by render and preview.
type renderOpts struct {
	output   string   // output file path (or base path for multiple formats)
	size     int      // output side length in pixels
	fidelity string   // baseline or high
	formats  []string // png, svg, pdf
	debug    []int    // preview rings to overlay
	settings string   // geometry settings file
	assets   string   // asset base directory override
	pick     string   // directory to choose a layout from interactively
	noCache  bool     // bypass the artifact cache
	refresh  bool     // re-render and overwrite cached artifacts
}

// renderCommand creates the render command for exporting seals.
//
// Default settings:
//   - size: render.default_size from the config (1200)
//   - fidelity: render.fidelity from the config (baseline)
//   - format: png
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Export a seal layout as PNG, SVG, or PDF",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			path, err := layoutArg(args, opts.pick)
			if err != nil || path == "" {
				return err
			}
			return c.runRender(cmd.Context(), path, geometry.ModeExport, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().IntVar(&opts.size, "size", 0, "output size in pixels (default from config)")
	cmd.Flags().StringVar(&opts.fidelity, "fidelity", "", "export fidelity: baseline, high (default from config)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): png (default), svg, pdf (comma-separated)")
	c.addSharedFlags(cmd, &opts)

	return cmd
}

// previewCommand creates the preview command: a flat render on the
// background colour with optional debug overlays per ring.
func (c *CLI) previewCommand() *cobra.Command {
	var debugStr string
	opts := renderOpts{size: pipeline.DefaultPreviewSize}

	cmd := &cobra.Command{
		Use:   "preview [layout.json]",
		Short: "Render a preview PNG with optional ring debug overlays",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, err := geometry.ParseDebugRings(debugStr)
			if err != nil {
				return err
			}
			opts.debug = debug
			opts.fidelity = pipeline.FidelityBaseline
			opts.formats = []string{pipeline.FormatPNG}

			path, err := layoutArg(args, opts.pick)
			if err != nil || path == "" {
				return err
			}
			return c.runRender(cmd.Context(), path, geometry.ModePreview, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <layout>.preview.png)")
	cmd.Flags().IntVar(&opts.size, "size", opts.size, "output size in pixels")
	cmd.Flags().StringVar(&debugStr, "debug", "", "rings to overlay with placement guides: ring1,ring2,ring3")
	c.addSharedFlags(cmd, &opts)

	return cmd
}

func (c *CLI) addSharedFlags(cmd *cobra.Command, opts *renderOpts) {
	cmd.Flags().StringVar(&opts.settings, "settings", "", "geometry settings JSON (default from config)")
	cmd.Flags().StringVar(&opts.assets, "assets", "", "asset base directory containing uploads/, public/ and legacy/")
	cmd.Flags().StringVar(&opts.pick, "pick", "", "choose a layout interactively from this directory")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")
}

// layoutArg returns the layout path from the arguments or, with --pick, from
// the interactive picker. An empty path with a nil error means the user quit
// the picker.
func layoutArg(args []string, pickDir string) (string, error) {
	switch {
	case len(args) == 1 && pickDir != "":
		return "", errors.New("pass either a layout file or --pick, not both")
	case len(args) == 1:
		return args[0], nil
	case pickDir != "":
		return pickLayout(pickDir)
	default:
		return "", errors.New("a layout file is required (or use --pick <dir>)")
	}
}

func (c *CLI) runRender(ctx context.Context, path string, mode geometry.Mode, opts *renderOpts) error {
	ctx = withLogger(ctx, c.Logger)
	logger := loggerFromContext(ctx)
	cfg := c.config()

	l, err := layout.ReadLayoutFile(path)
	if err != nil {
		return err
	}
	s, err := c.settings(opts.settings)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache, opts.assets)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Size:     opts.size,
		Fidelity: opts.fidelity,
		Mode:     mode,
		Formats:  opts.formats,
		Debug:    opts.debug,
		Refresh:  opts.refresh,
		Logger:   logger,
	}
	if popts.Size == 0 {
		popts.Size = cfg.Render.DefaultSize
	}
	if popts.Fidelity == "" {
		popts.Fidelity = cfg.Render.Fidelity
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", filepath.Base(path)))
	spinner.Start()
	result, err := runner.Export(ctx, l, s, popts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.StopWithError("Cancelled")
		} else {
			spinner.Stop()
		}
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Rendered %s at %d×%d", filepath.Base(path), popts.Size, popts.Size))
	prog.done("Rendered seal", "size", popts.Size, "fidelity", popts.Fidelity)

	paths := outputPaths(path, opts.output, mode, popts.Formats)
	for _, format := range popts.Formats {
		if err := os.WriteFile(paths[format], result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
	}

	printStats(result, popts.Fidelity)
	for _, d := range result.Degraded {
		printWarning("%s", d.String())
	}
	for _, d := range result.Dropped {
		printDetail("ring %d token %d at %s was replaced by token %d", d.Ring, d.Index, d.Position, d.Winner)
	}
	for _, format := range popts.Formats {
		printFile(paths[format])
	}
	if mode == geometry.ModePreview {
		printNextStep("Export", fmt.Sprintf("%s render %s --fidelity high", appName, path))
	}
	return nil
}

// outputPaths maps each format to its output file. A single format takes
// output verbatim; multiple formats use output (or the layout path) as a
// base with the format as extension.
func outputPaths(layoutPath, output string, mode geometry.Mode, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = strings.TrimSuffix(layoutPath, filepath.Ext(layoutPath))
		if mode == geometry.ModePreview {
			base += ".preview"
		}
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}
