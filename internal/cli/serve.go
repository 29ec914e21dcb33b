package cli

import (
	"github.com/spf13/cobra"

	"github.com/anointarray/sealforge/pkg/server"
)

// serveCommand runs the HTTP render service until the context is cancelled.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, settingsPath, assetsDir string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP render service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.config()

			s, err := c.settings(settingsPath)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, noCache, assetsDir)
			if err != nil {
				return err
			}
			defer runner.Close()

			store, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			if addr == "" {
				addr = cfg.Server.Addr
			}
			srv := server.New(runner, store, server.Config{
				Addr:            addr,
				RequestTimeout:  cfg.Server.RequestTimeout.Duration,
				MaxBodyBytes:    cfg.Server.MaxBodyBytes,
				Settings:        s,
				DefaultSize:     cfg.Render.DefaultSize,
				DefaultFidelity: cfg.Render.Fidelity,
			}, c.Logger)

			printInfo("Listening on %s", StyleValue.Render(addr))
			printDetail("cache: %s  artifacts: %s", cfg.Cache.Backend, cfg.Artifacts.Backend)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&settingsPath, "settings", "", "geometry settings JSON (default from config)")
	cmd.Flags().StringVar(&assetsDir, "assets", "", "asset base directory containing uploads/, public/ and legacy/")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}
