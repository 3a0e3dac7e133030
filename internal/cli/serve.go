package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/simcheck/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes distance, compare, merge and history over HTTP. It uses the
configured cache and history backends; point several instances at one Redis
and MongoDB to share them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), backends{cache: true, store: true})
			if err != nil {
				return err
			}
			defer runner.Close()

			srvCfg := cfg.Server
			if addr != "" {
				srvCfg.Addr = addr
			}
			return server.New(runner, srvCfg, c.Logger).ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
