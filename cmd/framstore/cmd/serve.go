package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mstovari/framstore/pkg/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the record store over a REST API",
	Long: `serve exposes the record store over HTTP: load, immediate and
deferred stores, flush, status, /healthz and Prometheus /metrics.

Requests are serialized by the server; the store itself performs no
internal locking.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = e.Close() }()

		listen, _ := cmd.Flags().GetString("listen")
		if listen == "" {
			listen = e.cfg.API.Listen
		}

		return api.NewServer(e.store, e.logger, e.reg).ListenAndServe(listen)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "Listen address (defaults to the config value)")
}
