package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/alexanderramin/skiff/internal/remote"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference remote collection server",
		Long: "Runs an in-memory HTTP implementation of the remote collection\n" +
			"protocol. Useful for trying out sync locally: point SKIFF_REMOTE at\n" +
			"this server from another shell.",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := remote.NewServer(remote.NewMemory())
			httpSrv := &http.Server{
				Addr:              addr,
				Handler:           srv.Router(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving remote collection on %s\n", addr)
			return httpSrv.ListenAndServe()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8787", "Listen address")
	return cmd
}
