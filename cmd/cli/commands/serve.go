package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/timetabler/pkg/api"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scheduling API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.Cfg.ServerAddr()
			}

			server := api.New(app.Engine, app.Logger)

			errChan := make(chan error, 1)
			go func() {
				app.Logger.Info("Listening", zap.String("addr", addr))
				errChan <- server.Listen(addr)
			}()

			select {
			case err := <-errChan:
				return err
			case <-app.Ctx.Done():
			}

			app.Logger.Info("Shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.ShutdownWithContext(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to server.addr or :8080)")

	return cmd
}
