package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-converter/internal/api"
	"github.com/insightdelivered/statement-converter/internal/buildinfo"
	"github.com/insightdelivered/statement-converter/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("host") {
				a.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			var m *metrics.Metrics
			if a.cfg.Server.MetricsEnabled {
				m = metrics.New()
			}
			h := &api.Handler{
				Service: a.service(m),
				Metrics: m,
				Logger:  a.log,
				Version: buildinfo.Version,
			}
			server := api.NewApp(h, api.Options{
				MaxUploadMB:        a.cfg.Server.MaxUploadMB,
				RateLimitPerMinute: a.cfg.Server.RateLimitPerMinute,
				AllowOrigins:       a.cfg.Server.AllowOrigins,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				a.log.Info().Msg("shutting down")
				if err := server.ShutdownWithTimeout(shutdownTimeout); err != nil {
					a.log.Error().Err(err).Msg("shutdown failed")
				}
			}()

			addr := a.cfg.Server.Addr()
			a.log.Info().Str("addr", addr).Bool("metrics", m != nil).Msg("listening")
			if err := server.Listen(addr); err != nil {
				return fmt.Errorf("serving on %s: %w", addr, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")

	return cmd
}
