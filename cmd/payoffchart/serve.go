package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"payoffchart/internal/metrics"
	"payoffchart/internal/server"
	"payoffchart/internal/session"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	var port int
	var strict bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parser, catalog and editing sessions over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if !cmd.Flags().Changed("port") {
				port = cfg.Port
			}
			if !cmd.Flags().Changed("strict") {
				strict = cfg.Strict
			}

			promReg := prometheus.NewRegistry()
			promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New(promReg)

			sessions := session.NewManager(a.reg, cfg.DefaultVariant, cfg.SessionTTL, a.log)
			m.WatchSessions(sessions.Len)
			if err := sessions.StartSweeper(cfg.SweepSchedule); err != nil {
				return err
			}
			defer sessions.StopSweeper()

			srv := server.New(server.Config{
				Log:      a.log,
				Registry: a.reg,
				Sessions: sessions,
				Metrics:  m,
				Gatherer: promReg,
				Port:     port,
				DevMode:  cfg.DevMode,
				Strict:   strict,
			})

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			a.log.Info().Msg("received signal, shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "HTTP port (default from PAYOFF_PORT)")
	cmd.Flags().BoolVar(&strict, "strict", false, "attach barrier ordering warnings to every chart")
	return cmd
}
