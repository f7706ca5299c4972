package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/metrics"
	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/mood"
	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/server"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the token relay and the mood websocket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, log, err := setup()
			if err != nil {
				return err
			}
			if addr != "" {
				conf.Server.Addr = addr
			}

			engine, err := mood.NewEngine(conf.MoodOptions())
			if err != nil {
				return err
			}
			scorer, err := newScorer(conf, log)
			if err != nil {
				return err
			}

			opts := server.Options{
				Addr:            conf.Server.Addr,
				CORSOrigins:     conf.Server.CORSOrigins,
				TokenRatePerMin: conf.Server.TokenRatePerMin,
				TokenBurst:      conf.Server.TokenBurst,
				Engine:          engine,
				Scorer:          scorer,
				Sounds:          conf.Sounds.BasePath,
				Log:             log,
			}
			if conf.Services.Scribe.APIKey != "" {
				opts.Tokens = newTokenIssuer(conf)
			} else {
				log.Warn("no scribe api key, /scribe-token will answer 503")
			}
			if conf.Metrics.Enabled {
				reg := prometheus.NewRegistry()
				reg.MustRegister(
					collectors.NewGoCollector(),
					collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				)
				if err := metrics.Register(reg); err != nil {
					return err
				}
				opts.Gatherer = reg
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.WithField("version", version).Info("moodbooth serving")
			return server.New(opts).ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}
