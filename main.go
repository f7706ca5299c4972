package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/clients"
	cfg "github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/config"
	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/orchestrator"
	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/sentiment"
)

var version = "dev"

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "moodbooth",
		Short:         "Mood fusion engine for the event installation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default config/$CONFIG_ENV/config.yaml)")

	root.AddCommand(serveCmd(), runCmd(), replayCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// setup loads config and builds the logger every subcommand shares.
func setup() (*cfg.Root, *logrus.Logger, error) {
	conf, err := cfg.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	return conf, newLogger(conf), nil
}

func newLogger(conf *cfg.Root) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if strings.EqualFold(conf.Pipeline.LogFormat, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(conf.Pipeline.LogLvl)
	if err != nil {
		log.WithField("log_level", conf.Pipeline.LogLvl).Warn("unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// newScorer prefers the remote sentiment service and falls back to the
// built-in lexicon, extended by paths.lexicon when set.
func newScorer(conf *cfg.Root, log logrus.FieldLogger) (orchestrator.Scorer, error) {
	if url := conf.Services.Sentiment.URL; url != "" {
		log.WithField("url", url).Info("using remote sentiment service")
		return &clients.RemoteScorer{HTTP: clients.NewHTTP(), URL: url}, nil
	}
	lx, err := sentiment.DefaultLexicon()
	if err != nil {
		return nil, err
	}
	if p := conf.Paths.Lexicon; p != "" {
		extra, err := sentiment.LoadLexicon(p)
		if err != nil {
			return nil, err
		}
		lx.Extend(extra)
		log.WithField("lexicon", p).Info("extended sentiment lexicon")
	}
	return sentiment.NewAnalyzer(lx), nil
}

func newTokenIssuer(conf *cfg.Root) *clients.TokenIssuer {
	return &clients.TokenIssuer{
		HTTP:   clients.NewHTTP(),
		APIURL: conf.Services.Scribe.APIURL,
		APIKey: conf.Services.Scribe.APIKey,
	}
}
