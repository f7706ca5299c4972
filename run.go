package main

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/clients"
	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/mood"
	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/orchestrator"
	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/transcript"
)

func runCmd() *cobra.Command {
	var audio string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the mood loop against the detector service",
		Long: "Polls the detector every mood.interval and prints one JSON report per tick.\n" +
			"With --audio, raw 16kHz PCM is streamed to the realtime scribe for the transcript.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, log, err := setup()
			if err != nil {
				return err
			}
			if conf.Services.Detector.URL == "" {
				return errors.New("services.detector.url is required for run")
			}

			engine, err := mood.NewEngine(conf.MoodOptions())
			if err != nil {
				return err
			}
			scorer, err := newScorer(conf, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var ts orchestrator.TranscriptSource = orchestrator.StaticTranscript("")
			if audio != "" {
				r, closeAudio, err := openAudio(audio)
				if err != nil {
					return err
				}
				defer closeAudio()

				scribe := transcript.NewScribe(transcript.Config{
					URL:     conf.Services.Scribe.RealtimeURL,
					ModelID: conf.Services.Scribe.ModelID,
				}, newTokenIssuer(conf), log)
				go func() {
					if err := scribe.Stream(ctx, r); err != nil {
						log.WithError(err).Error("realtime transcript stopped")
					}
				}()
				ts = scribe
			}

			session := orchestrator.NewSession(uuid.New().String(), engine,
				orchestrator.WithScorer(scorer),
				orchestrator.WithSounds(conf.Sounds.BasePath),
				orchestrator.WithLogger(log),
			)
			detector := &clients.FaceDetector{HTTP: clients.NewHTTP(), URL: conf.Services.Detector.URL}

			enc := json.NewEncoder(cmd.OutOrStdout())
			sink := func(rep orchestrator.Report) {
				if err := enc.Encode(rep); err != nil {
					log.WithError(err).Warn("write report")
				}
			}
			return orchestrator.NewRunner(session, detector, ts, conf.Mood.Interval, sink, log).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&audio, "audio", "", "raw PCM source for live transcription, - for stdin")
	return cmd
}

func openAudio(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
