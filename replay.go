package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/orchestrator"
)

func replayCmd() *cobra.Command {
	var out bool
	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>",
		Short: "Replay recorded ticks through a fresh session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, log, err := setup()
			if err != nil {
				return err
			}
			sc, err := orchestrator.LoadScenario(args[0])
			if err != nil {
				return err
			}
			scorer, err := newScorer(conf, log)
			if err != nil {
				return err
			}

			reports, err := orchestrator.Replay(cmd.Context(), sc, conf.MoodOptions(),
				orchestrator.WithScorer(scorer),
				orchestrator.WithSounds(conf.Sounds.BasePath),
				orchestrator.WithLogger(log),
			)
			if err != nil {
				return err
			}

			if out {
				path, err := orchestrator.PersistReplay(conf.Paths.Outputs, sc, reports)
				if err != nil {
					return fmt.Errorf("persist replay: %w", err)
				}
				log.WithField("path", path).Info("replay written")
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(reports)
		},
	}
	cmd.Flags().BoolVar(&out, "out", false, "write reports under paths.outputs instead of stdout")
	return cmd
}
