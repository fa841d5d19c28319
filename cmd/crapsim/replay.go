package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/xtding233/craps-backend/internal/craps"
)

func newReplayCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <session-id>",
		Short: "Re-run a recorded session from its stored rolls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), v, true)
			if err != nil {
				return err
			}
			defer e.close()

			res, err := e.runner.Replay(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p := message.NewPrinter(language.English)
			out := cmd.OutOrStdout()
			p.Fprintf(out, "session %s: %d rolls, %d points made, %d seven-outs, net %d\n",
				res.ID, res.Rolls, res.PointsMade, res.SevenOuts, int64(res.Net()))
			players := make([]craps.PlayerID, 0, len(res.End))
			for id := range res.End {
				players = append(players, id)
			}
			slices.Sort(players)
			for _, id := range players {
				p.Fprintf(out, "  %-24s %d -> %d\n", id, int64(res.Start[id]), int64(res.End[id]))
			}
			return nil
		},
	}
}

func newSessionsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd.Context(), v, true)
			if err != nil {
				return err
			}
			defer e.close()

			list, err := e.runner.History.Sessions(cmd.Context(), v.GetString("run"), v.GetInt("limit"))
			if err != nil {
				return err
			}
			for _, s := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  run=%s  table=%s  rolls=%d  strategies=%v\n",
					s.ID, s.RunID, s.Table, s.Rolls, s.Strategies)
			}
			return nil
		},
	}
	cmd.Flags().String("run", "", "only sessions from this run")
	cmd.Flags().Int("limit", 20, "maximum sessions listed")
	return cmd
}
