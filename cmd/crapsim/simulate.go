package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/xtding233/craps-backend/internal/service"
	"github.com/xtding233/craps-backend/internal/sim"
)

func newSimulateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run Monte Carlo sessions and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd.Context(), v, false)
			if err != nil {
				return err
			}
			defer e.close()

			job := service.Job{
				Table:      v.GetString("table"),
				Variant:    v.GetString("variant"),
				Strategies: v.GetStringSlice("strategies"),
				Sessions:   v.GetInt("sessions"),
				MaxRolls:   v.GetInt("rolls"),
				Seed:       v.GetUint64("seed"),
				Bankroll:   v.GetInt64("bankroll"),
				Unit:       v.GetInt64("unit"),
				Record:     v.GetString("record") != "",
				Overrides:  overridesFrom(v),
			}
			rep, err := e.runner.Simulate(cmd.Context(), job)
			if err != nil {
				return err
			}
			if v.GetBool("json") {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			printReport(cmd.OutOrStdout(), rep)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringSlice("strategies", []string{"passline-odds"}, "one seat per strategy: "+strings.Join(sim.StrategyNames(), ", "))
	f.Int("sessions", 1000, "number of sessions")
	f.Int("rolls", 200, "roll limit per session")
	f.Uint64("seed", 0, "seed for reproducible dice (0: crypto dice)")
	f.Int("workers", 0, "parallel sessions (0: GOMAXPROCS)")
	f.Int64("bankroll", 0, "bankroll per seat (0: 100 units)")
	f.Int64("unit", 0, "base bet (0: table minimum)")
	f.Int64("odds", 0, "override odds multiple on every point")
	f.Int64("min", 0, "override table minimum")
	f.Bool("json", false, "print the report as JSON")
	return cmd
}

func printReport(w io.Writer, rep sim.Report) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "run %s: %d sessions, %d rolls\n", rep.RunID, rep.Sessions, rep.Totals.Rolls)
	p.Fprintf(w, "net per session: mean %.2f  stddev %.2f  p50 %.0f  p90 %.0f  p99 %.0f\n",
		rep.Net.Mean, rep.Net.StdDev, rep.Net.P50, rep.Net.P90, rep.Net.P99)
	p.Fprintf(w, "rolls per session: mean %.1f\n", rep.Rolls.Mean)
	p.Fprintf(w, "points set %d, made %d, seven-outs %d, refused bets %d\n",
		rep.Totals.PointsSet, rep.Totals.PointsMade, rep.Totals.SevenOuts, rep.Totals.Rejected)
	p.Fprintf(w, "wagered %d  paid %d  taken %d  house edge %.3f%%\n\n",
		int64(rep.Totals.Wagered), int64(rep.Totals.Paid), int64(rep.Totals.Taken), rep.HouseEdge*100)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "kind\tplaced\twon\tlost\treturned\twagered\tpaid\ttaken\t")
	kinds := make([]string, 0, len(rep.ByKind))
	for k := range rep.ByKind {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	for _, k := range kinds {
		t := rep.ByKind[k]
		fmt.Fprintln(tw, p.Sprintf("%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t",
			k, t.Placed, t.Won, t.Lost, t.Returned, int64(t.Wagered), int64(t.Paid), int64(t.Taken)))
	}
	_ = tw.Flush()
}
