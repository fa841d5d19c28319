package main

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xtding233/craps-backend/internal/api"
)

func newCatalogCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the bet catalog for a table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd.Context(), v, false)
			if err != nil {
				return err
			}
			defer e.close()

			cat, err := e.runner.Catalog(v.GetString("table"), v.GetString("variant"), overridesFrom(v))
			if err != nil {
				return err
			}
			view := api.RenderCatalog(cat)
			view.Table = v.GetString("table")
			out := cmd.OutOrStdout()
			if v.GetBool("json") {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			fmt.Fprintf(out, "min %d  max %d  unit %d  vig %d%%  leave up %v\n",
				view.TableMinimum, view.TableMaximum, view.Unit, view.VigPercent, view.LeaveUp)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "kind\tphases\tpays\tminimum\tflags")
			for _, entry := range view.Entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					entry.Kind, entry.Phases, joinMap(entry.Payout), joinMap(entry.Minimum), flags(entry))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Bool("json", false, "print as JSON")
	cmd.Flags().Int64("odds", 0, "override odds multiple on every point")
	cmd.Flags().Int64("min", 0, "override table minimum")
	return cmd
}

func joinMap[V any](m map[string]V) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		if k == "*" && len(keys) == 1 {
			parts[i] = fmt.Sprint(m[k])
			continue
		}
		parts[i] = fmt.Sprintf("%s=%v", k, m[k])
	}
	return strings.Join(parts, " ")
}

func flags(e api.EntryView) string {
	var f []string
	if e.Contract {
		f = append(f, "contract")
	}
	if e.OneRoll {
		f = append(f, "one-roll")
	}
	if e.OffOnComeOut {
		f = append(f, "off-on-come-out")
	}
	if e.StaysUp {
		f = append(f, "stays-up")
	}
	if e.Odds != "" {
		f = append(f, "odds:"+e.Odds)
	}
	return strings.Join(f, ",")
}
