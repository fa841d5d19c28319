package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xtding233/craps-backend/internal/history"
	"github.com/xtding233/craps-backend/internal/logger"
	"github.com/xtding233/craps-backend/internal/service"
	"github.com/xtding233/craps-backend/internal/tablecfg"
)

const envPrefix = "CRAPSIM"

// NewRootCmd builds the crapsim command tree. Every flag can also come from
// a CRAPSIM_* environment variable or the --config file.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:           "crapsim",
		Short:         "Craps table simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindConfig(v, cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.String("config", "", "optional config file (yaml, json or toml)")
	pf.String("rules-dir", "configs", "directory holding tables/*.yaml")
	pf.String("table", "", "table rules to load (empty: default only)")
	pf.String("variant", "", "variant of the table")
	pf.String("record", "", "sqlite file for roll history")
	pf.String("env", "prod", "logging environment (local for development output)")
	pf.String("log-level", "warn", "minimum log level")

	root.AddCommand(newSimulateCmd(v), newReplayCmd(v), newCatalogCmd(v), newSessionsCmd(v))
	return root
}

func bindConfig(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// env bundles what every subcommand needs.
type env struct {
	runner *service.Runner
	log    *zap.Logger
	close  func()
}

func newEnv(ctx context.Context, v *viper.Viper, needHistory bool) (*env, error) {
	log, err := logger.New("crapsim", v.GetString("env"))
	if err != nil {
		return nil, err
	}
	if log, err = logger.WithLevel(log, v.GetString("log-level")); err != nil {
		return nil, err
	}
	e := &env{
		runner: &service.Runner{
			Rules:   tablecfg.NewLoader(v.GetString("rules-dir")),
			Log:     log,
			Workers: v.GetInt("workers"),
		},
		log:   log,
		close: func() { _ = log.Sync() },
	}
	db := v.GetString("record")
	if db == "" {
		if needHistory {
			return nil, fmt.Errorf("--record is required: %w", service.ErrNoHistory)
		}
		return e, nil
	}
	store, err := history.Open(ctx, db)
	if err != nil {
		return nil, err
	}
	e.runner.History = store
	e.close = func() {
		_ = store.Close()
		_ = log.Sync()
	}
	return e, nil
}

func overridesFrom(v *viper.Viper) tablecfg.Overrides {
	var o tablecfg.Overrides
	if v.IsSet("odds") && v.GetInt64("odds") > 0 {
		m := v.GetInt64("odds")
		o.OddsMultiple = &m
	}
	if v.IsSet("min") && v.GetInt64("min") > 0 {
		m := v.GetInt64("min")
		o.TableMinimum = &m
	}
	return o
}
