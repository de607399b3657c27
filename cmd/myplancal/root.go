package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hangyu-feng/myplan-calendar/internal/config"
	"github.com/hangyu-feng/myplan-calendar/internal/extract"
	appLog "github.com/hangyu-feng/myplan-calendar/internal/log"
	"github.com/hangyu-feng/myplan-calendar/internal/schedule"
	"github.com/hangyu-feng/myplan-calendar/internal/source"
)

const version = "0.1.0"

// app carries state shared by subcommands once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "myplancal",
		Short:        "Weekly class schedule calendar built from MyPlan plan items",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// hash-password needs no config on disk.
			if cmd.Name() == "hash-password" {
				return nil
			}
			return a.loadConfig()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "./myplancal.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides config")

	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newRenderCmd(a))
	rootCmd.AddCommand(newSnapshotCmd(a))
	rootCmd.AddCommand(newHashPasswordCmd())

	return rootCmd
}

func (a *app) loadConfig() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", a.configPath)
		return err
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(level))

	appLog.Debug("effective config",
		"config_path", a.configPath,
		"listen", cfg.Listen,
		"refresh", cfg.RefreshCron,
		"source", cfg.Source.Kind,
		"grid_start", cfg.Grid.StartHour,
		"grid_end", cfg.Grid.EndHour,
		"hour_height", cfg.Grid.HourHeight,
	)
	return nil
}

// build runs one pass from the configured source to a calendar.
func (a *app) build(ctx context.Context) (schedule.Calendar, extract.Result, error) {
	src, err := source.New(a.cfg.Source)
	if err != nil {
		return schedule.Calendar{}, extract.Result{}, err
	}
	items, err := src.Load(ctx)
	if err != nil {
		return schedule.Calendar{}, extract.Result{}, fmt.Errorf("load plan items: %w", err)
	}
	res := extract.Extract(items)
	if len(res.Courses) == 0 {
		return schedule.Calendar{}, res, extract.ErrNoCourses
	}
	return schedule.Build(res.Courses, a.cfg.Grid), res, nil
}
