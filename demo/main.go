// Package main runs the outlier detection on a series read from a CSV file.
//
//	demo detect --file data/hsales.csv --column y --period 12
//	demo detect --file data.csv --config detect.yaml --log dev
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sartorproj/goregarima/outliers"
	"github.com/sartorproj/goregarima/regarima"
	"github.com/sartorproj/goregarima/timeseries"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "demo",
		Short:        "Regression-ARIMA outlier detection",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("log", "prod", "logger: dev, prod or none")
	root.AddCommand(newDetectCommand())
	return root
}

type detectOptions struct {
	file          string
	column        string
	filterColumn  string
	filterValue   string
	period        int
	config        string
	method        string
	criticalValue float64
	skip          int
	last          int
	output        string
}

func newDetectCommand() *cobra.Command {
	var opts detectOptions
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Fit the model and search additive outliers, level shifts and transitory changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, err := cmd.Flags().GetString("log")
			if err != nil {
				return err
			}
			logger, err := newLogger(kind)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return runDetect(cmd, opts, logger)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "CSV file holding the series")
	f.StringVarP(&opts.column, "column", "c", "y", "value column")
	f.StringVar(&opts.filterColumn, "filter-column", "", "column selecting one series of a long file")
	f.StringVar(&opts.filterValue, "filter-value", "", "value of --filter-column to keep")
	f.IntVarP(&opts.period, "period", "p", 0, "seasonal period, inferred from the dates when 0")
	f.StringVar(&opts.config, "config", "", "YAML configuration file")
	f.StringVar(&opts.method, "method", "", "detection method: exact, approximate or trench")
	f.Float64Var(&opts.criticalValue, "critical-value", 0, "critical value, 0 for the default of the series length")
	f.IntVar(&opts.skip, "skip", 0, "observations dropped at the start of the series")
	f.IntVar(&opts.last, "last", 0, "keep only the last observations, 0 keeps all")
	f.StringVarP(&opts.output, "output", "o", "", "CSV file receiving the series corrected for outliers")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runDetect(cmd *cobra.Command, opts detectOptions, logger *zap.Logger) error {
	cfg, err := LoadConfig(opts.config)
	if err != nil {
		return err
	}
	if opts.method != "" {
		if err := cfg.Outliers.Method.UnmarshalText([]byte(opts.method)); err != nil {
			return err
		}
	}
	if opts.criticalValue > 0 {
		cfg.Outliers.CriticalValue = opts.criticalValue
	}

	var series *timeseries.Series
	if opts.filterColumn != "" {
		series, err = timeseries.LoadCSVFiltered(opts.file, opts.filterColumn, opts.filterValue, opts.column)
	} else {
		series, err = timeseries.LoadCSVColumn(opts.file, opts.column)
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.file, err)
	}
	if opts.skip > 0 {
		series = series.Slice(opts.skip, series.Len())
	}
	if opts.last > 0 && series.Len() > opts.last {
		series = series.Slice(series.Len()-opts.last, series.Len())
	}
	period := opts.period
	if period == 0 {
		period = series.Period
	}
	logger.Info("series loaded",
		zap.String("file", opts.file),
		zap.Int("n", series.Len()),
		zap.Int("missing", len(series.Missing())),
		zap.Int("period", period))

	loop, err := newLoop(cfg, period, logger)
	if err != nil {
		return err
	}
	problem := regarima.NewProblem(series.Values, cfg.Model.Spec(period))
	problem.Mean = cfg.Model.Mean

	if _, err := loop.Process(problem); err != nil {
		return fmt.Errorf("detect outliers: %w", err)
	}
	for cfg.Outliers.Continue && loop.CriticalValue() > outliers.MinCriticalValue {
		if _, err := loop.ContinueProcessing(); err != nil {
			return fmt.Errorf("detect outliers: %w", err)
		}
	}
	logger.Info("outlier detection done",
		zap.Int("outliers", len(loop.Outliers())),
		zap.Float64("cv", loop.CriticalValue()))

	report(cmd.OutOrStdout(), series, loop)
	if opts.output != "" {
		return writeCorrected(opts.output, series, loop.Estimation())
	}
	return nil
}

// writeCorrected saves the series without the outlier effects, with the
// missing values interpolated.
func writeCorrected(path string, series *timeseries.Series, est *regarima.Estimation) error {
	corrected := series.Copy()
	corrected.Values = est.Corrected()
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := timeseries.WriteCSV(file, corrected, ""); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

func newLoop(cfg Config, period int, logger *zap.Logger) (*outliers.Loop, error) {
	ecfg, err := cfg.Estimation.Estimator()
	if err != nil {
		return nil, err
	}
	ecfg.Logger = logger.Named("estimator")

	factories, err := cfg.Outliers.Factories(period)
	if err != nil {
		return nil, err
	}
	dcfg := outliers.DefaultDetectorConfig()
	dcfg.Logger = logger.Named("detector")
	det, err := outliers.NewDetector(cfg.Outliers.Method, factories, dcfg)
	if err != nil {
		return nil, err
	}

	lcfg := outliers.DefaultLoopConfig()
	lcfg.CriticalValue = cfg.Outliers.CriticalValue
	lcfg.MaxIterations = cfg.Outliers.MaxIterations
	lcfg.Logger = logger.Named("loop")
	return outliers.NewLoop(regarima.NewEstimator(ecfg), det, lcfg), nil
}
