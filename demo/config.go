package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sartorproj/goregarima/arima"
	"github.com/sartorproj/goregarima/optim"
	"github.com/sartorproj/goregarima/outliers"
	"github.com/sartorproj/goregarima/regarima"
)

// Config is the layout of the YAML configuration file. Fields left out of
// the file keep their DefaultConfig values.
type Config struct {
	Model      ModelConfig      `yaml:"model"`
	Estimation EstimationConfig `yaml:"estimation"`
	Outliers   OutliersConfig   `yaml:"outliers"`
}

// ModelConfig selects the ARIMA model. The airline model ignores the orders.
type ModelConfig struct {
	Airline bool `yaml:"airline"`
	P       int  `yaml:"p"`
	D       int  `yaml:"d"`
	Q       int  `yaml:"q"`
	SP      int  `yaml:"sp"`
	SD      int  `yaml:"sd"`
	SQ      int  `yaml:"sq"`
	Mean    bool `yaml:"mean"`
}

// EstimationConfig maps onto regarima.EstimatorConfig.
type EstimationConfig struct {
	Precision         float64                `yaml:"precision"`
	MaxIterations     int                    `yaml:"max_iterations"`
	StartingPoint     regarima.StartingPoint `yaml:"starting_point"`
	MaxAttempts       int                    `yaml:"max_attempts"`
	MaximumLikelihood bool                   `yaml:"maximum_likelihood"`
	CheckUnitRoots    bool                   `yaml:"check_unit_roots"`
	Minimizer         string                 `yaml:"minimizer"` // lm or bfgs
}

// OutliersConfig maps onto the detector and loop settings.
type OutliersConfig struct {
	Method        outliers.Method `yaml:"method"`
	Types         []string        `yaml:"types"`
	CriticalValue float64         `yaml:"critical_value"` // 0 selects the default for the length
	ZeroEnded     bool            `yaml:"zero_ended"`
	TCRate        float64         `yaml:"tc_rate"`
	MaxIterations int             `yaml:"max_iterations"`
	// Continue lowers the critical value down to its floor after the first
	// pass.
	Continue bool `yaml:"continue"`
}

// DefaultConfig returns the airline model with the library defaults.
func DefaultConfig() Config {
	est := regarima.DefaultEstimatorConfig()
	loop := outliers.DefaultLoopConfig()
	return Config{
		Model: ModelConfig{Airline: true},
		Estimation: EstimationConfig{
			Precision:         est.Precision,
			MaxIterations:     est.MaxIterations,
			StartingPoint:     est.StartingPoint,
			MaxAttempts:       est.MaxAttempts,
			MaximumLikelihood: est.MaximumLikelihood,
			CheckUnitRoots:    est.CheckUnitRoots,
			Minimizer:         "lm",
		},
		Outliers: OutliersConfig{
			Method:        outliers.MethodExact,
			Types:         []string{outliers.CodeAO, outliers.CodeLS, outliers.CodeTC},
			ZeroEnded:     true,
			TCRate:        outliers.DefaultTCRate,
			MaxIterations: loop.MaxIterations,
		},
	}
}

// LoadConfig reads a YAML file over the defaults. An empty path returns the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Spec returns the model of a series with the given seasonal period.
func (m ModelConfig) Spec(period int) *arima.Spec {
	if m.Airline {
		if period < 2 {
			s := arima.New(arima.Order{D: 1, Q: 1})
			s.MACoeffs[0] = -0.2
			return s
		}
		return arima.Airline(period)
	}
	order := arima.Order{P: m.P, D: m.D, Q: m.Q}
	if period >= 2 && m.SP+m.SD+m.SQ > 0 {
		order.SP, order.SD, order.SQ, order.M = m.SP, m.SD, m.SQ, period
	}
	return arima.New(order)
}

// Estimator returns the estimator settings.
func (e EstimationConfig) Estimator() (regarima.EstimatorConfig, error) {
	cfg := regarima.DefaultEstimatorConfig()
	cfg.Precision = e.Precision
	cfg.MaxIterations = e.MaxIterations
	cfg.StartingPoint = e.StartingPoint
	cfg.MaxAttempts = e.MaxAttempts
	cfg.MaximumLikelihood = e.MaximumLikelihood
	cfg.CheckUnitRoots = e.CheckUnitRoots
	switch e.Minimizer {
	case "", "lm":
		cfg.Minimizer = optim.LevenbergMarquardt{}
	case "bfgs":
		cfg.Minimizer = optim.BFGS{}
	default:
		return cfg, fmt.Errorf("unknown minimizer %q", e.Minimizer)
	}
	return cfg, nil
}

// Factories returns the outlier types to search.
func (o OutliersConfig) Factories(period int) ([]outliers.Factory, error) {
	factories := make([]outliers.Factory, 0, len(o.Types))
	for _, code := range o.Types {
		f, err := outliers.NewFactory(code, period)
		if err != nil {
			return nil, err
		}
		switch f := f.(type) {
		case outliers.LevelShift:
			f.ZeroEnded = o.ZeroEnded
			factories = append(factories, f)
		case outliers.SeasonalOutlier:
			f.ZeroEnded = o.ZeroEnded
			factories = append(factories, f)
		case outliers.TransitoryChange:
			if o.TCRate > 0 && o.TCRate < 1 {
				f.Rate = o.TCRate
			}
			factories = append(factories, f)
		default:
			factories = append(factories, f)
		}
	}
	return factories, nil
}
