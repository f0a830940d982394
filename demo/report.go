package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/sartorproj/goregarima/arima"
	"github.com/sartorproj/goregarima/outliers"
	"github.com/sartorproj/goregarima/stats"
	"github.com/sartorproj/goregarima/timeseries"
)

// report prints the outcome of the outlier search on series.
func report(w io.Writer, series *timeseries.Series, loop *outliers.Loop) {
	est := loop.Estimation()
	line := strings.Repeat("=", 72)

	name := series.Name
	if name == "" {
		name = "y"
	}
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "Series %s: %d observations, %d missing\n", name, series.Len(), len(series.Missing()))
	fmt.Fprintf(w, "   range [%.4f, %.4f]  mean=%.4f  std=%.4f  median=%.4f\n",
		series.Min(), series.Max(), series.Mean(), series.Std(), series.Median())
	fmt.Fprintf(w, "Model: %v\n", est.Spec.Order)
	fmt.Fprintf(w, "Critical value: %.3f\n", loop.CriticalValue())
	fmt.Fprintln(w, line)

	found := loop.Outliers()
	accepted := make(map[string]bool, len(found))
	fmt.Fprintf(w, "\nOutliers (%d)\n", len(found))
	for _, o := range found {
		accepted[o.Name()] = true
		coef, _ := est.Coefficient(o.Name())
		t, _ := est.TStat(o.Name())
		mark := ""
		if o.Prespecified {
			mark = " (prespecified)"
		}
		fmt.Fprintf(w, "   %-10s %12.4f   t=%8.3f%s\n", o.Name(), coef, t, mark)
	}

	fmt.Fprintln(w, "\nRegression")
	for i, n := range est.Names {
		if accepted[n] {
			continue
		}
		fmt.Fprintf(w, "   %-10s %12.4f   se=%8.4f   t=%8.3f\n", n, est.Coefficients[i], est.StdErrors[i], est.TStats[i])
	}

	fmt.Fprintln(w, "\nARIMA parameters")
	names := parameterNames(est.Spec.Order)
	params := est.Spec.Parameters()
	for i, v := range params {
		se := math.NaN()
		if i < len(est.ParameterStdErrors) {
			se = est.ParameterStdErrors[i]
		}
		fixed := ""
		if est.Spec.IsFixed(i) {
			fixed = " (fixed)"
		}
		fmt.Fprintf(w, "   %-10s %12.4f   se=%8.4f%s\n", names[i], v, se, fixed)
	}

	ll := est.Likelihood
	fmt.Fprintln(w, "\nLikelihood")
	fmt.Fprintf(w, "   loglik=%.4f  sigma2=%.6f\n", ll.LogLik, ll.Sigma2)
	fmt.Fprintf(w, "   AIC=%.4f  AICc=%.4f  BIC=%.4f\n", ll.AIC, ll.AICc, ll.BIC)
	if lb := est.LjungBox; lb != nil {
		fmt.Fprintf(w, "   Ljung-Box Q(%d)=%.3f  p=%.4f\n", lb.Lags, lb.Statistic, lb.PValue)
	}
	fmt.Fprintf(w, "   iterations=%d  attempts=%d\n", est.Iterations, est.Attempts)

	fmt.Fprintln(w, "\nResidual diagnostics")
	if dw := stats.DurbinWatson(est.Residuals); dw != nil {
		fmt.Fprintf(w, "   Durbin-Watson d=%.3f\n", dw.Statistic)
	}
	lags := 12
	if lb := est.LjungBox; lb != nil {
		lags = lb.Lags
	}
	if acf := stats.ACFWithConfidence(est.Residuals, lags); acf != nil {
		if sig := stats.SignificantLags(acf.Values, acf.ConfBounds); len(sig) > 0 {
			fmt.Fprintf(w, "   autocorrelations beyond ±%.3f at lags %v\n", acf.ConfBounds, sig)
		} else {
			fmt.Fprintf(w, "   no autocorrelation beyond ±%.3f up to lag %d\n", acf.ConfBounds, lags)
		}
	}

	if series.HasMissing() {
		filled := est.Interpolated()
		fmt.Fprintln(w, "\nInterpolated")
		for _, pos := range series.Missing() {
			fmt.Fprintf(w, "   %-10d %12.4f\n", pos, filled[pos])
		}
	}
}

// parameterNames labels the parameters in the order of Spec.Parameters.
func parameterNames(o arima.Order) []string {
	var names []string
	for _, g := range []struct {
		prefix string
		n      int
	}{{"ar", o.P}, {"sar", o.SP}, {"ma", o.Q}, {"sma", o.SQ}} {
		for i := 1; i <= g.n; i++ {
			names = append(names, fmt.Sprintf("%s%d", g.prefix, i))
		}
	}
	return names
}
