// Package timeseries provides time series data structures and utilities.
//
// This package includes the Series type for representing equally spaced
// observations, possibly with gaps, along with functions for data loading.
//
// # Creating a Series
//
// Create a time series from a slice:
//
//	values := []float64{100, 102, 105, 103, 108, 110}
//	series := timeseries.New(values)
//	series.Period = 12
//
// # Missing Observations
//
// Missing observations are stored as NaN and keep their position:
//
//	series := timeseries.New([]float64{1, math.NaN(), 3})
//	series.Missing()    // [1]
//	series.Filled(0)    // [1 0 3]
//
// Summary statistics (Mean, Std, Min, Max, Median) use the observed values.
//
// # Loading from CSV
//
// Load time series data from CSV files:
//
//	// Load a specific column
//	series, err := timeseries.LoadCSVColumn("data.csv", "value")
//
//	// Load with filtering
//	series, err := timeseries.LoadCSVFiltered(
//	    "data.csv",
//	    "country", "Australia",  // filter column and value
//	    "population",            // value column
//	)
//
// Empty, NA and unparseable cells become missing observations. When dates are
// present the seasonal period is inferred from their spacing.
//
// # CSV Options
//
// Customize CSV loading:
//
//	opts := &timeseries.CSVOptions{
//	    DateColumn:  "date",
//	    ValueColumn: "value",
//	    DateFormat:  "2006-01-02",
//	    HasHeader:   true,
//	}
//	series, err := timeseries.LoadCSVFromReader(reader, opts)
//
// WriteCSV writes a series back, with NA for missing observations.
package timeseries
