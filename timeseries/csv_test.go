package timeseries

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"
)

func TestLoadCSVFromReader(t *testing.T) {
	// Test basic CSV loading
	csvData := `ds,y
2020-01-01,100
2020-01-02,101
2020-01-03,102
2020-01-04,103
2020-01-05,104`

	reader := strings.NewReader(csvData)
	opts := DefaultCSVOptions()

	series, err := LoadCSVFromReader(reader, opts)
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	if series.Len() != 5 {
		t.Errorf("Expected 5 observations, got %d", series.Len())
	}

	// Check values
	expected := []float64{100, 101, 102, 103, 104}
	for i, v := range expected {
		if series.Values[i] != v {
			t.Errorf("Value at index %d: expected %f, got %f", i, v, series.Values[i])
		}
	}

	t.Logf("Loaded %d values: %v", series.Len(), series.Values)
}

func TestLoadCSVWithFilter(t *testing.T) {
	// Test filtered CSV loading
	csvData := `unique_id,ds,y
A,2020-01-01,100
B,2020-01-01,200
A,2020-01-02,101
B,2020-01-02,201
A,2020-01-03,102`

	reader := strings.NewReader(csvData)
	opts := DefaultCSVOptions()
	opts.IDColumn = "unique_id"
	opts.IDFilter = "A"

	series, err := LoadCSVFromReader(reader, opts)
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	if series.Len() != 3 {
		t.Errorf("Expected 3 observations for 'A', got %d", series.Len())
	}

	// Check values (should only have A's values)
	expected := []float64{100, 101, 102}
	for i, v := range expected {
		if series.Values[i] != v {
			t.Errorf("Value at index %d: expected %f, got %f", i, v, series.Values[i])
		}
	}

	t.Logf("Filtered series: %v", series.Values)
}

func TestLoadCSVWithNAValues(t *testing.T) {
	// Test handling of NA values
	csvData := `ds,y
2020-01-01,100
2020-01-02,NA
2020-01-03,102
2020-01-04,NaN
2020-01-05,104`

	reader := strings.NewReader(csvData)
	opts := DefaultCSVOptions()

	series, err := LoadCSVFromReader(reader, opts)
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	// NA and NaN values are kept as missing observations
	if series.Len() != 5 {
		t.Errorf("Expected 5 observations (NA values kept as missing), got %d", series.Len())
	}

	missing := series.Missing()
	if len(missing) != 2 || missing[0] != 1 || missing[1] != 3 {
		t.Errorf("Expected missing positions [1 3], got %v", missing)
	}

	expected := []float64{100, 0, 102, 0, 104}
	for i, v := range series.Filled(0) {
		if v != expected[i] {
			t.Errorf("Value at index %d: expected %f, got %f", i, expected[i], v)
		}
	}

	t.Logf("Series with NA as missing: %v", series.Values)
}

func TestLoadCSVMonthlyPeriod(t *testing.T) {
	var b strings.Builder
	b.WriteString("date,sales\n")
	for i := 0; i < 24; i++ {
		fmt.Fprintf(&b, "%d-%02d-01,%d\n", 2020+i/12, i%12+1, 100+i)
	}

	opts := DefaultCSVOptions()
	opts.ValueColumn = "sales"
	series, err := LoadCSVFromReader(strings.NewReader(b.String()), opts)
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	if series.Period != 12 {
		t.Errorf("Expected inferred period 12, got %d", series.Period)
	}
	if series.Name != "sales" {
		t.Errorf("Expected name 'sales', got %q", series.Name)
	}
}

func TestLoadCSVAllMissing(t *testing.T) {
	csvData := `ds,y
2020-01-01,NA
2020-01-02,`

	_, err := LoadCSVFromReader(strings.NewReader(csvData), DefaultCSVOptions())
	if err == nil {
		t.Error("Expected an error when no value can be parsed")
	}
}

func TestLoadCSVMultipleColumns(t *testing.T) {
	// Test loading specific column
	csvData := `ds,Beer,Cement,Gas
2020-01-01,100,200,50
2020-01-02,110,210,55
2020-01-03,120,220,60`

	reader := strings.NewReader(csvData)
	opts := DefaultCSVOptions()
	opts.ValueColumn = "Cement"

	series, err := LoadCSVFromReader(reader, opts)
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	expected := []float64{200, 210, 220}
	for i, v := range expected {
		if series.Values[i] != v {
			t.Errorf("Value at index %d: expected %f, got %f", i, v, series.Values[i])
		}
	}

	t.Logf("Cement column: %v", series.Values)
}

func TestLoadCSVQuotedFields(t *testing.T) {
	// Test handling of quoted fields
	csvData := `"unique_id","ds","y"
"Australia","2020-01-01","1000000"
"Australia","2020-01-02","1000100"
"Australia","2020-01-03","1000200"`

	reader := strings.NewReader(csvData)
	opts := DefaultCSVOptions()

	series, err := LoadCSVFromReader(reader, opts)
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	if series.Len() != 3 {
		t.Errorf("Expected 3 observations, got %d", series.Len())
	}

	t.Logf("Quoted fields loaded: %v", series.Values)
}

func TestLoadCSVDateFormats(t *testing.T) {
	// Test various date formats
	testCases := []struct {
		name    string
		csvData string
	}{
		{
			"ISO format",
			`ds,y
2020-01-01,100
2020-01-02,101`,
		},
		{
			"Year only",
			`ds,y
2020,100
2021,101`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reader := strings.NewReader(tc.csvData)
			opts := DefaultCSVOptions()

			series, err := LoadCSVFromReader(reader, opts)
			if err != nil {
				t.Fatalf("Failed to load CSV: %v", err)
			}

			if series.Len() != 2 {
				t.Errorf("Expected 2 observations, got %d", series.Len())
			}
		})
	}
}

func TestDefaultCSVOptions(t *testing.T) {
	opts := DefaultCSVOptions()

	if opts.ValueColumn != "y" {
		t.Errorf("Expected default value column 'y', got '%s'", opts.ValueColumn)
	}

	if opts.DateFormat != "2006-01-02" {
		t.Errorf("Expected default date format '2006-01-02', got '%s'", opts.DateFormat)
	}

	if !opts.HasHeader {
		t.Error("Expected HasHeader to be true by default")
	}

	if opts.Delimiter != ',' {
		t.Errorf("Expected default delimiter ',', got '%c'", opts.Delimiter)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	timestamps := make([]time.Time, 4)
	for i := range timestamps {
		timestamps[i] = start.AddDate(0, i, 0)
	}
	s, err := NewWithTimestamps(timestamps, []float64{1.5, math.NaN(), -2, 1e6})
	if err != nil {
		t.Fatal(err)
	}
	s.Name = "sales"

	var buf bytes.Buffer
	if err := WriteCSV(&buf, s, ""); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "date,sales\n2020-01-01,1.5\n2020-02-01,NA\n2020-03-01,-2\n2020-04-01,1e+06\n"
	if buf.String() != want {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	opts := DefaultCSVOptions()
	opts.ValueColumn = "sales"
	back, err := LoadCSVFromReader(&buf, opts)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if back.Len() != 4 || !math.IsNaN(back.Values[1]) || back.Values[3] != 1e6 {
		t.Errorf("round trip changed the values: %v", back.Values)
	}
	if !back.Timestamps[2].Equal(timestamps[2]) {
		t.Errorf("round trip changed the dates: %v", back.Timestamps)
	}
}

func TestWriteCSVWithoutDates(t *testing.T) {
	s := &Series{Values: []float64{1, 2}}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, s, ""); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if buf.String() != "y\n1\n2\n" {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
