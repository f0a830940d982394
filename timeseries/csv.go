package timeseries

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateColumn  string // Column name for dates (optional)
	ValueColumn string // Column name for values (default: "y")
	IDColumn    string // Column name for series ID (optional, for filtering)
	IDFilter    string // Value to filter by ID column
	DateFormat  string // Date format (default: "2006-01-02")
	HasHeader   bool   // Whether CSV has header row (default: true)
	Delimiter   rune   // Field delimiter (default: ',')
	SkipRows    int    // Number of rows to skip at start
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		ValueColumn: "y",
		DateFormat:  "2006-01-02",
		HasHeader:   true,
		Delimiter:   ',',
	}
}

// LoadCSV loads a time series from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads a time series from an io.Reader.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true

	// Skip rows if needed
	for i := 0; i < opts.SkipRows; i++ {
		_, err := reader.Read()
		if err != nil {
			return nil, err
		}
	}

	// Read header
	var headers []string
	var valueIdx, dateIdx, idIdx int = -1, -1, -1

	if opts.HasHeader {
		header, err := reader.Read()
		if err != nil {
			return nil, err
		}
		headers = header

		// Find column indices
		for i, h := range headers {
			h = strings.TrimSpace(strings.Trim(h, "\""))
			switch {
			case h == opts.ValueColumn || (opts.ValueColumn == "" && (h == "y" || h == "value" || h == "Value")):
				valueIdx = i
			case opts.DateColumn != "" && h == opts.DateColumn:
				dateIdx = i
			case h == "ds" || h == "date" || h == "Date" || h == "Month" || h == "Year":
				if dateIdx == -1 {
					dateIdx = i
				}
			case opts.IDColumn != "" && h == opts.IDColumn:
				idIdx = i
			case h == "unique_id" || h == "id" || h == "ID":
				if idIdx == -1 && opts.IDColumn == "" {
					idIdx = i
				}
			}
		}

		// If value column not found, try to find numeric column
		if valueIdx == -1 {
			// Default to last column if not specified
			valueIdx = len(headers) - 1
		}
	} else {
		// No header - use column indices
		valueIdx = 1 // Assume second column is value
		dateIdx = 0  // Assume first column is date
	}

	var values []float64
	var timestamps []time.Time
	observed := 0

	// Read data rows
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		// Filter by ID if specified
		if opts.IDFilter != "" && idIdx >= 0 && idIdx < len(record) {
			id := strings.TrimSpace(strings.Trim(record[idIdx], "\""))
			if id != opts.IDFilter {
				continue
			}
		}

		// Parse value; empty, NA and unparseable cells become missing
		if valueIdx >= 0 && valueIdx < len(record) {
			valStr := strings.TrimSpace(strings.Trim(record[valueIdx], "\""))
			val := math.NaN()
			if !isMissingToken(valStr) {
				if v, err := strconv.ParseFloat(valStr, 64); err == nil {
					val = v
					observed++
				}
			}
			values = append(values, val)

			// Parse date if available
			if dateIdx >= 0 && dateIdx < len(record) {
				dateStr := strings.TrimSpace(strings.Trim(record[dateIdx], "\""))
				if ts, ok := parseDate(dateStr, opts.DateFormat); ok {
					timestamps = append(timestamps, ts)
				}
			}
		}
	}

	if observed == 0 {
		return nil, errors.New("no valid data found in CSV")
	}

	// Create series
	series := New(values)
	if len(timestamps) == len(values) {
		series.Timestamps = timestamps
		series.Period = series.InferPeriod()
	}
	if valueIdx >= 0 && valueIdx < len(headers) {
		series.Name = strings.TrimSpace(strings.Trim(headers[valueIdx], "\""))
	}
	return series, nil
}

// LoadCSVColumn loads a specific column from a CSV file as a series.
func LoadCSVColumn(filename string, column string) (*Series, error) {
	opts := DefaultCSVOptions()
	opts.ValueColumn = column
	return LoadCSV(filename, opts)
}

// LoadCSVFiltered loads a filtered series from a CSV file.
func LoadCSVFiltered(filename string, idColumn, idValue, valueColumn string) (*Series, error) {
	opts := DefaultCSVOptions()
	opts.IDColumn = idColumn
	opts.IDFilter = idValue
	if valueColumn != "" {
		opts.ValueColumn = valueColumn
	}
	return LoadCSV(filename, opts)
}

func isMissingToken(s string) bool {
	switch s {
	case "", "NA", "NaN", "nan", "null", ".":
		return true
	}
	return false
}

// parseDate tries the configured layout and then the common fallbacks.
func parseDate(s, layout string) (time.Time, bool) {
	formats := []string{
		layout,
		"2006-01-02",
		"2006-01-02T15:04:05",
		"2006/01/02",
		"01/02/2006",
		"02-Jan-2006",
		"2006-01",
		"2006",
	}
	for _, f := range formats {
		if f == "" {
			continue
		}
		if ts, err := time.Parse(f, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// WriteCSV writes the series with a date column when it has timestamps.
// Missing observations are written as NA.
func WriteCSV(w io.Writer, s *Series, layout string) error {
	if layout == "" {
		layout = DefaultCSVOptions().DateFormat
	}
	name := s.Name
	if name == "" {
		name = "y"
	}
	dated := len(s.Timestamps) == len(s.Values)

	writer := csv.NewWriter(w)
	header := []string{name}
	if dated {
		header = []string{"date", name}
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for i, v := range s.Values {
		val := "NA"
		if !math.IsNaN(v) {
			val = strconv.FormatFloat(v, 'g', -1, 64)
		}
		record := []string{val}
		if dated {
			record = []string{s.Timestamps[i].Format(layout), val}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
