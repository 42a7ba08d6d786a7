// Package timeseries provides time series data structures and utilities.
//
// This package includes the Series type for representing time series data,
// along with functions for loading monthly data from CSV files and checking
// that a month index is contiguous.
//
// # Creating a Series
//
// Create a time series from a slice:
//
//	values := []float64{112, 118, 132, 129, 121, 135}
//	series := timeseries.New(values)
//
// # Loading from CSV
//
// Load a monthly dataset, failing on any malformed row:
//
//	series, err := timeseries.LoadMonthly("dataset/AirPassengers.csv", "Month", "#Passengers")
//
// Looser loading skips rows whose value cannot be parsed:
//
//	opts := &timeseries.CSVOptions{
//	    DateColumn:  "date",
//	    ValueColumn: "value",
//	    DateFormat:  "2006-01-02",
//	    HasHeader:   true,
//	}
//	series, err := timeseries.LoadCSVFromReader(reader, opts)
//
// # Months
//
// MonthStart, MonthEnd and AddMonths normalise timestamps to UTC calendar
// months. ValidateMonthly rejects empty, unordered, duplicated or gapped
// month indices with ErrNotMonthly.
//
// # Transformations
//
//	diff := series.Diff()            // First difference
//	sdiff := series.SeasonalDiff(12) // Seasonal difference
//	subset := series.Slice(0, 132)   // Training window
package timeseries
