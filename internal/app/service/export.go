package service

import (
	"errors"
	"time"
)

var (
	// ErrNoAddresses is returned when there is nothing to enrich.
	ErrNoAddresses = errors.New("no addresses to process")
	// ErrNoResults is returned when every address failed, which cancels the export.
	ErrNoResults = errors.New("no data successfully retrieved, export canceled")
)

// ExportReport describes a finished enrichment and CSV export.
type ExportReport struct {
	Job       string
	CSVPath   string
	Total     int
	Succeeded int
	Failed    int
	Rows      int
	Elapsed   time.Duration
}
