package entity

import "time"

// RunSummary is the outcome of one sync job run.
type RunSummary struct {
	Job        string        `json:"job"`
	Total      int           `json:"total"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Rows       int           `json:"rows"`
	CSVPath    string        `json:"csv_path,omitempty"`
	FailedStep string        `json:"failed_step,omitempty"`
	Error      string        `json:"error,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`
	FinishedAt time.Time     `json:"finished_at"`
}
