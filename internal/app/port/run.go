package port

import "wallet_enricher/internal/domain/entity"

// RunRecorder stores the summary of a finished job run.
type RunRecorder interface {
	Record(summary entity.RunSummary)
}

// RunReader exposes recorded run summaries.
type RunReader interface {
	Latest(job string) (entity.RunSummary, bool)
	All() []entity.RunSummary
}
