package runstore

import (
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"wallet_enricher/internal/domain/entity"
)

// Store keeps the latest run summary per job for a limited time.
type Store struct {
	runs *cache.Cache
}

// New creates a Store whose entries expire after ttl.
func New(ttl, cleanupInterval time.Duration) *Store {
	return &Store{runs: cache.New(ttl, cleanupInterval)}
}

// Record stores summary as the latest run of its job.
func (s *Store) Record(summary entity.RunSummary) {
	s.runs.Set(summary.Job, summary, cache.DefaultExpiration)
}

// Latest returns the latest run of job, if it has not expired.
func (s *Store) Latest(job string) (entity.RunSummary, bool) {
	v, found := s.runs.Get(job)
	if !found {
		return entity.RunSummary{}, false
	}
	summary, ok := v.(entity.RunSummary)
	return summary, ok
}

// All returns the latest run of every job, sorted by job name.
func (s *Store) All() []entity.RunSummary {
	items := s.runs.Items()
	out := make([]entity.RunSummary, 0, len(items))
	for _, item := range items {
		if summary, ok := item.Object.(entity.RunSummary); ok {
			out = append(out, summary)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Job < out[j].Job })
	return out
}
