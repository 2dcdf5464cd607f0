package runstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet_enricher/internal/domain/entity"
)

func TestStore_RecordAndLatest(t *testing.T) {
	s := New(time.Hour, time.Minute)

	_, ok := s.Latest("labels")
	assert.False(t, ok)

	s.Record(entity.RunSummary{Job: "portfolios", Rows: 1})
	s.Record(entity.RunSummary{Job: "labels", Rows: 2})
	s.Record(entity.RunSummary{Job: "labels", Rows: 3})

	latest, ok := s.Latest("labels")
	require.True(t, ok)
	assert.Equal(t, 3, latest.Rows)

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "labels", all[0].Job)
	assert.Equal(t, "portfolios", all[1].Job)
}

func TestStore_Expiry(t *testing.T) {
	s := New(10*time.Millisecond, time.Hour)
	s.Record(entity.RunSummary{Job: "labels"})

	assert.Eventually(t, func() bool {
		_, ok := s.Latest("labels")
		return !ok
	}, time.Second, 5*time.Millisecond)
}
