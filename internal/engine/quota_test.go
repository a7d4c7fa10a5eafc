package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCycleQuota_WithinLimit(t *testing.T) {
	q := NewCycleQuota(3)

	for i := 0; i < 3; i++ {
		assert.False(t, q.Exhausted(), "cycle %d should be allowed", i+1)
		q.Spend()
	}

	assert.True(t, q.Exhausted())
	assert.Equal(t, uint64(3), q.Current())
	assert.Equal(t, uint64(3), q.Limit())
}

func TestCycleQuota_Unlimited(t *testing.T) {
	q := NewCycleQuota(0)
	for i := 0; i < 10000; i++ {
		q.Spend()
	}
	assert.False(t, q.Exhausted())
}
