package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsLocked(t *testing.T) {
	until := t0.Add(time.Hour)

	assert.False(t, IsLocked(nil, t0))
	assert.True(t, IsLocked(&until, t0))
	assert.True(t, IsLocked(&until, until.Add(-time.Nanosecond)))
	assert.False(t, IsLocked(&until, until))
	assert.False(t, IsLocked(&until, until.Add(time.Second)))
}

func TestComputeLock(t *testing.T) {
	assert.Equal(t, t0.AddDate(0, 0, 90), ComputeLock(t0, LeadRecontactLock))
	assert.Equal(t, t0.AddDate(0, 0, 14), ComputeLock(t0, AssociationRejectionLock))
}

func TestPastCutoff(t *testing.T) {
	visit := t0.Add(72 * time.Hour)

	assert.False(t, PastCutoff(visit, visit.Add(-25*time.Hour), VisitCancellationCutoff))
	assert.False(t, PastCutoff(visit, visit.Add(-24*time.Hour), VisitCancellationCutoff))
	assert.True(t, PastCutoff(visit, visit.Add(-23*time.Hour), VisitCancellationCutoff))
	assert.True(t, PastCutoff(visit, visit.Add(time.Hour), VisitCancellationCutoff))
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateCode(6)
		assert.NoError(t, err)
		assert.Len(t, code, 6)
		assert.Regexp(t, `^[0-9]{6}$`, code)
	}
}
