package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

func TestTokenPrefix(t *testing.T) {
	assert.Equal(t, "GLA", TokenPrefix("Glamour Studio"))
	assert.Equal(t, "AB", TokenPrefix("a-b"))
	assert.Equal(t, "Q", TokenPrefix("123"))
	assert.Equal(t, "Q", TokenPrefix(""))
	assert.Equal(t, "GLA001", FormatToken("GLA", 1))
	assert.Equal(t, "Q1234", FormatToken("Q", 1234))
}

func TestReactivate(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusCancelled, StatusWaiting} {
		e := &models.QueueEntry{Status: string(s)}
		assert.True(t, Reactivate(e), s)
		assert.Equal(t, string(StatusArrived), e.Status)
	}

	for _, s := range []Status{StatusArrived, StatusInService} {
		e := &models.QueueEntry{Status: string(s)}
		assert.False(t, Reactivate(e), s)
		assert.Equal(t, string(s), e.Status)
	}
}

func TestEstimatedWait(t *testing.T) {
	assert.Equal(t, 45, EstimatedWait(3))
	assert.Zero(t, EstimatedWait(0))
}
