package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []Status{StatusPending, StatusPaid, StatusCooking, StatusReady, StatusCompleted, StatusCancelled}

func TestCanTransition(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusPending, StatusPaid}:      true,
		{StatusPending, StatusCancelled}: true,
		{StatusPaid, StatusCooking}:      true,
		{StatusPaid, StatusCancelled}:    true,
		{StatusCooking, StatusReady}:     true,
		{StatusReady, StatusCompleted}:   true,
	}
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := allowed[[2]Status{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range allStatuses {
		assert.Equal(t, s == StatusCompleted || s == StatusCancelled, s.Terminal(), s)
	}
}

func TestReached(t *testing.T) {
	assert.True(t, StatusCooking.Reached(StatusPaid))
	assert.True(t, StatusPaid.Reached(StatusPaid))
	assert.False(t, StatusPending.Reached(StatusPaid))
	assert.False(t, StatusCancelled.Reached(StatusPaid))
	assert.False(t, StatusCompleted.Reached(StatusCancelled))
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("cooking")
	require.NoError(t, err)
	assert.Equal(t, StatusCooking, st)

	_, err = ParseStatus("COOKING")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}
