package app

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/salon-scheduler/internal/config"
)

func TestOpenMemory(t *testing.T) {
	s, err := Open(&config.Config{StoreDriver: "memory"}, zerolog.Nop())
	require.NoError(t, err)

	assert.NotNil(t, s.Appointments)
	assert.NotNil(t, s.Requests)
	assert.NotNil(t, s.Queue)
	assert.NotNil(t, s.Audit)
	assert.NotNil(t, s.Ledger)
	assert.NotNil(t, s.Sales)
	assert.NoError(t, s.Close())
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(&config.Config{StoreDriver: "mysql"}, zerolog.Nop())
	assert.EqualError(t, err, `unknown STORE_DRIVER "mysql"`)
}
