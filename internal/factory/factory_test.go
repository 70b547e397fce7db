package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToMemory(t *testing.T) {
	app, err := New(Config{})
	require.NoError(t, err)

	assert.NotNil(t, app.Storage)
	assert.NotNil(t, app.Registry)
	assert.NotNil(t, app.LobbyController)
	assert.NotNil(t, app.WSHandler)
	assert.NoError(t, app.Storage.Close())
}

func TestNewRejectsUnknownStorageType(t *testing.T) {
	_, err := New(Config{StorageType: "postgres"})
	assert.Error(t, err)
}

func TestNewRedisRequiresConfig(t *testing.T) {
	_, err := New(Config{StorageType: StorageTypeRedis})
	assert.Error(t, err)
}

func TestNewTestAppUsesMocks(t *testing.T) {
	app := NewTestApp()

	assert.NotNil(t, app.MockClock)
	assert.NotNil(t, app.MockRandom)
	assert.Same(t, app.Clock, app.MockClock)
	assert.Same(t, app.Random, app.MockRandom)
}
