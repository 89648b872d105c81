package adapter

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donationhub/internal/adapter/memstore"
	"donationhub/internal/infra"
)

func TestOpenStoreMemory(t *testing.T) {
	b, err := OpenStore(context.Background(), &infra.Config{StoreDriver: infra.StoreDriverMemory}, zerolog.Nop())
	require.NoError(t, err)
	defer b.Close()
	assert.IsType(t, &memstore.Store{}, b.Store)
	assert.NoError(t, b.Ping(context.Background()))
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), &infra.Config{StoreDriver: "sqlite"}, zerolog.Nop())
	assert.ErrorContains(t, err, "sqlite")
}
