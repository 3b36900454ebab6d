package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatedeal_backend/internal/repository/memory"
	"estatedeal_backend/internal/service"
)

func TestDemoIsRepeatable(t *testing.T) {
	store := memory.New()
	accounts := service.NewAccountService(store, service.NewAssociationService(store, store, nil), nil)
	ctx := context.Background()

	first, err := Demo(ctx, accounts, store)
	require.NoError(t, err)
	assert.NotZero(t, first.PropertyID)

	broker, err := store.GetBroker(ctx, first.BrokerID)
	require.NoError(t, err)
	assert.True(t, broker.IsVerified)

	second, err := Demo(ctx, accounts, store)
	require.NoError(t, err)
	assert.Equal(t, first.SellerID, second.SellerID)
	assert.Equal(t, first.BuyerID, second.BuyerID)
	assert.Zero(t, second.PropertyID)
}

func TestAdmin(t *testing.T) {
	store := memory.New()
	accounts := service.NewAccountService(store, nil, nil)
	ctx := context.Background()

	require.NoError(t, Admin(ctx, accounts, "admin@example.com", "pw"))
	require.NoError(t, Admin(ctx, accounts, "admin@example.com", "pw"))

	user, err := store.GetUserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "admin", string(user.Role))

	assert.Error(t, Admin(ctx, accounts, "", ""))
}
