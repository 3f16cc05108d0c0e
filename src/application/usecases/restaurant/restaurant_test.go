package restaurant

import (
	"bytes"
	"context"
	"testing"

	domainErrors "restaurant-crm-api/src/domain/errors"
	domainRestaurant "restaurant-crm-api/src/domain/restaurant"
	logger "restaurant-crm-api/src/infrastructure/logger"
	"restaurant-crm-api/src/infrastructure/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatLink(t *testing.T) {
	assert.Equal(t, "https://wa.me/5511999990000", ChatLink("+55 (11) 99999-0000"))
	assert.Equal(t, "", ChatLink(""))
	assert.Equal(t, "", ChatLink("n/a"))
}

func TestQRCode(t *testing.T) {
	repo := memory.NewRestaurantRepository(memory.NewStore())
	withNumber, err := repo.Create(context.Background(), &domainRestaurant.Restaurant{Name: "Cantina", OwnerID: "o1", WhatsAppNumber: "+55 11 99999-0000"})
	require.NoError(t, err)
	without, err := repo.Create(context.Background(), &domainRestaurant.Restaurant{Name: "Bistro", OwnerID: "o2"})
	require.NoError(t, err)
	uc := NewRestaurantUseCase(repo, logger.NewNopLogger())

	png, err := uc.QRCode(context.Background(), withNumber.ID, 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = uc.QRCode(context.Background(), without.ID, 0)
	assert.True(t, domainErrors.IsType(err, domainErrors.NotFound))

	_, err = uc.QRCode(context.Background(), withNumber.ID, 4096)
	assert.True(t, domainErrors.IsType(err, domainErrors.ValidationError))

	_, err = uc.QRCode(context.Background(), 999, 0)
	assert.True(t, domainErrors.IsType(err, domainErrors.NotFound))

	found, err := uc.GetByOwnerID(context.Background(), "o2")
	require.NoError(t, err)
	assert.Equal(t, without.ID, found.ID)
}
