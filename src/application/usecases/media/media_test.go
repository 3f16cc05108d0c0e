package media

import (
	"context"
	"errors"
	"strings"
	"testing"

	domainErrors "restaurant-crm-api/src/domain/errors"
	logger "restaurant-crm-api/src/infrastructure/logger"
	"restaurant-crm-api/src/infrastructure/repository/memory"
	"restaurant-crm-api/src/infrastructure/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R', 0, 0, 0, 1, 0, 0, 0, 1, 8, 6, 0, 0, 0}

type failingStorage struct{}

func (failingStorage) Save(int, string, []byte) (string, error) { return "", errors.New("disk full") }
func (failingStorage) URL(rel string) string                    { return rel }

func TestUploadStoresImage(t *testing.T) {
	root := t.TempDir()
	store := storage.NewLocalStorage(root, "https://crm.example.com", logger.NewNopLogger())
	uc := NewMediaUseCase(memory.NewMediaRepository(memory.NewStore()), store, 1<<20, logger.NewNopLogger())

	customerID := 3
	resp, err := uc.Upload(context.Background(), &UploadRequest{
		RestaurantID: 7, CustomerID: &customerID, UploadedBy: "owner-1", Filename: "menu.png", Data: pngHeader,
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", resp.Media.MimeType)
	assert.True(t, strings.HasPrefix(resp.Media.StoragePath, "7/"))
	assert.True(t, strings.HasSuffix(resp.Media.StoragePath, ".png"))
	assert.Equal(t, "https://crm.example.com/media/"+resp.Media.StoragePath, resp.URL)
	assert.Equal(t, int64(len(pngHeader)), resp.Media.SizeBytes)

	f, err := store.Open(resp.Media.StoragePath)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestUploadRejects(t *testing.T) {
	uc := NewMediaUseCase(memory.NewMediaRepository(memory.NewStore()), failingStorage{}, 16, logger.NewNopLogger())
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"too large", append(append([]byte{}, pngHeader...), make([]byte, 32)...)},
		{"plain text", []byte("hello")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Upload(context.Background(), &UploadRequest{RestaurantID: 1, Data: tt.data})
			assert.True(t, domainErrors.IsType(err, domainErrors.ValidationError), "got %v", err)
		})
	}
}

func TestUploadStorageFailure(t *testing.T) {
	uc := NewMediaUseCase(memory.NewMediaRepository(memory.NewStore()), failingStorage{}, 0, logger.NewNopLogger())
	_, err := uc.Upload(context.Background(), &UploadRequest{RestaurantID: 1, Data: pngHeader})
	assert.EqualError(t, err, "disk full")
}
