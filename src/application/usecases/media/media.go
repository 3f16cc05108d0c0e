package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainErrors "restaurant-crm-api/src/domain/errors"
	domainMedia "restaurant-crm-api/src/domain/media"
	logger "restaurant-crm-api/src/infrastructure/logger"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofrs/uuid"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
)

// Storage is the subset of the media store the use case writes through.
type Storage interface {
	Save(restaurantID int, name string, data []byte) (string, error)
	URL(rel string) string
}

type UploadRequest struct {
	RestaurantID int
	CustomerID   *int
	UploadedBy   string
	Filename     string
	Data         []byte
}

type UploadResponse struct {
	Media *domainMedia.Media
	URL   string
}

type IMediaUseCase interface {
	Upload(ctx context.Context, req *UploadRequest) (*UploadResponse, error)
}

type MediaUseCase struct {
	repo     domainMedia.IMediaService
	storage  Storage
	maxBytes int64
	Logger   *logger.Logger
}

func NewMediaUseCase(repo domainMedia.IMediaService, storage Storage, maxBytes int64, loggerInstance *logger.Logger) IMediaUseCase {
	return &MediaUseCase{repo: repo, storage: storage, maxBytes: maxBytes, Logger: loggerInstance}
}

func (u *MediaUseCase) Upload(ctx context.Context, req *UploadRequest) (*UploadResponse, error) {
	size := int64(len(req.Data))
	if size == 0 {
		return nil, domainErrors.NewAppError(errors.New("file is empty"), domainErrors.ValidationError)
	}
	if u.maxBytes > 0 && size > u.maxBytes {
		return nil, domainErrors.NewAppError(fmt.Errorf("file exceeds %d bytes", u.maxBytes), domainErrors.ValidationError)
	}
	if !allowed(req.Data) {
		return nil, domainErrors.NewAppError(errors.New("only image, video, audio or pdf files are accepted"), domainErrors.ValidationError)
	}

	detected := mimetype.Detect(req.Data)
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	name := id.String() + detected.Extension()

	rel, err := u.storage.Save(req.RestaurantID, name, req.Data)
	if err != nil {
		return nil, err
	}

	m, err := u.repo.Create(ctx, &domainMedia.Media{
		RestaurantID: req.RestaurantID,
		CustomerID:   req.CustomerID,
		StoragePath:  rel,
		MimeType:     strings.Split(detected.String(), ";")[0],
		SizeBytes:    size,
		UploadedBy:   req.UploadedBy,
	})
	if err != nil {
		return nil, err
	}
	u.Logger.Info("Media uploaded",
		zap.Int("restaurantID", req.RestaurantID),
		zap.String("path", rel),
		zap.String("mimeType", m.MimeType),
		zap.Int64("size", size))
	return &UploadResponse{Media: m, URL: u.storage.URL(rel)}, nil
}

func allowed(data []byte) bool {
	if filetype.IsImage(data) || filetype.IsVideo(data) || filetype.IsAudio(data) {
		return true
	}
	kind, err := filetype.Match(data)
	return err == nil && kind.MIME.Value == "application/pdf"
}
