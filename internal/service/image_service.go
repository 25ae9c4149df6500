package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fanfie/fanfie-api/internal/domain"
	"github.com/fanfie/fanfie-api/internal/dto"
	apperrors "github.com/fanfie/fanfie-api/internal/pkg/errors"
)

var extensionByContentType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ImageService handles image records and their stored objects
type ImageService struct {
	imageRepo ImageRepository
	objects   ObjectStore
	cleanup   CleanupEnqueuer
	logger    *zap.Logger
}

// NewImageService creates a new image service
func NewImageService(imageRepo ImageRepository, objects ObjectStore, cleanup CleanupEnqueuer, logger *zap.Logger) *ImageService {
	return &ImageService{
		imageRepo: imageRepo,
		objects:   objects,
		cleanup:   cleanup,
		logger:    logger,
	}
}

// List retrieves a page of image records
func (s *ImageService) List(ctx context.Context, page, limit int) (*domain.ImageList, error) {
	page, limit = normalizePage(page, limit)

	images, total, err := s.imageRepo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	return &domain.ImageList{
		Images:     images,
		TotalCount: total,
		Page:       page,
		HasMore:    int64(page*limit) < total,
	}, nil
}

// AddMany inserts a batch of image records pointing at external URLs
func (s *ImageService) AddMany(ctx context.Context, inputs []dto.ImageInput) ([]domain.Image, error) {
	now := time.Now()
	images := make([]domain.Image, 0, len(inputs))
	for _, in := range inputs {
		images = append(images, domain.Image{
			ID:          uuid.New(),
			URL:         in.URL,
			Title:       in.Title,
			Description: in.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := s.imageRepo.CreateMany(ctx, images); err != nil {
		return nil, fmt.Errorf("failed to add images: %w", err)
	}

	s.logger.Info("images added", zap.Int("count", len(images)))

	return images, nil
}

// Upload decodes a captured image, stores the object, and records its URL
func (s *ImageService) Upload(ctx context.Context, req *dto.UploadImageRequest) (*domain.Image, error) {
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return nil, apperrors.Validation("image data must be base64 encoded").WithError(err)
	}
	if len(data) == 0 {
		return nil, apperrors.Validation("image data is empty")
	}

	id := uuid.New()
	objectName := fmt.Sprintf("captures/%s.%s", id, extensionByContentType[req.ContentType])

	url, err := s.objects.Put(ctx, objectName, req.ContentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to store image object: %w", err)
	}

	now := time.Now()
	image := domain.Image{
		ID:          id,
		URL:         url,
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.imageRepo.CreateMany(ctx, []domain.Image{image}); err != nil {
		// Keep the store consistent with the database
		if rmErr := s.objects.Remove(ctx, objectName); rmErr != nil {
			s.logger.Error("failed to remove orphaned object",
				zap.Error(rmErr),
				zap.String("object", objectName),
			)
		}
		return nil, fmt.Errorf("failed to record image: %w", err)
	}

	s.logger.Info("image uploaded",
		zap.String("image_id", id.String()),
		zap.Int("size_bytes", len(data)),
	)

	return &image, nil
}

// Delete removes image records and their stored objects. Returns the number
// of records deleted.
func (s *ImageService) Delete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	urls, err := s.imageRepo.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete images: %w", err)
	}

	var failed []string
	for _, url := range urls {
		objectName, ok := ObjectNameFromURL(url)
		if !ok {
			continue // external URL, nothing stored
		}
		if err := s.objects.Remove(ctx, objectName); err != nil {
			s.logger.Warn("failed to remove image object, deferring to cleanup",
				zap.Error(err),
				zap.String("object", objectName),
			)
			failed = append(failed, url)
		}
	}
	if len(failed) > 0 {
		if err := s.cleanup.EnqueueObjectRemoval(ctx, failed, 5*time.Minute); err != nil {
			s.logger.Error("failed to enqueue object removal", zap.Error(err))
		}
	}

	s.logger.Info("images deleted", zap.Int("count", len(urls)))

	return int64(len(urls)), nil
}

// ObjectNameFromURL extracts the stored object name from an image URL.
// Returns false for URLs that do not point at the object store.
func ObjectNameFromURL(url string) (string, bool) {
	const marker = "/captures/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return "", false
	}
	return "captures/" + url[idx+len(marker):], true
}
