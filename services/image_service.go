package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/homehelp/homehelp-api/apperror"
	"github.com/homehelp/homehelp-api/utils"
)

// ImageService validates, stores and links helper photos
type ImageService interface {
	// UploadImage validates and stores an image under prefix, returns the storage key
	UploadImage(ctx context.Context, prefix string, fileHeader *multipart.FileHeader) (string, error)

	// GetImageURL returns a temporary link to the image
	GetImageURL(ctx context.Context, imageKey string) (string, error)

	// DeleteImage removes an image from storage
	DeleteImage(ctx context.Context, imageKey string) error
}

// StoreImageService implements ImageService on top of an ObjectStore
type StoreImageService struct {
	store ObjectStore
}

// NewImageService creates an image service backed by store
func NewImageService(store ObjectStore) *StoreImageService {
	return &StoreImageService{store: store}
}

// UploadImage rejects files that are not valid images, then stores them
func (s *StoreImageService) UploadImage(ctx context.Context, prefix string, fileHeader *multipart.FileHeader) (string, error) {
	if err := validateImage(fileHeader); err != nil {
		return "", err
	}

	key, err := s.store.UploadFile(ctx, prefix, fileHeader)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return key, nil
}

// GetImageURL presigns a link to the image
func (s *StoreImageService) GetImageURL(ctx context.Context, imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	url, err := s.store.GetPresignedURL(ctx, imageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}

	return url, nil
}

// DeleteImage deletes the image from storage
func (s *StoreImageService) DeleteImage(ctx context.Context, imageKey string) error {
	if imageKey == "" {
		return nil
	}

	if err := s.store.DeleteFile(ctx, imageKey); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}

// validateImage maps upload validation failures to InvalidInput
func validateImage(fileHeader *multipart.FileHeader) error {
	err := utils.ValidateImageFile(fileHeader)
	var uploadErr *utils.FileUploadError
	if errors.As(err, &uploadErr) {
		return apperror.Wrap(apperror.InvalidInput, uploadErr.Message, err)
	}
	return err
}
