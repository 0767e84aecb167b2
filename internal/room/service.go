package room

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/daterange"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/storage"
)

const (
	photoMaxSide     = 1600
	thumbnailSide    = 256
	photoStoragePath = "rooms"
)

type CreateRequest struct {
	RoomType    string
	PriceCents  int64
	Description string
}

type UpdateRequest struct {
	RoomType    *string
	PriceCents  *int64
	Description *string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Room, error)
	// GetByID also loads the room's bookings.
	GetByID(ctx context.Context, id int64) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*Room, error)
	Delete(ctx context.Context, id int64) error

	ListRoomTypes(ctx context.Context) ([]string, error)
	FindAvailable(ctx context.Context, stay daterange.Range, roomType string) ([]*Room, error)

	UploadPhoto(ctx context.Context, id int64, content io.Reader) (*Room, error)
	// OpenPhoto returns the stored photo, or its thumbnail. The caller closes it.
	OpenPhoto(ctx context.Context, id int64, thumbnail bool) (io.ReadCloser, error)
}

type service struct {
	repo    Repository
	storage storage.Storage
	imgProc *storage.ImageProcessor
}

func NewService(repo Repository, store storage.Storage) Service {
	return &service{
		repo:    repo,
		storage: store,
		imgProc: storage.NewImageProcessor(),
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Room, error) {
	roomType := strings.TrimSpace(req.RoomType)
	if roomType == "" {
		return nil, ErrEmptyRoomType
	}
	if req.PriceCents < 0 {
		return nil, ErrInvalidPrice
	}

	rm := &Room{
		RoomType:    roomType,
		PriceCents:  req.PriceCents,
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.repo.Create(ctx, rm); err != nil {
		return nil, err
	}
	return rm, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Room, error) {
	rm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stays, err := s.repo.ListBookedStays(ctx, id)
	if err != nil {
		return nil, err
	}
	rm.Bookings = stays
	return rm, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id int64, req UpdateRequest) (*Room, error) {
	rm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RoomType != nil {
		roomType := strings.TrimSpace(*req.RoomType)
		if roomType == "" {
			return nil, ErrEmptyRoomType
		}
		rm.RoomType = roomType
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return nil, ErrInvalidPrice
		}
		rm.PriceCents = *req.PriceCents
	}
	if req.Description != nil {
		rm.Description = strings.TrimSpace(*req.Description)
	}

	if err := s.repo.Update(ctx, rm); err != nil {
		return nil, err
	}
	return rm, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	rm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeFiles(ctx, rm.PhotoPath, rm.ThumbnailPath)
	return nil
}

func (s *service) ListRoomTypes(ctx context.Context) ([]string, error) {
	return s.repo.ListDistinctRoomTypes(ctx)
}

func (s *service) FindAvailable(ctx context.Context, stay daterange.Range, roomType string) ([]*Room, error) {
	if !stay.Valid() {
		return nil, ErrInvalidDateRange
	}
	return s.repo.FindAvailable(ctx, stay, roomType)
}

func (s *service) UploadPhoto(ctx context.Context, id int64, content io.Reader) (*Room, error) {
	rm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Read once; both the photo and the thumbnail decode from it.
	raw, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}

	photo, err := s.imgProc.Normalize(bytes.NewReader(raw), photoMaxSide, photoMaxSide)
	if err != nil {
		return nil, ErrInvalidImage
	}
	thumb, err := s.imgProc.GenerateThumbnail(bytes.NewReader(raw), thumbnailSide)
	if err != nil {
		return nil, ErrInvalidImage
	}

	// A fresh name per upload, so a cached old photo URL never serves new bytes.
	name := uuid.NewString()
	photoPath := fmt.Sprintf("%s/%d/%s.jpg", photoStoragePath, id, name)
	thumbPath := fmt.Sprintf("%s/%d/%s_thumb.jpg", photoStoragePath, id, name)

	if err := s.storage.Save(ctx, photoPath, photo); err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}
	if err := s.storage.Save(ctx, thumbPath, thumb); err != nil {
		s.removeFiles(ctx, &photoPath)
		return nil, fmt.Errorf("failed to save thumbnail: %w", err)
	}

	if err := s.repo.UpdatePhoto(ctx, id, &photoPath, &thumbPath); err != nil {
		s.removeFiles(ctx, &photoPath, &thumbPath)
		return nil, err
	}

	s.removeFiles(ctx, rm.PhotoPath, rm.ThumbnailPath)
	rm.PhotoPath = &photoPath
	rm.ThumbnailPath = &thumbPath
	return rm, nil
}

func (s *service) OpenPhoto(ctx context.Context, id int64, thumbnail bool) (io.ReadCloser, error) {
	rm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	path := rm.PhotoPath
	if thumbnail {
		path = rm.ThumbnailPath
	}
	if path == nil {
		return nil, ErrNoPhoto
	}

	rc, err := s.storage.Get(ctx, *path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoPhoto
		}
		return nil, err
	}
	return rc, nil
}

// removeFiles is best effort; a leftover file is harmless.
func (s *service) removeFiles(ctx context.Context, paths ...*string) {
	for _, p := range paths {
		if p == nil {
			continue
		}
		if err := s.storage.Delete(ctx, *p); err != nil {
			log.Printf("failed to remove room photo %s: %v", *p, err)
		}
	}
}
