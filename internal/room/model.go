package room

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "room not found")
	ErrEmptyRoomType    = apperror.New(http.StatusBadRequest, "room type cannot be empty")
	ErrInvalidPrice     = apperror.New(http.StatusBadRequest, "price must not be negative")
	ErrInvalidDateRange = apperror.New(http.StatusBadRequest, "check-out date must be after check-in date")
	ErrNoPhoto          = apperror.New(http.StatusNotFound, "room has no photo")
	ErrInvalidImage     = apperror.New(http.StatusBadRequest, "uploaded file is not a supported image")
)

// Room is a bookable hotel room.
type Room struct {
	ID            int64
	RoomType      string
	PriceCents    int64
	Description   string
	PhotoPath     *string
	ThumbnailPath *string
	CreatedAt     time.Time

	// Bookings is only filled by Service.GetByID.
	Bookings []BookedStay
}

// BookedStay is a date range the room is taken for. Guest and booking
// identifiers stay with the booking module.
type BookedStay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Filter defines parameters for listing rooms.
type Filter struct {
	RoomType  string // exact match
	Page      int
	PageSize  int
	SortBy    string // id, room_type, price_cents, created_at
	SortOrder string // ASC or DESC
}
