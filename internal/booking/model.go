package booking

import (
	"net/http"
	"strings"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/daterange"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "booking not found")
	ErrRoomNotFound      = apperror.New(http.StatusNotFound, "room not found")
	ErrInvalidDateRange  = apperror.New(http.StatusBadRequest, "check-out date must be after check-in date")
	ErrRoomUnavailable   = apperror.New(http.StatusBadRequest, "room not available for selected dates")
	ErrGuestEmailMissing = apperror.New(http.StatusBadRequest, "guest email is required")
	ErrInvalidGuestCount = apperror.New(http.StatusBadRequest, "a booking needs at least one adult and no negative guest counts")
	ErrPermissionDenied  = apperror.New(http.StatusForbidden, "permission denied")
)

// retryMessage is shown when the store gave up on the booking transaction.
const retryMessage = "booking could not be completed right now, please retry"

// Booking is a guest's stay in one room.
type Booking struct {
	ID               int64
	RoomID           int64
	RoomType         string
	UserID           string // account that made the booking; empty if unknown
	CheckIn          time.Time
	CheckOut         time.Time
	GuestEmail       string
	GuestFullName    string
	NumAdults        int
	NumChildren      int
	ConfirmationCode string
	CreatedAt        time.Time
}

func (b *Booking) Stay() daterange.Range {
	return daterange.Range{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}

func (b *Booking) TotalGuests() int {
	return b.NumAdults + b.NumChildren
}

// IsManagedBy reports whether the account with userID and email made this
// booking or is its guest.
func (b *Booking) IsManagedBy(userID, email string) bool {
	if userID != "" && b.UserID == userID {
		return true
	}
	return email != "" && strings.EqualFold(b.GuestEmail, email)
}

// Filter narrows List; zero fields match everything.
type Filter struct {
	GuestEmail string
	RoomID     int64
	UserID     string
}
