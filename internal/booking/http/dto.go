package http

import (
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/request"
	roomHttp "github.com/nekogravitycat/hotel-booking-backend/internal/room/http"
)

// CreateBookingRequest is the body of POST /bookings/rooms/:id.
type CreateBookingRequest struct {
	CheckIn       string `json:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut      string `json:"check_out" binding:"required,datetime=2006-01-02"`
	GuestEmail    string `json:"guest_email" binding:"omitempty,email"`
	GuestFullName string `json:"guest_full_name" binding:"max=200"`
	NumAdults     int    `json:"num_adults" binding:"min=0,max=20"`
	NumChildren   int    `json:"num_children" binding:"min=0,max=20"`
}

type CreateBookingResponse struct {
	ConfirmationCode string `json:"confirmation_code"`
}

type ByCodeRequest struct {
	Code string `uri:"code" binding:"required,alphanum,max=32"`
}

type ByGuestEmailRequest struct {
	Email string `uri:"email" binding:"required,email"`
}

type BookingResponse struct {
	ID               int64            `json:"id"`
	Room             roomHttp.RoomTag `json:"room"`
	CheckIn          string           `json:"check_in"`
	CheckOut         string           `json:"check_out"`
	Nights           int              `json:"nights"`
	GuestEmail       string           `json:"guest_email"`
	GuestFullName    string           `json:"guest_full_name,omitempty"`
	NumAdults        int              `json:"num_adults"`
	NumChildren      int              `json:"num_children"`
	TotalGuests      int              `json:"total_guests"`
	ConfirmationCode string           `json:"confirmation_code"`
	CreatedAt        time.Time        `json:"created_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:               b.ID,
		Room:             roomHttp.RoomTag{ID: b.RoomID, RoomType: b.RoomType},
		CheckIn:          b.CheckIn.Format(request.DateLayout),
		CheckOut:         b.CheckOut.Format(request.DateLayout),
		Nights:           b.Stay().Nights(),
		GuestEmail:       b.GuestEmail,
		GuestFullName:    b.GuestFullName,
		NumAdults:        b.NumAdults,
		NumChildren:      b.NumChildren,
		TotalGuests:      b.TotalGuests(),
		ConfirmationCode: b.ConfirmationCode,
		CreatedAt:        b.CreatedAt,
	}
}

func newBookingResponses(bookings []*booking.Booking) []BookingResponse {
	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	return items
}
