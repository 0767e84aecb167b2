package http

import (
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
)

// ListRoomsRequest defines query parameters for listing rooms.
type ListRoomsRequest struct {
	Page      int    `form:"page,default=1" binding:"min=1"`
	PageSize  int    `form:"page_size,default=20" binding:"min=1,max=100"`
	RoomType  string `form:"room_type"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=id room_type price_cents created_at"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// AvailableRoomsRequest is the query of GET /rooms/available.
type AvailableRoomsRequest struct {
	CheckIn  string `form:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut string `form:"check_out" binding:"required,datetime=2006-01-02"`
	RoomType string `form:"room_type"`
}

type CreateRoomRequest struct {
	RoomType    string `json:"room_type" binding:"required"`
	PriceCents  *int64 `json:"price_cents" binding:"required,min=0"`
	Description string `json:"description"`
}

type UpdateRoomRequest struct {
	RoomType    *string `json:"room_type" binding:"omitempty,min=1"`
	PriceCents  *int64  `json:"price_cents" binding:"omitempty,min=0"`
	Description *string `json:"description"`
}

// RoomTag is a brief representation of a room, embedded in booking responses.
type RoomTag struct {
	ID       int64  `json:"id"`
	RoomType string `json:"room_type"`
}

// BookedStayResponse is public: dates only, nothing that identifies the booking or guest.
type BookedStayResponse struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

type RoomResponse struct {
	ID          int64                `json:"id"`
	RoomType    string               `json:"room_type"`
	PriceCents  int64                `json:"price_cents"`
	Description string               `json:"description"`
	HasPhoto    bool                 `json:"has_photo"`
	CreatedAt   time.Time            `json:"created_at"`
	Bookings    []BookedStayResponse `json:"bookings,omitempty"`
}

func NewRoomResponse(r *room.Room) RoomResponse {
	resp := RoomResponse{
		ID:          r.ID,
		RoomType:    r.RoomType,
		PriceCents:  r.PriceCents,
		Description: r.Description,
		HasPhoto:    r.PhotoPath != nil,
		CreatedAt:   r.CreatedAt,
	}
	for _, s := range r.Bookings {
		resp.Bookings = append(resp.Bookings, BookedStayResponse{
			CheckIn:  s.CheckIn.Format(request.DateLayout),
			CheckOut: s.CheckOut.Format(request.DateLayout),
		})
	}
	return resp
}

func newRoomResponses(rooms []*room.Room) []RoomResponse {
	items := make([]RoomResponse, len(rooms))
	for i, r := range rooms {
		items[i] = NewRoomResponse(r)
	}
	return items
}
