package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/hotel-booking-backend/internal/user"
)

type Handler struct {
	service     booking.Service
	userService user.Service
}

func NewHandler(service booking.Service, userService user.Service) *Handler {
	return &Handler{
		service:     service,
		userService: userService,
	}
}

// checkIsAdmin reports whether the current user holds the admin role.
func (h *Handler) checkIsAdmin(c *gin.Context) bool {
	if auth.IsAdmin(c) {
		return true
	}
	userID := auth.GetUserID(c)
	if userID == "" {
		return false
	}
	u, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		return false
	}
	return u.IsAdmin
}

// Create books a room. The guest email defaults to the caller's account email.
func (h *Handler) Create(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	// Formats were checked by the binding tags.
	checkIn, _ := request.ParseDate(body.CheckIn)
	checkOut, _ := request.ParseDate(body.CheckOut)

	guestEmail := body.GuestEmail
	if guestEmail == "" {
		guestEmail = auth.GetUserEmail(c)
	}

	code, err := h.service.Create(c.Request.Context(), uri.ID, booking.CreateRequest{
		UserID:        auth.GetUserID(c),
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		GuestEmail:    guestEmail,
		GuestFullName: body.GuestFullName,
		NumAdults:     body.NumAdults,
		NumChildren:   body.NumChildren,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateBookingResponse{ConfirmationCode: code})
}

// GetByConfirmationCode is public: the code itself is the credential.
func (h *Handler) GetByConfirmationCode(c *gin.Context) {
	var uri ByCodeRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid confirmation code"})
		return
	}

	b, err := h.service.FindByConfirmationCode(c.Request.Context(), uri.Code)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// ListByGuestEmail is limited to the caller's own email unless the caller is an admin.
func (h *Handler) ListByGuestEmail(c *gin.Context) {
	var uri ByGuestEmailRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}

	if !strings.EqualFold(uri.Email, auth.GetUserEmail(c)) && !h.checkIsAdmin(c) {
		response.Error(c, booking.ErrPermissionDenied)
		return
	}

	bookings, err := h.service.ListByGuestEmail(c.Request.Context(), uri.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewListResponse(newBookingResponses(bookings)))
}

// ListMine lists the bookings the caller made, for any guest.
func (h *Handler) ListMine(c *gin.Context) {
	bookings, err := h.service.ListByUser(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewListResponse(newBookingResponses(bookings)))
}

func (h *Handler) ListAll(c *gin.Context) {
	bookings, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewListResponse(newBookingResponses(bookings)))
}

func (h *Handler) ListForRoom(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	bookings, err := h.service.ListForRoom(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewListResponse(newBookingResponses(bookings)))
}

// Cancel answers 204 whether or not the booking still exists.
// Only the booking account, the guest, or an admin may cancel an existing booking.
func (h *Handler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()

	b, err := h.service.GetByID(ctx, uri.ID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			c.Status(http.StatusNoContent)
			return
		}
		response.Error(c, err)
		return
	}

	if !b.IsManagedBy(auth.GetUserID(c), auth.GetUserEmail(c)) && !h.checkIsAdmin(c) {
		response.Error(c, booking.ErrPermissionDenied)
		return
	}

	if err := h.service.Cancel(ctx, uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
