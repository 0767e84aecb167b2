package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-booking-backend/internal/user"
)

type stubBookingService struct {
	createErr error
	lastReq   booking.CreateRequest
	bookings  map[int64]*booking.Booking
	cancelled []int64
}

func (s *stubBookingService) Create(_ context.Context, _ int64, req booking.CreateRequest) (string, error) {
	s.lastReq = req
	if s.createErr != nil {
		return "", s.createErr
	}
	return "ABCDEF0123456789", nil
}

func (s *stubBookingService) GetByID(_ context.Context, id int64) (*booking.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return b, nil
}

func (s *stubBookingService) FindByConfirmationCode(_ context.Context, code string) (*booking.Booking, error) {
	for _, b := range s.bookings {
		if b.ConfirmationCode == code {
			return b, nil
		}
	}
	return nil, booking.ErrNotFound
}

func (s *stubBookingService) ListAll(context.Context) ([]*booking.Booking, error) {
	var out []*booking.Booking
	for _, b := range s.bookings {
		out = append(out, b)
	}
	return out, nil
}

func (s *stubBookingService) ListByGuestEmail(_ context.Context, email string) ([]*booking.Booking, error) {
	var out []*booking.Booking
	for _, b := range s.bookings {
		if strings.EqualFold(b.GuestEmail, email) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubBookingService) ListByUser(_ context.Context, userID string) ([]*booking.Booking, error) {
	var out []*booking.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubBookingService) ListForRoom(context.Context, int64) ([]*booking.Booking, error) {
	return nil, nil
}

func (s *stubBookingService) Cancel(_ context.Context, id int64) error {
	s.cancelled = append(s.cancelled, id)
	return nil
}

type stubUserService struct {
	user.Service
	users map[string]*user.User
}

func (s *stubUserService) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

type testServer struct {
	router   *gin.Engine
	jwt      *auth.JWTManager
	bookings *stubBookingService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &stubBookingService{bookings: map[int64]*booking.Booking{
		7: {
			ID: 7, RoomID: 1, RoomType: "Double",
			CheckIn:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			CheckOut:   time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			GuestEmail: "ada@hotel.test", NumAdults: 2, NumChildren: 1,
			ConfirmationCode: "C0DE",
		},
		8: {
			ID: 8, RoomID: 2, RoomType: "Family", UserID: "bob",
			CheckIn:    time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			CheckOut:   time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
			GuestEmail: "grandma@hotel.test", NumAdults: 1,
			ConfirmationCode: "F4M1LY",
		},
	}}
	users := &stubUserService{users: map[string]*user.User{
		"ada":   {ID: "ada", Email: "ada@hotel.test"},
		"bob":   {ID: "bob", Email: "bob@hotel.test"},
		"admin": {ID: "admin", Email: "admin@hotel.test", IsAdmin: true},
	}}

	jwtManager := auth.NewJWTManager("secret", time.Minute)
	adminOnly := func(c *gin.Context) {
		u, err := users.GetByID(c.Request.Context(), auth.GetUserID(c))
		if err != nil || !u.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		auth.SetAdmin(c)
		c.Next()
	}

	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(svc, users), auth.AuthRequired(jwtManager), adminOnly)

	return &testServer{router: r, jwt: jwtManager, bookings: svc}
}

func (s *testServer) do(t *testing.T, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := s.jwt.GenerateAccessToken(userID, userID+"@hotel.test")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestCreateBooking(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/v1/bookings/rooms/1", "ada",
		`{"check_in":"2024-03-01","check_out":"2024-03-05","num_adults":2}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp CreateBookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ABCDEF0123456789", resp.ConfirmationCode)

	// Guest email falls back to the account email.
	assert.Equal(t, "ada@hotel.test", s.bookings.lastReq.GuestEmail)
	assert.Equal(t, "ada", s.bookings.lastReq.UserID)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), s.bookings.lastReq.CheckOut)
}

func TestCreateBookingErrors(t *testing.T) {
	tests := []struct {
		name      string
		userID    string
		path      string
		body      string
		createErr error
		want      int
	}{
		{"unauthenticated", "", "/v1/bookings/rooms/1", `{"check_in":"2024-03-01","check_out":"2024-03-05"}`, nil, http.StatusUnauthorized},
		{"bad room id", "ada", "/v1/bookings/rooms/x", `{"check_in":"2024-03-01","check_out":"2024-03-05"}`, nil, http.StatusBadRequest},
		{"bad date format", "ada", "/v1/bookings/rooms/1", `{"check_in":"03/01/2024","check_out":"2024-03-05"}`, nil, http.StatusBadRequest},
		{"date order", "ada", "/v1/bookings/rooms/1", `{"check_in":"2024-03-05","check_out":"2024-03-05"}`, booking.ErrInvalidDateRange, http.StatusBadRequest},
		{"unavailable", "ada", "/v1/bookings/rooms/1", `{"check_in":"2024-03-01","check_out":"2024-03-05"}`, booking.ErrRoomUnavailable, http.StatusBadRequest},
		{"missing room", "ada", "/v1/bookings/rooms/9", `{"check_in":"2024-03-01","check_out":"2024-03-05"}`, booking.ErrRoomNotFound, http.StatusNotFound},
		{"lock timeout", "ada", "/v1/bookings/rooms/1", `{"check_in":"2024-03-01","check_out":"2024-03-05"}`,
			apperror.Wrap(context.DeadlineExceeded, http.StatusServiceUnavailable, "retry"), http.StatusServiceUnavailable},
		{"unexpected", "ada", "/v1/bookings/rooms/1", `{"check_in":"2024-03-01","check_out":"2024-03-05"}`, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.bookings.createErr = tt.createErr

			w := s.do(t, http.MethodPost, tt.path, tt.userID, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			if tt.want == http.StatusServiceUnavailable {
				assert.Equal(t, "1", w.Header().Get("Retry-After"))
			}
		})
	}
}

func TestGetByConfirmationCode(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/v1/bookings/confirmation/C0DE", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "Double", resp.Room.RoomType)
	assert.Equal(t, "2024-03-01", resp.CheckIn)
	assert.Equal(t, 4, resp.Nights)
	assert.Equal(t, 3, resp.TotalGuests)

	w = s.do(t, http.MethodGet, "/v1/bookings/confirmation/MISSING", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListByGuestEmailAccess(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/bookings/guests/ada@hotel.test", "ada", "").Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/v1/bookings/guests/ada@hotel.test", "bob", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/bookings/guests/ada@hotel.test", "admin", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/bookings/guests/not-an-email", "ada", "").Code)
}

func TestAdminListings(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/v1/bookings", "ada", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/bookings", "admin", "").Code)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/v1/rooms/1/bookings", "ada", "").Code)
	w := s.do(t, http.MethodGet, "/v1/rooms/1/bookings", "admin", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())
}

func TestCancel(t *testing.T) {
	s := newTestServer(t)

	// Someone else's booking.
	w := s.do(t, http.MethodDelete, "/v1/bookings/7", "bob", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, s.bookings.cancelled)

	w = s.do(t, http.MethodDelete, "/v1/bookings/7", "ada", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []int64{7}, s.bookings.cancelled)

	// Missing bookings cancel successfully.
	w = s.do(t, http.MethodDelete, "/v1/bookings/999", "bob", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestBookerManagesBookingForAnotherGuest(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/v1/bookings/mine", "bob", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Items []BookingResponse `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "grandma@hotel.test", resp.Items[0].GuestEmail)

	w = s.do(t, http.MethodGet, "/v1/bookings/mine", "ada", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())

	// Neither the booker nor the guest: rejected.
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/v1/bookings/8", "ada", "").Code)

	w = s.do(t, http.MethodDelete, "/v1/bookings/8", "bob", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []int64{8}, s.bookings.cancelled)
}
