package booking

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/hotel-booking-backend/internal/db"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/daterange"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
)

type CreateRequest struct {
	UserID        string // booking account, optional
	CheckIn       time.Time
	CheckOut      time.Time
	GuestEmail    string
	GuestFullName string
	NumAdults     int // 0 means one adult
	NumChildren   int
}

type Service interface {
	// Create books roomID for the requested stay and returns the confirmation code.
	Create(ctx context.Context, roomID int64, req CreateRequest) (string, error)
	GetByID(ctx context.Context, id int64) (*Booking, error)
	FindByConfirmationCode(ctx context.Context, code string) (*Booking, error)
	ListAll(ctx context.Context) ([]*Booking, error)
	ListByGuestEmail(ctx context.Context, email string) ([]*Booking, error)
	// ListByUser returns the bookings made by an account, whatever guest they are for.
	ListByUser(ctx context.Context, userID string) ([]*Booking, error)
	ListForRoom(ctx context.Context, roomID int64) ([]*Booking, error)
	// Cancel deletes the booking. Cancelling a missing booking succeeds.
	Cancel(ctx context.Context, id int64) error
}

// RoomLocker takes the exclusive room lock inside a booking transaction.
// room.Repository satisfies it.
type RoomLocker interface {
	LockForUpdate(ctx context.Context, q db.Querier, id int64) (*room.Room, error)
}

type service struct {
	repo    Repository
	rooms   RoomLocker
	tx      db.TxManager
	timeout time.Duration
	newCode func() string
}

// NewService wires the booking workflow. A positive timeout bounds each Create call,
// including the wait for the room lock.
func NewService(repo Repository, rooms RoomLocker, tx db.TxManager, timeout time.Duration) Service {
	return &service{
		repo:    repo,
		rooms:   rooms,
		tx:      tx,
		timeout: timeout,
		newCode: NewConfirmationCode,
	}
}

// NewConfirmationCode returns a 16 character upper-case hex token.
// The bookings table enforces uniqueness; a collision surfaces as a retryable error.
func NewConfirmationCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:16]
}

func (s *service) Create(ctx context.Context, roomID int64, req CreateRequest) (string, error) {
	stay := daterange.New(req.CheckIn, req.CheckOut)
	if !stay.Valid() {
		return "", ErrInvalidDateRange
	}

	email := normalizeEmail(req.GuestEmail)
	if email == "" {
		return "", ErrGuestEmailMissing
	}

	adults := req.NumAdults
	if adults == 0 {
		adults = 1
	}
	if adults < 0 || req.NumChildren < 0 {
		return "", ErrInvalidGuestCount
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	b := &Booking{
		RoomID:        roomID,
		UserID:        req.UserID,
		CheckIn:       stay.CheckIn,
		CheckOut:      stay.CheckOut,
		GuestEmail:    email,
		GuestFullName: strings.TrimSpace(req.GuestFullName),
		NumAdults:     adults,
		NumChildren:   req.NumChildren,
	}

	err := s.tx.WithTx(ctx, func(q db.Querier) error {
		// The lock is held until commit, so no other booking for this room
		// can pass the overlap check below before ours is visible.
		rm, err := s.rooms.LockForUpdate(ctx, q, roomID)
		if err != nil {
			if errors.Is(err, room.ErrNotFound) {
				return ErrRoomNotFound
			}
			return err
		}
		b.RoomType = rm.RoomType

		overlap, err := s.repo.HasOverlap(ctx, q, roomID, stay)
		if err != nil {
			return err
		}
		if overlap {
			return ErrRoomUnavailable
		}

		b.ConfirmationCode = s.newCode()
		return s.repo.Create(ctx, q, b)
	})
	if err != nil {
		if db.IsTransient(err) || db.IsUniqueViolation(err) {
			log.Printf("booking room %d rolled back, retryable: %v", roomID, err)
			return "", apperror.Wrap(err, http.StatusServiceUnavailable, retryMessage)
		}
		return "", err
	}

	return b.ConfirmationCode, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) FindByConfirmationCode(ctx context.Context, code string) (*Booking, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrNotFound
	}
	return s.repo.GetByConfirmationCode(ctx, code)
}

func (s *service) ListAll(ctx context.Context) ([]*Booking, error) {
	return s.repo.List(ctx, Filter{})
}

func (s *service) ListByGuestEmail(ctx context.Context, email string) ([]*Booking, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	return s.repo.List(ctx, Filter{GuestEmail: email})
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]*Booking, error) {
	if userID == "" {
		return nil, nil
	}
	return s.repo.List(ctx, Filter{UserID: userID})
}

func (s *service) ListForRoom(ctx context.Context, roomID int64) ([]*Booking, error) {
	if roomID <= 0 {
		return nil, nil
	}
	return s.repo.List(ctx, Filter{RoomID: roomID})
}

func (s *service) Cancel(ctx context.Context, id int64) error {
	if id <= 0 {
		return nil
	}
	return s.repo.Delete(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
