package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/db"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/daterange"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
)

// memStore is an in-memory stand-in for the rooms and bookings tables.
// Each room has a one-slot semaphore that plays the part of its row lock.
type memStore struct {
	mu       sync.Mutex
	rooms    map[int64]*room.Room
	locks    map[int64]chan struct{}
	bookings []*Booking
	nextID   int64
}

func newMemStore(roomIDs ...int64) *memStore {
	s := &memStore{rooms: map[int64]*room.Room{}, locks: map[int64]chan struct{}{}}
	for _, id := range roomIDs {
		s.rooms[id] = &room.Room{ID: id, RoomType: "Double"}
		s.locks[id] = make(chan struct{}, 1)
	}
	return s
}

// memTx collects inserts until commit and remembers the locks it holds.
// The embedded Querier is nil: fakes never run SQL.
type memTx struct {
	db.Querier
	pending []*Booking
	held    []chan struct{}
}

type memTxManager struct {
	store *memStore
	// failCommit, if set, makes WithTx roll back with this error after fn succeeds.
	failCommit error
}

func (m *memTxManager) WithTx(ctx context.Context, fn func(q db.Querier) error) error {
	tx := &memTx{}
	defer func() {
		for _, l := range tx.held {
			<-l
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if m.failCommit != nil {
		return m.failCommit
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, b := range tx.pending {
		m.store.nextID++
		b.ID = m.store.nextID
		b.CreatedAt = time.Now()
		cp := *b
		m.store.bookings = append(m.store.bookings, &cp)
	}
	return nil
}

type memRoomLocker struct {
	store *memStore
}

func (l *memRoomLocker) LockForUpdate(ctx context.Context, q db.Querier, id int64) (*room.Room, error) {
	l.store.mu.Lock()
	rm, ok := l.store.rooms[id]
	sem := l.store.locks[id]
	l.store.mu.Unlock()
	if !ok {
		return nil, room.ErrNotFound
	}

	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	tx := q.(*memTx)
	tx.held = append(tx.held, sem)

	cp := *rm
	return &cp, nil
}

type memRepo struct {
	store *memStore
	// createErr, if set, is returned by Create.
	createErr error
}

func (r *memRepo) Create(_ context.Context, q db.Querier, b *Booking) error {
	if r.createErr != nil {
		return r.createErr
	}
	tx := q.(*memTx)
	tx.pending = append(tx.pending, b)
	return nil
}

func (r *memRepo) HasOverlap(_ context.Context, q db.Querier, roomID int64, stay daterange.Range) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	candidates := append([]*Booking(nil), r.store.bookings...)
	candidates = append(candidates, q.(*memTx).pending...)
	for _, b := range candidates {
		if b.RoomID == roomID && b.Stay().Overlaps(stay) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) GetByID(_ context.Context, id int64) (*Booking, error) {
	return r.find(func(b *Booking) bool { return b.ID == id })
}

func (r *memRepo) GetByConfirmationCode(_ context.Context, code string) (*Booking, error) {
	return r.find(func(b *Booking) bool { return b.ConfirmationCode == code })
}

func (r *memRepo) find(match func(*Booking) bool) (*Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, b := range r.store.bookings {
		if match(b) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) List(_ context.Context, filter Filter) ([]*Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*Booking
	for _, b := range r.store.bookings {
		if filter.GuestEmail != "" && b.GuestEmail != filter.GuestEmail {
			continue
		}
		if filter.RoomID != 0 && b.RoomID != filter.RoomID {
			continue
		}
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.Before(out[j].CheckIn) })
	return out, nil
}

func (r *memRepo) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, b := range r.store.bookings {
		if b.ID == id {
			r.store.bookings = append(r.store.bookings[:i], r.store.bookings[i+1:]...)
			return nil
		}
	}
	return nil
}

type fixture struct {
	store *memStore
	repo  *memRepo
	txm   *memTxManager
	lock  *memRoomLocker
	svc   Service
}

func newFixture(timeout time.Duration, roomIDs ...int64) *fixture {
	store := newMemStore(roomIDs...)
	f := &fixture{
		store: store,
		repo:  &memRepo{store: store},
		txm:   &memTxManager{store: store},
		lock:  &memRoomLocker{store: store},
	}
	f.svc = NewService(f.repo, f.lock, f.txm, timeout)
	return f
}
