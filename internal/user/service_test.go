package user

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
)

type memRepo struct {
	mu      sync.Mutex
	byEmail map[string]*User
}

func newMemRepo() *memRepo {
	return &memRepo{byEmail: map[string]*User{}}
}

func (r *memRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (r *memRepo) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return ErrEmailAlreadyUsed
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	cp := *u
	r.byEmail[u.Email] = &cp
	return nil
}

func (r *memRepo) SetAdmin(_ context.Context, email string, isAdmin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok {
		return ErrNotFound
	}
	u.IsAdmin = isAdmin
	return nil
}

func newTestService() (Service, *memRepo) {
	repo := newMemRepo()
	return NewService(repo, auth.NewBcryptPasswordHasherWithCost(4)), repo
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	u, err := svc.Register(ctx, "  Guest@Hotel.Test ", "long-enough", " Ada ")
	require.NoError(t, err)
	assert.Equal(t, "guest@hotel.test", u.Email)
	require.NotNil(t, u.DisplayName)
	assert.Equal(t, "Ada", *u.DisplayName)
	assert.NotEqual(t, "long-enough", u.PasswordHash)

	logged, err := svc.Login(ctx, "GUEST@hotel.test", "long-enough")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	_, err = svc.Login(ctx, "guest@hotel.test", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@hotel.test", "long-enough")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.Register(ctx, "   ", "long-enough", "")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.Register(ctx, "a@b.c", "short", "")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = svc.Register(ctx, "a@b.c", "long-enough", "")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "A@B.C", "long-enough", "")
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)
}

func TestEnsureAdminCreatesMissingAccount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	u, err := svc.EnsureAdmin(ctx, " Manager@Hotel.test", "admin-secret")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
	assert.Equal(t, "manager@hotel.test", u.Email)

	logged, err := svc.Login(ctx, "manager@hotel.test", "admin-secret")
	require.NoError(t, err)
	assert.True(t, logged.IsAdmin)

	// Running again at the next startup is a no-op.
	_, err = svc.EnsureAdmin(ctx, "manager@hotel.test", "admin-secret")
	assert.NoError(t, err)
}

func TestEnsureAdminPromotesOwnerWithMatchingPassword(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	_, err := svc.Register(ctx, "manager@hotel.test", "admin-secret", "")
	require.NoError(t, err)

	_, err = svc.EnsureAdmin(ctx, "manager@hotel.test", "admin-secret")
	require.NoError(t, err)
	u, err := repo.GetByEmail(ctx, "manager@hotel.test")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
}

func TestEnsureAdminRejectsSelfRegisteredAddress(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	// Someone registers the admin address before the operator does.
	_, err := svc.Register(ctx, "manager@hotel.test", "attacker-pass", "")
	require.NoError(t, err)

	_, err = svc.EnsureAdmin(ctx, "manager@hotel.test", "admin-secret")
	assert.ErrorIs(t, err, ErrAdminClaimRejected)

	u, err := repo.GetByEmail(ctx, "manager@hotel.test")
	require.NoError(t, err)
	assert.False(t, u.IsAdmin)
}

func TestEnsureAdminValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.EnsureAdmin(ctx, " ", "admin-secret")
	assert.ErrorIs(t, err, ErrEmailRequired)
	_, err = svc.EnsureAdmin(ctx, "manager@hotel.test", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}
