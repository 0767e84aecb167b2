package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/hotel-booking-backend/internal/db"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/daterange"
)

type Repository interface {
	// Create inserts b on q and fills ID and CreatedAt.
	Create(ctx context.Context, q db.Querier, b *Booking) error

	// HasOverlap checks on q whether any booking of the room overlaps stay.
	// Run it inside the transaction that holds the room lock.
	HasOverlap(ctx context.Context, q db.Querier, roomID int64, stay daterange.Range) (bool, error)

	GetByID(ctx context.Context, id int64) (*Booking, error)
	GetByConfirmationCode(ctx context.Context, code string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, error)

	// Delete removes the booking; a missing id is not an error.
	Delete(ctx context.Context, id int64) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func selectBookings() squirrel.SelectBuilder {
	return psql.Select(
		"b.id", "b.room_id", "r.room_type", "COALESCE(b.user_id::text, '')", "b.check_in", "b.check_out",
		"b.guest_email", "b.guest_full_name", "b.num_adults", "b.num_children",
		"b.confirmation_code", "b.created_at",
	).
		From("public.bookings b").
		Join("public.rooms r ON b.room_id = r.id")
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	if err := row.Scan(
		&b.ID, &b.RoomID, &b.RoomType, &b.UserID, &b.CheckIn, &b.CheckOut,
		&b.GuestEmail, &b.GuestFullName, &b.NumAdults, &b.NumChildren,
		&b.ConfirmationCode, &b.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) Create(ctx context.Context, q db.Querier, b *Booking) error {
	query, args, err := psql.Insert("public.bookings").
		Columns(
			"room_id", "user_id", "check_in", "check_out", "guest_email", "guest_full_name",
			"num_adults", "num_children", "confirmation_code",
		).
		Values(
			b.RoomID, nullableUUID(b.UserID), b.CheckIn, b.CheckOut, b.GuestEmail, b.GuestFullName,
			b.NumAdults, b.NumChildren, b.ConfirmationCode,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := q.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt); err != nil {
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) HasOverlap(ctx context.Context, q db.Querier, roomID int64, stay daterange.Range) (bool, error) {
	sql, args, err := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"room_id": roomID}).
		Where(daterange.OverlapCond("check_in", "check_out", stay)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build check overlap query failed: %w", err)
	}

	var exists bool
	if err := q.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*Booking, error) {
	query, args, err := selectBookings().Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"b.id": id})
}

func (r *pgxRepository) GetByConfirmationCode(ctx context.Context, code string) (*Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"b.confirmation_code": code})
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, error) {
	query := selectBookings()

	if filter.GuestEmail != "" {
		query = query.Where(squirrel.Eq{"b.guest_email": filter.GuestEmail})
	}
	if filter.RoomID != 0 {
		query = query.Where(squirrel.Eq{"b.room_id": filter.RoomID})
	}
	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"b.user_id": filter.UserID})
	}

	sql, args, err := query.OrderBy("b.check_in ASC", "b.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings failed: %w", err)
	}

	return bookings, nil
}

// nullableUUID stores an empty id as NULL.
func nullableUUID(id string) any {
	if id == "" {
		return nil
	}
	return id
}

func (r *pgxRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete booking query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete booking failed: %w", err)
	}
	return nil
}
