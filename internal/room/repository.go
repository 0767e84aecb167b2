package room

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/hotel-booking-backend/internal/db"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/daterange"
)

type Repository interface {
	Create(ctx context.Context, room *Room) error
	GetByID(ctx context.Context, id int64) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	Update(ctx context.Context, room *Room) error
	Delete(ctx context.Context, id int64) error
	UpdatePhoto(ctx context.Context, id int64, photoPath, thumbnailPath *string) error

	ListDistinctRoomTypes(ctx context.Context) ([]string, error)
	ListBookedStays(ctx context.Context, roomID int64) ([]BookedStay, error)

	// LockForUpdate reads the room with SELECT ... FOR UPDATE on q, which must be
	// a transaction. Other lockers of the same room block until it ends.
	LockForUpdate(ctx context.Context, q db.Querier, id int64) (*Room, error)

	// FindAvailable returns rooms whose type contains roomType (case-sensitive)
	// and that have no booking overlapping stay.
	FindAvailable(ctx context.Context, stay daterange.Range, roomType string) ([]*Room, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var roomColumns = []string{
	"r.id", "r.room_type", "r.price_cents", "r.description",
	"r.photo_path", "r.thumbnail_path", "r.created_at",
}

func scanRoom(row pgx.Row, extra ...any) (*Room, error) {
	var rm Room
	dest := append([]any{
		&rm.ID, &rm.RoomType, &rm.PriceCents, &rm.Description,
		&rm.PhotoPath, &rm.ThumbnailPath, &rm.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &rm, nil
}

func collectRooms(rows pgx.Rows) ([]*Room, error) {
	defer rows.Close()

	var rooms []*Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room failed: %w", err)
		}
		rooms = append(rooms, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms failed: %w", err)
	}
	return rooms, nil
}

func (r *pgxRepository) Create(ctx context.Context, rm *Room) error {
	query, args, err := psql.Insert("public.rooms").
		Columns("room_type", "price_cents", "description").
		Values(rm.RoomType, rm.PriceCents, rm.Description).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create room query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&rm.ID, &rm.CreatedAt); err != nil {
		return fmt.Errorf("create room failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) getByID(ctx context.Context, q db.Querier, id int64, forUpdate bool) (*Room, error) {
	builder := psql.Select(roomColumns...).
		From("public.rooms r").
		Where(squirrel.Eq{"r.id": id})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get room query failed: %w", err)
	}

	rm, err := scanRoom(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room failed: %w", err)
	}
	return rm, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Room, error) {
	return r.getByID(ctx, r.pool, id, false)
}

func (r *pgxRepository) LockForUpdate(ctx context.Context, q db.Querier, id int64) (*Room, error) {
	rm, err := r.getByID(ctx, q, id, true)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lock room %d: %w", id, err)
	}
	return rm, err
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	query := psql.Select(append(roomColumns, "count(*) OVER() AS total_count")...).
		From("public.rooms r")

	if filter.RoomType != "" {
		query = query.Where(squirrel.Eq{"r.room_type": filter.RoomType})
	}

	// Sorting
	orderBy := "r.id"
	switch filter.SortBy {
	case "room_type", "price_cents", "created_at":
		orderBy = "r." + filter.SortBy
	}
	orderDir := "ASC"
	if strings.EqualFold(filter.SortOrder, "DESC") {
		orderDir = "DESC"
	}
	query = query.OrderBy(orderBy + " " + orderDir)

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list rooms query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list rooms failed: %w", err)
	}
	defer rows.Close()

	var rooms []*Room
	var total int
	for rows.Next() {
		rm, err := scanRoom(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan room failed: %w", err)
		}
		rooms = append(rooms, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate rooms failed: %w", err)
	}

	return rooms, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, rm *Room) error {
	query, args, err := psql.Update("public.rooms").
		Set("room_type", rm.RoomType).
		Set("price_cents", rm.PriceCents).
		Set("description", rm.Description).
		Where(squirrel.Eq{"id": rm.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update room query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update room failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) UpdatePhoto(ctx context.Context, id int64, photoPath, thumbnailPath *string) error {
	query, args, err := psql.Update("public.rooms").
		Set("photo_path", photoPath).
		Set("thumbnail_path", thumbnailPath).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update room photo query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update room photo failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete also removes the room's bookings (ON DELETE CASCADE).
func (r *pgxRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("public.rooms").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete room query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete room failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ListDistinctRoomTypes(ctx context.Context) ([]string, error) {
	query, args, err := psql.Select("room_type").Distinct().
		From("public.rooms").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build room types query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list room types failed: %w", err)
	}

	types, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan room types failed: %w", err)
	}
	return types, nil
}

func (r *pgxRepository) ListBookedStays(ctx context.Context, roomID int64) ([]BookedStay, error) {
	query, args, err := psql.Select("check_in", "check_out").
		From("public.bookings").
		Where(squirrel.Eq{"room_id": roomID}).
		OrderBy("check_in ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build booked stays query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list booked stays failed: %w", err)
	}

	stays, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (BookedStay, error) {
		var s BookedStay
		err := row.Scan(&s.CheckIn, &s.CheckOut)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan booked stays failed: %w", err)
	}
	return stays, nil
}

func (r *pgxRepository) FindAvailable(ctx context.Context, stay daterange.Range, roomType string) ([]*Room, error) {
	// Plain "?" placeholders: the outer builder renumbers them.
	conflicts, conflictArgs, err := squirrel.Select("1").
		From("public.bookings b").
		Where("b.room_id = r.id").
		Where(daterange.OverlapCond("b.check_in", "b.check_out", stay)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build booking conflict subquery failed: %w", err)
	}

	query, args, err := psql.Select(roomColumns...).
		From("public.rooms r").
		Where(squirrel.Like{"r.room_type": "%" + escapeLike(roomType) + "%"}).
		Where("NOT EXISTS ("+conflicts+")", conflictArgs...).
		OrderBy("r.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build available rooms query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find available rooms failed: %w", err)
	}
	return collectRooms(rows)
}

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
