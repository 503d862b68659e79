package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/ips-ux/maintenance-manager/internal/models"
)

/* ───────────── query options ───────────── */

// UnitQuery is the closed set of filters the unit list endpoint supports.
// Zero values mean "no filter".
type UnitQuery struct {
	Status   models.UnitStatusType
	IsVacant *bool
	Building string

	OrderBy string // one of unitOrderColumns; defaults to unit_number
	Desc    bool
	Limit   int // defaults to 200
}

var unitOrderColumns = map[string]string{
	"unit_number":  "unit_number",
	"status":       "status",
	"vacant_since": "vacant_since",
	"days_vacant":  "days_vacant",
	"updated_at":   "updated_at",
}

/* ───────────── public interface ───────────── */

type UnitRepository interface {
	Create(ctx context.Context, u *models.Unit) error
	CreateMany(ctx context.Context, list []models.Unit) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	GetByUnitNumber(ctx context.Context, unitNumber string) (*models.Unit, error)
	List(ctx context.Context, q UnitQuery) ([]*models.Unit, error)

	Update(ctx context.Context, u *models.Unit) error
	UpdateIfVersion(ctx context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error

	MarkVacant(ctx context.Context, id uuid.UUID, since time.Time) error
	MarkOccupied(ctx context.Context, id uuid.UUID) error

	Delete(ctx context.Context, id uuid.UUID) error
}

/* ───────────── implementation ───────────── */

type unitRepo struct {
	*BaseVersionedRepo[*models.Unit]
	db DB
}

func NewUnitRepository(db DB) UnitRepository {
	r := &unitRepo{db: db}
	selectStmt := baseSelectUnit() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanUnit)
	return r
}

/* ---------- create ---------- */

func (r *unitRepo) Create(ctx context.Context, u *models.Unit) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO units (
			id, unit_number, bedrooms, bathrooms, square_feet, building, floor,
			status, is_vacant, vacant_since, days_vacant,
			current_turn_id, last_turn_completed_date, notes,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14, NOW(), NOW(), 1)
	`, u.ID, u.UnitNumber, u.Bedrooms, u.Bathrooms, u.SquareFeet, u.Building, u.Floor,
		u.Status, u.IsVacant, u.VacantSince, u.DaysVacant,
		u.CurrentTurnID, u.LastTurnCompletedDate, u.Notes)
	return err
}

func (r *unitRepo) CreateMany(ctx context.Context, list []models.Unit) error {
	for i := range list {
		if err := r.Create(ctx, &list[i]); err != nil {
			return err
		}
	}
	return nil
}

/* ---------- reads ---------- */

func (r *unitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *unitRepo) GetByUnitNumber(ctx context.Context, unitNumber string) (*models.Unit, error) {
	row := r.db.QueryRow(ctx, baseSelectUnit()+" WHERE unit_number=$1 LIMIT 1", unitNumber)
	return r.scanUnit(row)
}

func (r *unitRepo) List(ctx context.Context, q UnitQuery) ([]*models.Unit, error) {
	sql := baseSelectUnit()
	var args []any
	where := ""

	appendCond := func(cond string, val any) {
		args = append(args, val)
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += cond + placeholder(len(args))
	}

	if q.Status != "" {
		appendCond("status=", q.Status)
	}
	if q.IsVacant != nil {
		appendCond("is_vacant=", *q.IsVacant)
	}
	if q.Building != "" {
		appendCond("building=", q.Building)
	}

	sql += where + orderClause(unitOrderColumns, q.OrderBy, "unit_number", q.Desc)
	sql += limitClause(&args, q.Limit, 200)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanUnits(rows)
}

/* ---------- update / delete ---------- */

func (r *unitRepo) Update(ctx context.Context, u *models.Unit) error {
	_, err := r.update(ctx, u, false, 0)
	return err
}

func (r *unitRepo) UpdateIfVersion(ctx context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, u, true, expected)
}

func (r *unitRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *unitRepo) update(ctx context.Context, u *models.Unit, check bool, expected int64) (pgconn.CommandTag, error) {
	sql := `
		UPDATE units
		SET unit_number=$1, bedrooms=$2, bathrooms=$3, square_feet=$4,
			building=$5, floor=$6, status=$7, is_vacant=$8, vacant_since=$9,
			days_vacant=$10, current_turn_id=$11, last_turn_completed_date=$12,
			notes=$13, updated_at=NOW()
	`
	args := []any{
		u.UnitNumber, u.Bedrooms, u.Bathrooms, u.SquareFeet,
		u.Building, u.Floor, u.Status, u.IsVacant, u.VacantSince,
		u.DaysVacant, u.CurrentTurnID, u.LastTurnCompletedDate, u.Notes,
	}
	if check {
		sql += `, row_version=row_version+1 WHERE id=$14 AND row_version=$15`
		args = append(args, u.ID, expected)
	} else {
		sql += ` WHERE id=$14`
		args = append(args, u.ID)
	}
	return r.db.Exec(ctx, sql, args...)
}

// MarkVacant is a single field-set write, not a read-modify-write.
func (r *unitRepo) MarkVacant(ctx context.Context, id uuid.UUID, since time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE units
		SET is_vacant=true, vacant_since=$2, days_vacant=0,
			status=$3, current_turn_id=NULL, updated_at=NOW()
		WHERE id=$1
	`, id, since, models.UnitStatusReady)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *unitRepo) MarkOccupied(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE units
		SET is_vacant=false, vacant_since=NULL, days_vacant=0,
			status=$2, current_turn_id=NULL, updated_at=NOW()
		WHERE id=$1
	`, id, models.UnitStatusOccupied)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *unitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM units WHERE id=$1`, id)
	return err
}

/* ---------- internals ---------- */

func baseSelectUnit() string {
	return `
		SELECT id, unit_number, bedrooms, bathrooms, square_feet, building, floor,
		status, is_vacant, vacant_since, days_vacant,
		current_turn_id, last_turn_completed_date, notes,
		created_at, updated_at, row_version
		FROM units`
}

func (r *unitRepo) scanUnit(row pgx.Row) (*models.Unit, error) {
	var u models.Unit
	if err := row.Scan(
		&u.ID, &u.UnitNumber, &u.Bedrooms, &u.Bathrooms, &u.SquareFeet, &u.Building, &u.Floor,
		&u.Status, &u.IsVacant, &u.VacantSince, &u.DaysVacant,
		&u.CurrentTurnID, &u.LastTurnCompletedDate, &u.Notes,
		&u.CreatedAt, &u.UpdatedAt, &u.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *unitRepo) scanUnits(rows pgx.Rows) ([]*models.Unit, error) {
	var out []*models.Unit
	for rows.Next() {
		u, err := r.scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
