package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	"github.com/ips-ux/maintenance-manager/internal/models"
)

/* ───────────── query options ───────────── */

// ActivityQuery is the closed set of filters the activity feed supports.
type ActivityQuery struct {
	EntityType string
	EntityID   *uuid.UUID
	UserID     *uuid.UUID
	Action     models.ActionType
	Since      *time.Time
	Until      *time.Time

	Limit int // defaults to 50
}

/* ───────────── public interface ───────────── */

// Activities are append-only. There is no update path; the only delete
// path is age-based retention pruning.
type ActivityRepository interface {
	Create(ctx context.Context, a *models.Activity) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Activity, error)
	List(ctx context.Context, q ActivityQuery) ([]*models.Activity, error)

	// Delete removes one record by id; the admin escape hatch.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteOlderThan removes at most limit records with a timestamp
	// before cutoff, oldest first, and reports how many went away.
	DeleteOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

type activityRepo struct {
	db DB
}

func NewActivityRepository(db DB) ActivityRepository {
	return &activityRepo{db: db}
}

/* ---------- writes ---------- */

func (r *activityRepo) Create(ctx context.Context, a *models.Activity) error {
	md, err := rawMessageJSONB(a.Metadata)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO activities (
			id, user_id, user_name, user_role,
			action_type, action_text,
			entity_type, entity_id, entity_name,
			metadata, timestamp
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, a.ID, a.UserID, a.UserName, a.UserRole,
		a.Action, a.ActionText,
		a.EntityType, a.EntityID, a.EntityName,
		md, a.Timestamp)
	return err
}

func (r *activityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM activities WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *activityRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM activities
		WHERE id IN (
			SELECT id FROM activities
			WHERE timestamp < $1
			ORDER BY timestamp ASC
			LIMIT $2
		)
	`, cutoff, limit)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

/* ---------- reads ---------- */

func (r *activityRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	row := r.db.QueryRow(ctx, baseSelectActivity()+" WHERE id=$1", id)
	return r.scanActivity(row)
}

func (r *activityRepo) List(ctx context.Context, q ActivityQuery) ([]*models.Activity, error) {
	sql := baseSelectActivity()
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

	if q.EntityType != "" {
		appendCond("entity_type=", q.EntityType)
	}
	if q.EntityID != nil {
		appendCond("entity_id=", *q.EntityID)
	}
	if q.UserID != nil {
		appendCond("user_id=", *q.UserID)
	}
	if q.Action != "" {
		appendCond("action_type=", q.Action)
	}
	if q.Since != nil {
		appendCond("timestamp>=", *q.Since)
	}
	if q.Until != nil {
		appendCond("timestamp<=", *q.Until)
	}

	sql += where + " ORDER BY timestamp DESC"
	sql += limitClause(&args, q.Limit, 50)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Activity
	for rows.Next() {
		a, err := r.scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

/* ---------- internals ---------- */

func rawMessageJSONB(m *json.RawMessage) (pgtype.JSONB, error) {
	if m == nil {
		return pgtype.JSONB{Status: pgtype.Null}, nil
	}
	return pgtype.JSONB{Bytes: *m, Status: pgtype.Present}, nil
}

func baseSelectActivity() string {
	return `
		SELECT id, user_id, user_name, user_role,
		action_type, action_text,
		entity_type, entity_id, entity_name,
		metadata, timestamp
		FROM activities`
}

func (r *activityRepo) scanActivity(row pgx.Row) (*models.Activity, error) {
	var a models.Activity
	var md pgtype.JSONB
	if err := row.Scan(
		&a.ID, &a.UserID, &a.UserName, &a.UserRole,
		&a.Action, &a.ActionText,
		&a.EntityType, &a.EntityID, &a.EntityName,
		&md, &a.Timestamp,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if md.Status == pgtype.Present {
		raw := json.RawMessage(md.Bytes)
		a.Metadata = &raw
	}
	return &a, nil
}
