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

type UserQuery struct {
	Role       models.RoleType
	ActiveOnly bool

	Limit int // defaults to 100
}

/* ───────────── public interface ───────────── */

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, q UserQuery) ([]*models.User, error)
	// Search matches the term case-insensitively against display name
	// and email.
	Search(ctx context.Context, term string, limit int) ([]*models.User, error)

	Update(ctx context.Context, u *models.User) error
	SetRole(ctx context.Context, id uuid.UUID, role models.RoleType) error
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	// RecordTurnCompletion bumps the technician's completed-turn counter
	// and folds the latest duration into the running average.
	RecordTurnCompletion(ctx context.Context, id uuid.UUID, completionDays float64) error

	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepo struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &userRepo{db: db}
}

/* ---------- writes ---------- */

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	ns, err := rawMessageJSONB(u.NotificationSettings)
	if err != nil {
		return err
	}
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO users (
			id, email, display_name, phone, role, active,
			permissions, turns_completed, avg_completion_time,
			notification_settings, last_login_at, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, NOW(), NOW())
	`, u.ID, u.Email, u.DisplayName, u.Phone, u.Role, u.Active,
		perms, u.TurnsCompleted, u.AvgCompletionTime,
		ns, u.LastLoginAt)
	return err
}

func (r *userRepo) Update(ctx context.Context, u *models.User) error {
	ns, err := rawMessageJSONB(u.NotificationSettings)
	if err != nil {
		return err
	}
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET email=$2, display_name=$3, phone=$4, role=$5, active=$6,
			permissions=$7, notification_settings=$8, updated_at=NOW()
		WHERE id=$1
	`, u.ID, u.Email, u.DisplayName, u.Phone, u.Role, u.Active,
		perms, ns)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepo) SetRole(ctx context.Context, id uuid.UUID, role models.RoleType) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET role=$2, updated_at=NOW() WHERE id=$1
	`, id, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepo) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET last_login_at=$2, updated_at=NOW() WHERE id=$1
	`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepo) RecordTurnCompletion(ctx context.Context, id uuid.UUID, completionDays float64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET avg_completion_time =
				(avg_completion_time * turns_completed + $2) / (turns_completed + 1),
			turns_completed = turns_completed + 1,
			updated_at = NOW()
		WHERE id=$1
	`, id, completionDays)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	return err
}

/* ---------- reads ---------- */

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := r.db.QueryRow(ctx, baseSelectUser()+" WHERE id=$1", id)
	return r.scanUser(row)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRow(ctx, baseSelectUser()+" WHERE lower(email)=lower($1)", email)
	return r.scanUser(row)
}

func (r *userRepo) List(ctx context.Context, q UserQuery) ([]*models.User, error) {
	sql := baseSelectUser()
	var args []any
	where := ""

	appendCond := func(cond string) {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += cond
	}

	if q.Role != "" {
		args = append(args, q.Role)
		appendCond("role=" + placeholder(len(args)))
	}
	if q.ActiveOnly {
		appendCond("active=true")
	}

	sql += where + " ORDER BY display_name ASC"
	sql += limitClause(&args, q.Limit, 100)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanUsers(rows)
}

func (r *userRepo) Search(ctx context.Context, term string, limit int) ([]*models.User, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, baseSelectUser()+`
		WHERE display_name ILIKE '%' || $1 || '%'
		   OR email ILIKE '%' || $1 || '%'
		ORDER BY display_name ASC
		LIMIT $2
	`, term, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanUsers(rows)
}

/* ---------- internals ---------- */

func baseSelectUser() string {
	return `
		SELECT id, email, display_name, phone, role, active,
		permissions, turns_completed, avg_completion_time,
		notification_settings, last_login_at, created_at, updated_at
		FROM users`
}

func (r *userRepo) scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var ns pgtype.JSONB
	if err := row.Scan(
		&u.ID, &u.Email, &u.DisplayName, &u.Phone, &u.Role, &u.Active,
		&u.Permissions, &u.TurnsCompleted, &u.AvgCompletionTime,
		&ns, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if ns.Status == pgtype.Present {
		raw := json.RawMessage(ns.Bytes)
		u.NotificationSettings = &raw
	}
	return &u, nil
}

func (r *userRepo) scanUsers(rows pgx.Rows) ([]*models.User, error) {
	var out []*models.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
