package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/ips-ux/maintenance-manager/internal/models"
)

/* ───────────── query options ───────────── */

type VendorQuery struct {
	Category      string
	ActiveOnly    bool
	PreferredOnly bool

	Limit int // defaults to 100
}

/* ───────────── public interface ───────────── */

type VendorRepository interface {
	Create(ctx context.Context, v *models.Vendor) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	List(ctx context.Context, q VendorQuery) ([]*models.Vendor, error)
	Update(ctx context.Context, v *models.Vendor) error
	Delete(ctx context.Context, id uuid.UUID) error

	SetRating(ctx context.Context, id uuid.UUID, rating float64) error
	// RecordJobCompletion bumps the completed-job counter and stamps the
	// service date in one statement.
	RecordJobCompletion(ctx context.Context, id uuid.UUID, servedAt time.Time) error
}

type vendorRepo struct {
	db DB
}

func NewVendorRepository(db DB) VendorRepository {
	return &vendorRepo{db: db}
}

/* ---------- writes ---------- */

func (r *vendorRepo) Create(ctx context.Context, v *models.Vendor) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO vendors (
			id, vendor_name, category, contact_name, phone, email,
			active, preferred_vendor, rating, total_jobs_completed,
			last_service_date, notes, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12, NOW(), NOW())
	`, v.ID, v.VendorName, v.Category, v.ContactName, v.Phone, v.Email,
		v.Active, v.PreferredVendor, v.Rating, v.TotalJobsCompleted,
		v.LastServiceDate, v.Notes)
	return err
}

func (r *vendorRepo) Update(ctx context.Context, v *models.Vendor) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE vendors
		SET vendor_name=$2, category=$3, contact_name=$4, phone=$5, email=$6,
			active=$7, preferred_vendor=$8, notes=$9, updated_at=NOW()
		WHERE id=$1
	`, v.ID, v.VendorName, v.Category, v.ContactName, v.Phone, v.Email,
		v.Active, v.PreferredVendor, v.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *vendorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM vendors WHERE id=$1`, id)
	return err
}

func (r *vendorRepo) SetRating(ctx context.Context, id uuid.UUID, rating float64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE vendors SET rating=$2, updated_at=NOW() WHERE id=$1
	`, id, rating)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *vendorRepo) RecordJobCompletion(ctx context.Context, id uuid.UUID, servedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE vendors
		SET total_jobs_completed=total_jobs_completed+1,
			last_service_date=$2, updated_at=NOW()
		WHERE id=$1
	`, id, servedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

/* ---------- reads ---------- */

func (r *vendorRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	row := r.db.QueryRow(ctx, baseSelectVendor()+" WHERE id=$1", id)
	return r.scanVendor(row)
}

func (r *vendorRepo) List(ctx context.Context, q VendorQuery) ([]*models.Vendor, error) {
	sql := baseSelectVendor()
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

	if q.Category != "" {
		args = append(args, q.Category)
		appendCond("category=" + placeholder(len(args)))
	}
	if q.ActiveOnly {
		appendCond("active=true")
	}
	if q.PreferredOnly {
		appendCond("preferred_vendor=true")
	}

	sql += where + " ORDER BY vendor_name ASC"
	sql += limitClause(&args, q.Limit, 100)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Vendor
	for rows.Next() {
		v, err := r.scanVendor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

/* ---------- internals ---------- */

func baseSelectVendor() string {
	return `
		SELECT id, vendor_name, category, contact_name, phone, email,
		active, preferred_vendor, rating, total_jobs_completed,
		last_service_date, notes, created_at, updated_at
		FROM vendors`
}

func (r *vendorRepo) scanVendor(row pgx.Row) (*models.Vendor, error) {
	var v models.Vendor
	if err := row.Scan(
		&v.ID, &v.VendorName, &v.Category, &v.ContactName, &v.Phone, &v.Email,
		&v.Active, &v.PreferredVendor, &v.Rating, &v.TotalJobsCompleted,
		&v.LastServiceDate, &v.Notes, &v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}
