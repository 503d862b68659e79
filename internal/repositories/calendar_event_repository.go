package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/ips-ux/maintenance-manager/internal/models"
)

/* ───────────── query options ───────────── */

// EventQuery is the closed set of filters the calendar list supports.
type EventQuery struct {
	Status     models.EventStatusType
	EventType  models.EventType
	UnitID     *uuid.UUID
	AssignedTo *uuid.UUID
	From       *time.Time
	To         *time.Time

	Limit int // defaults to 100
}

/* ───────────── public interface ───────────── */

type CalendarEventRepository interface {
	Create(ctx context.Context, e *models.CalendarEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CalendarEvent, error)
	List(ctx context.Context, q EventQuery) ([]*models.CalendarEvent, error)

	// ListOverlapping returns Scheduled events for the assignee whose
	// [start, end) window intersects the given one. excludeID skips the
	// event being rescheduled.
	ListOverlapping(ctx context.Context, assignedTo uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*models.CalendarEvent, error)

	Update(ctx context.Context, e *models.CalendarEvent) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type calendarEventRepo struct {
	db DB
}

func NewCalendarEventRepository(db DB) CalendarEventRepository {
	return &calendarEventRepo{db: db}
}

/* ---------- writes ---------- */

func (r *calendarEventRepo) Create(ctx context.Context, e *models.CalendarEvent) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO calendar_events (
			id, title, description, event_type, status,
			start_date_time, end_date_time,
			unit_id, unit_number, turn_id, vendor_id,
			assigned_to, assigned_to_name,
			completed_at, cancelled_reason,
			created_by, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16, NOW(), NOW())
	`, e.ID, e.Title, e.Description, e.EventType, e.Status,
		e.StartDateTime, e.EndDateTime,
		e.UnitID, e.UnitNumber, e.TurnID, e.VendorID,
		e.AssignedTo, e.AssignedToName,
		e.CompletedAt, e.CancelledReason,
		e.CreatedBy)
	return err
}

func (r *calendarEventRepo) Update(ctx context.Context, e *models.CalendarEvent) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE calendar_events
		SET title=$2, description=$3, event_type=$4, status=$5,
			start_date_time=$6, end_date_time=$7,
			unit_id=$8, unit_number=$9, turn_id=$10, vendor_id=$11,
			assigned_to=$12, assigned_to_name=$13,
			completed_at=$14, cancelled_reason=$15,
			updated_at=NOW()
		WHERE id=$1
	`, e.ID, e.Title, e.Description, e.EventType, e.Status,
		e.StartDateTime, e.EndDateTime,
		e.UnitID, e.UnitNumber, e.TurnID, e.VendorID,
		e.AssignedTo, e.AssignedToName,
		e.CompletedAt, e.CancelledReason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *calendarEventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM calendar_events WHERE id=$1`, id)
	return err
}

/* ---------- reads ---------- */

func (r *calendarEventRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CalendarEvent, error) {
	row := r.db.QueryRow(ctx, baseSelectEvent()+" WHERE id=$1", id)
	return r.scanEvent(row)
}

func (r *calendarEventRepo) List(ctx context.Context, q EventQuery) ([]*models.CalendarEvent, error) {
	sql := baseSelectEvent()
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
	if q.EventType != "" {
		appendCond("event_type=", q.EventType)
	}
	if q.UnitID != nil {
		appendCond("unit_id=", *q.UnitID)
	}
	if q.AssignedTo != nil {
		appendCond("assigned_to=", *q.AssignedTo)
	}
	if q.From != nil {
		appendCond("end_date_time>", *q.From)
	}
	if q.To != nil {
		appendCond("start_date_time<", *q.To)
	}

	sql += where + " ORDER BY start_date_time ASC"
	sql += limitClause(&args, q.Limit, 100)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanEvents(rows)
}

func (r *calendarEventRepo) ListOverlapping(ctx context.Context, assignedTo uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*models.CalendarEvent, error) {
	// Half-open windows: an event ending exactly when another starts
	// does not overlap it.
	sql := baseSelectEvent() + `
		WHERE assigned_to=$1 AND status=$2
		AND start_date_time < $4 AND end_date_time > $3`
	args := []any{assignedTo, models.EventStatusScheduled, start, end}
	if excludeID != nil {
		args = append(args, *excludeID)
		sql += " AND id<>" + placeholder(len(args))
	}
	sql += " ORDER BY start_date_time ASC"

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanEvents(rows)
}

/* ---------- internals ---------- */

func baseSelectEvent() string {
	return `
		SELECT id, title, description, event_type, status,
		start_date_time, end_date_time,
		unit_id, unit_number, turn_id, vendor_id,
		assigned_to, assigned_to_name,
		completed_at, cancelled_reason,
		created_by, created_at, updated_at
		FROM calendar_events`
}

func (r *calendarEventRepo) scanEvent(row pgx.Row) (*models.CalendarEvent, error) {
	var e models.CalendarEvent
	if err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.EventType, &e.Status,
		&e.StartDateTime, &e.EndDateTime,
		&e.UnitID, &e.UnitNumber, &e.TurnID, &e.VendorID,
		&e.AssignedTo, &e.AssignedToName,
		&e.CompletedAt, &e.CancelledReason,
		&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *calendarEventRepo) scanEvents(rows pgx.Rows) ([]*models.CalendarEvent, error) {
	var out []*models.CalendarEvent
	for rows.Next() {
		e, err := r.scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
