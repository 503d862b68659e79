package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	"github.com/ips-ux/maintenance-manager/internal/models"
	"github.com/ips-ux/maintenance-manager/internal/utils"
)

/* ───────────── query options ───────────── */

// TurnQuery is the closed set of filters the turn list endpoint supports.
type TurnQuery struct {
	Status               models.TurnStatusType
	AssignedTechnicianID *uuid.UUID

	OrderBy string // one of turnOrderColumns; defaults to target_completion_date
	Desc    bool
	Limit   int // defaults to 50
}

var turnOrderColumns = map[string]string{
	"target_completion_date": "target_completion_date",
	"start_date":             "start_date",
	"created_at":             "created_at",
	"progress_percentage":    "progress_percentage",
	"days_overdue":           "days_overdue",
}

/* ───────────── public interface ───────────── */

type TurnRepository interface {
	// CreateWithUnitLink inserts the turn and claims its unit in one
	// transaction. Fails with utils.ErrUnitHasOpenTurn when the unit
	// already has an open turn, utils.ErrNotFound when the unit is gone.
	CreateWithUnitLink(ctx context.Context, t *models.Turn) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Turn, error)
	List(ctx context.Context, q TurnQuery) ([]*models.Turn, error)
	ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*models.Turn, error)
	ListByStatuses(ctx context.Context, statuses []models.TurnStatusType, limit int) ([]*models.Turn, error)

	Update(ctx context.Context, t *models.Turn) error
	UpdateIfVersion(ctx context.Context, t *models.Turn, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Turn) error) error

	// CompleteAtomic / BlockAtomic transition the turn and its owning
	// unit inside one transaction, guarded by the turn's row version.
	CompleteAtomic(ctx context.Context, turnID uuid.UUID, expectedVersion int64, now time.Time) (*models.Turn, error)
	BlockAtomic(ctx context.Context, turnID uuid.UUID, expectedVersion int64, reason string) (*models.Turn, error)

	// DeleteWithUnitReset releases the unit and removes the turn; a
	// missing turn id is a no-op, not an error.
	DeleteWithUnitReset(ctx context.Context, turnID uuid.UUID) error

	MarkOverdueNotified(ctx context.Context, turnID uuid.UUID, at time.Time) error

	// UpdateDerivedBatch rewrites the derived columns of every given turn
	// as one atomic batch.
	UpdateDerivedBatch(ctx context.Context, turns []*models.Turn) error
}

/* ───────────── implementation ───────────── */

type turnRepo struct {
	*BaseVersionedRepo[*models.Turn]
	db DB
}

func NewTurnRepository(db DB) TurnRepository {
	r := &turnRepo{db: db}
	selectStmt := baseSelectTurn() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanTurn)
	return r
}

/* ---------- create ---------- */

func (r *turnRepo) CreateWithUnitLink(ctx context.Context, t *models.Turn) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var currentTurnID *uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT current_turn_id FROM units WHERE id=$1 FOR UPDATE`, t.UnitID,
	).Scan(&currentTurnID)
	if err != nil {
		if err == pgx.ErrNoRows {
			err = utils.ErrNotFound
		}
		return err
	}
	if currentTurnID != nil {
		err = utils.ErrUnitHasOpenTurn
		return err
	}

	cl, err := checklistJSONB(t.Checklist)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO turns (
			id, unit_id, unit_number, status,
			start_date, target_completion_date, actual_completion_date,
			assigned_technician_id, assigned_technician_name, checklist,
			total_tasks, completed_tasks, progress_percentage,
			days_in_progress, days_overdue,
			priority, blockage_reason, notes, overdue_notified_at,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19, NOW(), NOW(), 1)
	`, t.ID, t.UnitID, t.UnitNumber, t.Status,
		t.StartDate, t.TargetCompletionDate, t.ActualCompletionDate,
		t.AssignedTechnicianID, t.AssignedTechnicianName, cl,
		t.TotalTasks, t.CompletedTasks, t.ProgressPercentage,
		t.DaysInProgress, t.DaysOverdue,
		t.Priority, t.BlockageReason, t.Notes, t.OverdueNotifiedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE units
		SET current_turn_id=$2, status=$3, is_vacant=true,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$1
	`, t.UnitID, t.ID, models.UnitStatusInProgress)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

/* ---------- reads ---------- */

func (r *turnRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Turn, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *turnRepo) List(ctx context.Context, q TurnQuery) ([]*models.Turn, error) {
	sql := baseSelectTurn()
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
	if q.AssignedTechnicianID != nil {
		appendCond("assigned_technician_id=", *q.AssignedTechnicianID)
	}

	sql += where + orderClause(turnOrderColumns, q.OrderBy, "target_completion_date", q.Desc)
	sql += limitClause(&args, q.Limit, 50)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanTurns(rows)
}

func (r *turnRepo) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*models.Turn, error) {
	rows, err := r.db.Query(ctx, baseSelectTurn()+" WHERE unit_id=$1 ORDER BY created_at DESC", unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanTurns(rows)
}

func (r *turnRepo) ListByStatuses(ctx context.Context, statuses []models.TurnStatusType, limit int) ([]*models.Turn, error) {
	strs := make([]string, len(statuses))
	for i, s := range statuses {
		strs[i] = string(s)
	}
	if limit <= 0 {
		limit = 500
	}
	rows, err := r.db.Query(ctx,
		baseSelectTurn()+" WHERE status = ANY($1) ORDER BY target_completion_date ASC LIMIT $2",
		strs, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanTurns(rows)
}

/* ---------- update ---------- */

func (r *turnRepo) Update(ctx context.Context, t *models.Turn) error {
	_, err := r.update(ctx, t, false, 0)
	return err
}

func (r *turnRepo) UpdateIfVersion(ctx context.Context, t *models.Turn, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, t, true, expected)
}

func (r *turnRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Turn) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *turnRepo) update(ctx context.Context, t *models.Turn, check bool, expected int64) (pgconn.CommandTag, error) {
	cl, err := checklistJSONB(t.Checklist)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	sql := `
		UPDATE turns
		SET unit_number=$1, status=$2, start_date=$3, target_completion_date=$4,
			actual_completion_date=$5, assigned_technician_id=$6,
			assigned_technician_name=$7, checklist=$8,
			total_tasks=$9, completed_tasks=$10, progress_percentage=$11,
			days_in_progress=$12, days_overdue=$13,
			priority=$14, blockage_reason=$15, notes=$16, overdue_notified_at=$17,
			updated_at=NOW()
	`
	args := []any{
		t.UnitNumber, t.Status, t.StartDate, t.TargetCompletionDate,
		t.ActualCompletionDate, t.AssignedTechnicianID,
		t.AssignedTechnicianName, cl,
		t.TotalTasks, t.CompletedTasks, t.ProgressPercentage,
		t.DaysInProgress, t.DaysOverdue,
		t.Priority, t.BlockageReason, t.Notes, t.OverdueNotifiedAt,
	}
	if check {
		sql += `, row_version=row_version+1 WHERE id=$18 AND row_version=$19`
		args = append(args, t.ID, expected)
	} else {
		sql += ` WHERE id=$18`
		args = append(args, t.ID)
	}
	return r.db.Exec(ctx, sql, args...)
}

/* ---------- atomic transitions ---------- */

func (r *turnRepo) CompleteAtomic(ctx context.Context, turnID uuid.UUID, expectedVersion int64, now time.Time) (*models.Turn, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var unitID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE turns
		SET status=$2, actual_completion_date=$3, updated_at=NOW(),
			row_version=row_version+1
		WHERE id=$1 AND row_version=$4
		RETURNING unit_id
	`, turnID, models.TurnStatusCompleted, now, expectedVersion).Scan(&unitID)
	if err != nil {
		if err == pgx.ErrNoRows {
			err = utils.ErrRowVersionConflict
		}
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE units
		SET status=$2, current_turn_id=NULL, last_turn_completed_date=$3,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$1
	`, unitID, models.UnitStatusReady, now)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, turnID)
}

func (r *turnRepo) BlockAtomic(ctx context.Context, turnID uuid.UUID, expectedVersion int64, reason string) (*models.Turn, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var unitID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE turns
		SET status=$2, blockage_reason=$3, updated_at=NOW(),
			row_version=row_version+1
		WHERE id=$1 AND row_version=$4
		RETURNING unit_id
	`, turnID, models.TurnStatusBlocked, reason, expectedVersion).Scan(&unitID)
	if err != nil {
		if err == pgx.ErrNoRows {
			err = utils.ErrRowVersionConflict
		}
		return nil, err
	}

	// The unit keeps its turn linkage while blocked.
	_, err = tx.Exec(ctx, `
		UPDATE units
		SET status=$2, updated_at=NOW(), row_version=row_version+1
		WHERE id=$1
	`, unitID, models.UnitStatusBlocked)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, turnID)
}

/* ---------- delete ---------- */

func (r *turnRepo) DeleteWithUnitReset(ctx context.Context, turnID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var unitID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT unit_id FROM turns WHERE id=$1`, turnID).Scan(&unitID)
	if err != nil {
		if err == pgx.ErrNoRows {
			// idempotent-delete semantics
			err = nil
			return tx.Commit(ctx)
		}
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE units
		SET current_turn_id=NULL, status=$2, updated_at=NOW(), row_version=row_version+1
		WHERE id=$1 AND current_turn_id=$3
	`, unitID, models.UnitStatusReady, turnID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `DELETE FROM turns WHERE id=$1`, turnID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

/* ---------- maintenance ---------- */

func (r *turnRepo) MarkOverdueNotified(ctx context.Context, turnID uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE turns SET overdue_notified_at=$2, updated_at=NOW() WHERE id=$1
	`, turnID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *turnRepo) UpdateDerivedBatch(ctx context.Context, turns []*models.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	batch := &pgx.Batch{}
	for _, t := range turns {
		batch.Queue(`
			UPDATE turns
			SET total_tasks=$2, completed_tasks=$3, progress_percentage=$4,
				days_in_progress=$5, days_overdue=$6, updated_at=NOW()
			WHERE id=$1
		`, t.ID, t.TotalTasks, t.CompletedTasks, t.ProgressPercentage,
			t.DaysInProgress, t.DaysOverdue)
	}

	br := tx.SendBatch(ctx, batch)
	for range turns {
		if _, err = br.Exec(); err != nil {
			_ = br.Close()
			return err
		}
	}
	if err = br.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

/* ---------- internals ---------- */

func checklistJSONB(tasks []models.Task) (pgtype.JSONB, error) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return pgtype.JSONB{}, err
	}
	return pgtype.JSONB{Bytes: b, Status: pgtype.Present}, nil
}

func baseSelectTurn() string {
	return `
		SELECT id, unit_id, unit_number, status,
		start_date, target_completion_date, actual_completion_date,
		assigned_technician_id, assigned_technician_name, checklist,
		total_tasks, completed_tasks, progress_percentage,
		days_in_progress, days_overdue,
		priority, blockage_reason, notes, overdue_notified_at,
		created_at, updated_at, row_version
		FROM turns`
}

func (r *turnRepo) scanTurn(row pgx.Row) (*models.Turn, error) {
	var t models.Turn
	var cl pgtype.JSONB
	if err := row.Scan(
		&t.ID, &t.UnitID, &t.UnitNumber, &t.Status,
		&t.StartDate, &t.TargetCompletionDate, &t.ActualCompletionDate,
		&t.AssignedTechnicianID, &t.AssignedTechnicianName, &cl,
		&t.TotalTasks, &t.CompletedTasks, &t.ProgressPercentage,
		&t.DaysInProgress, &t.DaysOverdue,
		&t.Priority, &t.BlockageReason, &t.Notes, &t.OverdueNotifiedAt,
		&t.CreatedAt, &t.UpdatedAt, &t.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if cl.Status == pgtype.Present {
		if err := json.Unmarshal(cl.Bytes, &t.Checklist); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func (r *turnRepo) scanTurns(rows pgx.Rows) ([]*models.Turn, error) {
	var out []*models.Turn
	for rows.Next() {
		t, err := r.scanTurn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
