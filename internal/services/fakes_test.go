package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/ips-ux/maintenance-manager/internal/models"
	"github.com/ips-ux/maintenance-manager/internal/repositories"
	"github.com/ips-ux/maintenance-manager/internal/utils"
)

// In-memory repositories backing the service tests. They reproduce the
// storage semantics the services rely on: row-version bumps on every
// write, version-guarded transitions, turn/unit updates applied
// together, and half-open overlap for calendar events.

type fakeStore struct {
	units map[uuid.UUID]*models.Unit
	turns map[uuid.UUID]*models.Turn
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		units: map[uuid.UUID]*models.Unit{},
		turns: map[uuid.UUID]*models.Turn{},
	}
}

func cloneUnit(u *models.Unit) *models.Unit {
	c := *u
	return &c
}

func cloneTurn(t *models.Turn) *models.Turn {
	c := *t
	c.Checklist = append([]models.Task(nil), t.Checklist...)
	return &c
}

/* ───────────── units ───────────── */

type fakeUnitRepo struct {
	s *fakeStore
}

func (r *fakeUnitRepo) Create(ctx context.Context, u *models.Unit) error {
	c := cloneUnit(u)
	c.RowVersion = 1
	c.CreatedAt = time.Now().UTC()
	r.s.units[c.ID] = c
	return nil
}

func (r *fakeUnitRepo) CreateMany(ctx context.Context, list []models.Unit) error {
	for i := range list {
		if err := r.Create(ctx, &list[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeUnitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	u, ok := r.s.units[id]
	if !ok {
		return nil, nil
	}
	return cloneUnit(u), nil
}

func (r *fakeUnitRepo) GetByUnitNumber(ctx context.Context, unitNumber string) (*models.Unit, error) {
	for _, u := range r.s.units {
		if u.UnitNumber == unitNumber {
			return cloneUnit(u), nil
		}
	}
	return nil, nil
}

func (r *fakeUnitRepo) List(ctx context.Context, q repositories.UnitQuery) ([]*models.Unit, error) {
	out := []*models.Unit{}
	for _, u := range r.s.units {
		if q.Status != "" && u.Status != q.Status {
			continue
		}
		if q.IsVacant != nil && u.IsVacant != *q.IsVacant {
			continue
		}
		if q.Building != "" && u.Building != q.Building {
			continue
		}
		out = append(out, cloneUnit(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnitNumber < out[j].UnitNumber })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *fakeUnitRepo) Update(ctx context.Context, u *models.Unit) error {
	if _, ok := r.s.units[u.ID]; !ok {
		return pgx.ErrNoRows
	}
	c := cloneUnit(u)
	c.RowVersion++
	r.s.units[u.ID] = c
	return nil
}

func (r *fakeUnitRepo) UpdateIfVersion(ctx context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error) {
	stored, ok := r.s.units[u.ID]
	if !ok || stored.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	c := cloneUnit(u)
	c.RowVersion = expected + 1
	r.s.units[u.ID] = c
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakeUnitRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error {
	stored, ok := r.s.units[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c := cloneUnit(stored)
	if err := mutate(c); err != nil {
		return err
	}
	c.RowVersion = stored.RowVersion + 1
	r.s.units[id] = c
	return nil
}

func (r *fakeUnitRepo) MarkVacant(ctx context.Context, id uuid.UUID, since time.Time) error {
	u, ok := r.s.units[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.IsVacant = true
	u.VacantSince = &since
	u.DaysVacant = 0
	u.Status = models.UnitStatusReady
	u.CurrentTurnID = nil
	u.RowVersion++
	return nil
}

func (r *fakeUnitRepo) MarkOccupied(ctx context.Context, id uuid.UUID) error {
	u, ok := r.s.units[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.IsVacant = false
	u.VacantSince = nil
	u.DaysVacant = 0
	u.Status = models.UnitStatusOccupied
	u.CurrentTurnID = nil
	u.RowVersion++
	return nil
}

func (r *fakeUnitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.s.units, id)
	return nil
}

/* ───────────── turns ───────────── */

type fakeTurnRepo struct {
	s *fakeStore
}

func (r *fakeTurnRepo) CreateWithUnitLink(ctx context.Context, t *models.Turn) error {
	unit, ok := r.s.units[t.UnitID]
	if !ok {
		return utils.ErrNotFound
	}
	if unit.CurrentTurnID != nil {
		return utils.ErrUnitHasOpenTurn
	}

	c := cloneTurn(t)
	c.RowVersion = 1
	c.CreatedAt = time.Now().UTC()
	r.s.turns[c.ID] = c

	unit.CurrentTurnID = utils.Ptr(c.ID)
	unit.Status = models.UnitStatusInProgress
	unit.IsVacant = true
	unit.RowVersion++
	return nil
}

func (r *fakeTurnRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Turn, error) {
	t, ok := r.s.turns[id]
	if !ok {
		return nil, nil
	}
	return cloneTurn(t), nil
}

func (r *fakeTurnRepo) List(ctx context.Context, q repositories.TurnQuery) ([]*models.Turn, error) {
	out := []*models.Turn{}
	for _, t := range r.s.turns {
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		if q.AssignedTechnicianID != nil && t.AssignedTechnicianID != *q.AssignedTechnicianID {
			continue
		}
		out = append(out, cloneTurn(t))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TargetCompletionDate.Before(out[j].TargetCompletionDate)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *fakeTurnRepo) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*models.Turn, error) {
	out := []*models.Turn{}
	for _, t := range r.s.turns {
		if t.UnitID == unitID {
			out = append(out, cloneTurn(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (r *fakeTurnRepo) ListByStatuses(ctx context.Context, statuses []models.TurnStatusType, limit int) ([]*models.Turn, error) {
	out := []*models.Turn{}
	for _, t := range r.s.turns {
		for _, st := range statuses {
			if t.Status == st {
				out = append(out, cloneTurn(t))
				break
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTurnRepo) Update(ctx context.Context, t *models.Turn) error {
	if _, ok := r.s.turns[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	c := cloneTurn(t)
	c.RowVersion++
	r.s.turns[t.ID] = c
	return nil
}

func (r *fakeTurnRepo) UpdateIfVersion(ctx context.Context, t *models.Turn, expected int64) (pgconn.CommandTag, error) {
	stored, ok := r.s.turns[t.ID]
	if !ok || stored.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	c := cloneTurn(t)
	c.RowVersion = expected + 1
	r.s.turns[t.ID] = c
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakeTurnRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Turn) error) error {
	stored, ok := r.s.turns[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c := cloneTurn(stored)
	if err := mutate(c); err != nil {
		return err
	}
	c.RowVersion = stored.RowVersion + 1
	r.s.turns[id] = c
	return nil
}

func (r *fakeTurnRepo) CompleteAtomic(ctx context.Context, turnID uuid.UUID, expectedVersion int64, now time.Time) (*models.Turn, error) {
	t, ok := r.s.turns[turnID]
	if !ok || t.RowVersion != expectedVersion {
		return nil, utils.ErrRowVersionConflict
	}
	t.Status = models.TurnStatusCompleted
	t.ActualCompletionDate = &now
	t.RowVersion++

	if u, ok := r.s.units[t.UnitID]; ok {
		u.Status = models.UnitStatusReady
		u.CurrentTurnID = nil
		u.LastTurnCompletedDate = &now
		u.RowVersion++
	}
	return cloneTurn(t), nil
}

func (r *fakeTurnRepo) BlockAtomic(ctx context.Context, turnID uuid.UUID, expectedVersion int64, reason string) (*models.Turn, error) {
	t, ok := r.s.turns[turnID]
	if !ok || t.RowVersion != expectedVersion {
		return nil, utils.ErrRowVersionConflict
	}
	t.Status = models.TurnStatusBlocked
	t.BlockageReason = &reason
	t.RowVersion++

	if u, ok := r.s.units[t.UnitID]; ok {
		u.Status = models.UnitStatusBlocked
		u.RowVersion++
	}
	return cloneTurn(t), nil
}

func (r *fakeTurnRepo) DeleteWithUnitReset(ctx context.Context, turnID uuid.UUID) error {
	t, ok := r.s.turns[turnID]
	if !ok {
		return nil
	}
	if u, ok := r.s.units[t.UnitID]; ok && u.CurrentTurnID != nil && *u.CurrentTurnID == turnID {
		u.CurrentTurnID = nil
		u.Status = models.UnitStatusReady
		u.RowVersion++
	}
	delete(r.s.turns, turnID)
	return nil
}

func (r *fakeTurnRepo) MarkOverdueNotified(ctx context.Context, turnID uuid.UUID, at time.Time) error {
	t, ok := r.s.turns[turnID]
	if !ok {
		return pgx.ErrNoRows
	}
	t.OverdueNotifiedAt = &at
	return nil
}

func (r *fakeTurnRepo) UpdateDerivedBatch(ctx context.Context, turns []*models.Turn) error {
	for _, t := range turns {
		stored, ok := r.s.turns[t.ID]
		if !ok {
			continue
		}
		stored.TotalTasks = t.TotalTasks
		stored.CompletedTasks = t.CompletedTasks
		stored.ProgressPercentage = t.ProgressPercentage
		stored.DaysInProgress = t.DaysInProgress
		stored.DaysOverdue = t.DaysOverdue
		stored.RowVersion++
	}
	return nil
}

/* ───────────── users ───────────── */

type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*models.User{}}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Permissions = append([]string(nil), u.Permissions...)
	return &c
}

func (r *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	c := cloneUser(u)
	c.CreatedAt = time.Now().UTC()
	r.users[c.ID] = c
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) List(ctx context.Context, q repositories.UserQuery) ([]*models.User, error) {
	out := []*models.User{}
	for _, u := range r.users {
		if q.Role != "" && u.Role != q.Role {
			continue
		}
		if q.ActiveOnly && !u.Active {
			continue
		}
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *fakeUserRepo) Search(ctx context.Context, term string, limit int) ([]*models.User, error) {
	needle := strings.ToLower(term)
	out := []*models.User{}
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.DisplayName), needle) ||
			strings.Contains(strings.ToLower(u.Email), needle) {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *models.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *fakeUserRepo) SetRole(ctx context.Context, id uuid.UUID, role models.RoleType) error {
	u, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Role = role
	return nil
}

func (r *fakeUserRepo) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.LastLoginAt = &at
	return nil
}

func (r *fakeUserRepo) RecordTurnCompletion(ctx context.Context, id uuid.UUID, completionDays float64) error {
	u, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	n := float64(u.TurnsCompleted)
	u.AvgCompletionTime = (u.AvgCompletionTime*n + completionDays) / (n + 1)
	u.TurnsCompleted++
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

/* ───────────── activities ───────────── */

type fakeActivityRepo struct {
	records []*models.Activity
	// when set, Create fails so best-effort logging can be exercised
	failCreate error
}

func (r *fakeActivityRepo) Create(ctx context.Context, a *models.Activity) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	c := *a
	r.records = append(r.records, &c)
	return nil
}

func (r *fakeActivityRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	for _, a := range r.records {
		if a.ID == id {
			c := *a
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeActivityRepo) List(ctx context.Context, q repositories.ActivityQuery) ([]*models.Activity, error) {
	out := []*models.Activity{}
	for _, a := range r.records {
		if q.EntityType != "" && a.EntityType != q.EntityType {
			continue
		}
		if q.EntityID != nil && a.EntityID != *q.EntityID {
			continue
		}
		if q.UserID != nil && a.UserID != *q.UserID {
			continue
		}
		if q.Action != "" && a.Action != q.Action {
			continue
		}
		if q.Since != nil && a.Timestamp.Before(*q.Since) {
			continue
		}
		if q.Until != nil && a.Timestamp.After(*q.Until) {
			continue
		}
		c := *a
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *fakeActivityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i, a := range r.records {
		if a.ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeActivityRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	sort.Slice(r.records, func(i, j int) bool { return r.records[i].Timestamp.Before(r.records[j].Timestamp) })
	var deleted int64
	kept := r.records[:0]
	for _, a := range r.records {
		if a.Timestamp.Before(cutoff) && deleted < int64(limit) {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	r.records = kept
	return deleted, nil
}

/* ───────────── calendar events ───────────── */

type fakeEventRepo struct {
	events map[uuid.UUID]*models.CalendarEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: map[uuid.UUID]*models.CalendarEvent{}}
}

func cloneEvent(e *models.CalendarEvent) *models.CalendarEvent {
	c := *e
	return &c
}

func (r *fakeEventRepo) Create(ctx context.Context, e *models.CalendarEvent) error {
	c := cloneEvent(e)
	c.CreatedAt = time.Now().UTC()
	r.events[c.ID] = c
	return nil
}

func (r *fakeEventRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CalendarEvent, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	return cloneEvent(e), nil
}

func (r *fakeEventRepo) List(ctx context.Context, q repositories.EventQuery) ([]*models.CalendarEvent, error) {
	out := []*models.CalendarEvent{}
	for _, e := range r.events {
		if q.Status != "" && e.Status != q.Status {
			continue
		}
		if q.EventType != "" && e.EventType != q.EventType {
			continue
		}
		if q.UnitID != nil && (e.UnitID == nil || *e.UnitID != *q.UnitID) {
			continue
		}
		if q.AssignedTo != nil && (e.AssignedTo == nil || *e.AssignedTo != *q.AssignedTo) {
			continue
		}
		if q.From != nil && e.EndDateTime.Before(*q.From) {
			continue
		}
		if q.To != nil && !e.StartDateTime.Before(*q.To) {
			continue
		}
		out = append(out, cloneEvent(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDateTime.Before(out[j].StartDateTime) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *fakeEventRepo) ListOverlapping(ctx context.Context, assignedTo uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*models.CalendarEvent, error) {
	out := []*models.CalendarEvent{}
	for _, e := range r.events {
		if e.Status != models.EventStatusScheduled {
			continue
		}
		if e.AssignedTo == nil || *e.AssignedTo != assignedTo {
			continue
		}
		if excludeID != nil && e.ID == *excludeID {
			continue
		}
		if e.StartDateTime.Before(end) && e.EndDateTime.After(start) {
			out = append(out, cloneEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDateTime.Before(out[j].StartDateTime) })
	return out, nil
}

func (r *fakeEventRepo) Update(ctx context.Context, e *models.CalendarEvent) error {
	if _, ok := r.events[e.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.events[e.ID] = cloneEvent(e)
	return nil
}

func (r *fakeEventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.events, id)
	return nil
}

/* ───────────── vendors ───────────── */

type fakeVendorRepo struct {
	vendors map[uuid.UUID]*models.Vendor
}

func newFakeVendorRepo() *fakeVendorRepo {
	return &fakeVendorRepo{vendors: map[uuid.UUID]*models.Vendor{}}
}

func cloneVendor(v *models.Vendor) *models.Vendor {
	c := *v
	return &c
}

func (r *fakeVendorRepo) Create(ctx context.Context, v *models.Vendor) error {
	c := cloneVendor(v)
	c.CreatedAt = time.Now().UTC()
	r.vendors[c.ID] = c
	return nil
}

func (r *fakeVendorRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	v, ok := r.vendors[id]
	if !ok {
		return nil, nil
	}
	return cloneVendor(v), nil
}

func (r *fakeVendorRepo) List(ctx context.Context, q repositories.VendorQuery) ([]*models.Vendor, error) {
	out := []*models.Vendor{}
	for _, v := range r.vendors {
		if q.Category != "" && v.Category != q.Category {
			continue
		}
		if q.ActiveOnly && !v.Active {
			continue
		}
		if q.PreferredOnly && !v.PreferredVendor {
			continue
		}
		out = append(out, cloneVendor(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VendorName < out[j].VendorName })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *fakeVendorRepo) Update(ctx context.Context, v *models.Vendor) error {
	if _, ok := r.vendors[v.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.vendors[v.ID] = cloneVendor(v)
	return nil
}

func (r *fakeVendorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.vendors, id)
	return nil
}

func (r *fakeVendorRepo) SetRating(ctx context.Context, id uuid.UUID, rating float64) error {
	v, ok := r.vendors[id]
	if !ok {
		return pgx.ErrNoRows
	}
	v.Rating = rating
	return nil
}

func (r *fakeVendorRepo) RecordJobCompletion(ctx context.Context, id uuid.UUID, servedAt time.Time) error {
	v, ok := r.vendors[id]
	if !ok {
		return pgx.ErrNoRows
	}
	v.TotalJobsCompleted++
	v.LastServiceDate = &servedAt
	return nil
}
