package services

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/ips-ux/maintenance-manager/internal/constants"
	"github.com/ips-ux/maintenance-manager/internal/dtos"
	"github.com/ips-ux/maintenance-manager/internal/models"
	"github.com/ips-ux/maintenance-manager/internal/repositories"
	"github.com/ips-ux/maintenance-manager/internal/utils"
)

type UserService struct {
	userRepo repositories.UserRepository
	activity *ActivityService
}

func NewUserService(userRepo repositories.UserRepository, activity *ActivityService) *UserService {
	return &UserService{userRepo: userRepo, activity: activity}
}

func (s *UserService) CreateUser(ctx context.Context, req dtos.CreateUserRequest) (*models.User, error) {
	if !slices.Contains(models.ValidRoles, req.Role) {
		return nil, utils.ErrInvalidRole
	}
	user := &models.User{
		ID:          req.ID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Role:        req.Role,
		Active:      true,
		Permissions: req.Permissions,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, user.ID)
}

func (s *UserService) UpdateUser(ctx context.Context, userID uuid.UUID, req dtos.UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.ErrNotFound
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if req.Permissions != nil {
		user.Permissions = req.Permissions
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, notFoundIfNoRows(err)
	}
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateNotificationSettings replaces the user's notification
// preferences wholesale. The payload is opaque to the backend.
func (s *UserService) UpdateNotificationSettings(ctx context.Context, userID uuid.UUID, settings json.RawMessage) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.ErrNotFound
	}

	user.NotificationSettings = &settings
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, notFoundIfNoRows(err)
	}
	return s.userRepo.GetByID(ctx, userID)
}

// SetRole accepts only whitelisted roles.
func (s *UserService) SetRole(ctx context.Context, userID uuid.UUID, role models.RoleType, actor dtos.Actor) (*models.User, error) {
	if !slices.Contains(models.ValidRoles, role) {
		return nil, utils.ErrInvalidRole
	}
	if err := s.userRepo.SetRole(ctx, userID, role); err != nil {
		return nil, notFoundIfNoRows(err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user == nil {
		return user, err
	}
	s.activity.Log(ctx, actor, models.ActionUserUpdated,
		fmt.Sprintf("Changed role of %s to %s", user.DisplayName, role),
		"user", user.ID, user.DisplayName,
		map[string]any{"role": role})
	return user, nil
}

// RecordLogin stamps the login time and appends a user.login record.
func (s *UserService) RecordLogin(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.RecordLogin(ctx, userID, time.Now().UTC()); err != nil {
		return notFoundIfNoRows(err)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user == nil {
		return err
	}
	s.activity.Log(ctx, dtos.Actor{UserID: user.ID, Name: user.DisplayName, Role: user.Role},
		models.ActionUserLogin,
		fmt.Sprintf("%s signed in", user.DisplayName),
		"user", user.ID, user.DisplayName, nil)
	return nil
}

// HasPermission grants Admin everything; everyone else needs the exact
// permission string.
func (s *UserService) HasPermission(user *models.User, permission string) bool {
	if user == nil || !user.Active {
		return false
	}
	if user.Role == models.RoleAdmin {
		return true
	}
	return slices.Contains(user.Permissions, permission)
}

/* ─────────────── reads ─────────────── */

// DeleteUser removes the profile outright. Deactivation via UpdateUser
// is the everyday path; this is for admin cleanup.
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.Delete(ctx, userID)
}

func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *UserService) ListUsers(ctx context.Context, q repositories.UserQuery) ([]*models.User, error) {
	if q.Limit <= 0 {
		q.Limit = constants.DefaultListLimit
	}
	if q.Limit > constants.MaxListLimit {
		q.Limit = constants.MaxListLimit
	}
	return s.userRepo.List(ctx, q)
}

// GetStatistics rolls up the staff directory.
func (s *UserService) GetStatistics(ctx context.Context) (*dtos.UserStatistics, error) {
	users, err := s.userRepo.List(ctx, repositories.UserQuery{Limit: constants.StatsScanLimit})
	if err != nil {
		return nil, err
	}

	stats := &dtos.UserStatistics{
		TotalUsers: len(users),
		ByRole:     map[string]int{},
	}
	for _, u := range users {
		if u.Active {
			stats.ActiveUsers++
		}
		stats.ByRole[string(u.Role)]++
		stats.TotalTurnsCompleted += u.TurnsCompleted
	}
	return stats, nil
}

func (s *UserService) SearchUsers(ctx context.Context, term string, limit int) ([]*models.User, error) {
	if limit <= 0 || limit > constants.MaxListLimit {
		limit = constants.DefaultListLimit
	}
	return s.userRepo.Search(ctx, term, limit)
}
