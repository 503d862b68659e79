package controllers

import (
	"net/http"

	"github.com/ips-ux/maintenance-manager/internal/dtos"
	"github.com/ips-ux/maintenance-manager/internal/models"
	"github.com/ips-ux/maintenance-manager/internal/repositories"
	"github.com/ips-ux/maintenance-manager/internal/services"
	"github.com/ips-ux/maintenance-manager/internal/utils"
)

type UsersController struct {
	userService *services.UserService
}

func NewUsersController(us *services.UserService) *UsersController {
	return &UsersController{userService: us}
}

// POST /api/v1/users
func (c *UsersController) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := c.userService.CreateUser(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "Failed to create user")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, user)
}

// GET /api/v1/users
func (c *UsersController) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	q := repositories.UserQuery{
		Role:       models.RoleType(r.URL.Query().Get("role")),
		ActiveOnly: r.URL.Query().Get("active") == "true",
		Limit:      queryInt(r, "limit"),
	}

	users, err := c.userService.ListUsers(r.Context(), q)
	if err != nil {
		respondServiceError(w, err, "Failed to list users")
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	utils.RespondWithJSON(w, http.StatusOK, users)
}

// GET /api/v1/users/search?q=term
func (c *UsersController) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "q query parameter is required", nil,
		)
		return
	}

	users, err := c.userService.SearchUsers(r.Context(), term, queryInt(r, "limit"))
	if err != nil {
		respondServiceError(w, err, "Failed to search users")
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	utils.RespondWithJSON(w, http.StatusOK, users)
}

// GET /api/v1/users/statistics
func (c *UsersController) UserStatisticsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := c.userService.GetStatistics(r.Context())
	if err != nil {
		respondServiceError(w, err, "Failed to compute user statistics")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}

// GET /api/v1/users/{id}
func (c *UsersController) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	user, err := c.userService.GetUser(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch user")
		return
	}
	if user == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "User not found", nil)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

// PATCH /api/v1/users/{id}
func (c *UsersController) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := c.userService.UpdateUser(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, err, "Failed to update user")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

// DELETE /api/v1/users/{id}
func (c *UsersController) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := c.userService.DeleteUser(r.Context(), id); err != nil {
		respondServiceError(w, err, "Failed to delete user")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// PUT /api/v1/users/{id}/role
func (c *UsersController) SetRoleHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.SetUserRoleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := c.userService.SetRole(r.Context(), id, req.Role, actor)
	if err != nil {
		respondServiceError(w, err, "Failed to set role")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

// PUT /api/v1/users/{id}/notification-settings
func (c *UsersController) UpdateNotificationSettingsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.UpdateNotificationSettingsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := c.userService.UpdateNotificationSettings(r.Context(), id, req.Settings)
	if err != nil {
		respondServiceError(w, err, "Failed to update notification settings")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

// POST /api/v1/users/{id}/login
func (c *UsersController) RecordLoginHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := c.userService.RecordLogin(r.Context(), id); err != nil {
		respondServiceError(w, err, "Failed to record login")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"recorded": true})
}
