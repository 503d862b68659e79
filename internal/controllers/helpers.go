package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ips-ux/maintenance-manager/internal/dtos"
	"github.com/ips-ux/maintenance-manager/internal/middleware"
	"github.com/ips-ux/maintenance-manager/internal/models"
	"github.com/ips-ux/maintenance-manager/internal/utils"
)

var validate = validator.New()

// decodeAndValidate unmarshals the body into dst and runs validator
// tags. A false return means the error response is already written.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid request body", nil, err,
		)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil,
		)
		return false
	}
	return true
}

// pathUUID pulls a uuid path variable. A false return means the error
// response is already written.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid id: "+raw, nil,
		)
		return uuid.Nil, false
	}
	return id, true
}

// actorFromContext builds the mutation attribution from the auth
// middleware's claims. A false return means a 401 is already written.
func actorFromContext(w http.ResponseWriter, r *http.Request) (dtos.Actor, bool) {
	ctx := r.Context()
	sub, _ := ctx.Value(middleware.ContextKeyUserID).(string)
	if sub == "" {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil,
		)
		return dtos.Actor{}, false
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Malformed subject claim", nil, err,
		)
		return dtos.Actor{}, false
	}

	actor := dtos.Actor{UserID: userID}
	if name, _ := ctx.Value(middleware.ContextKeyUserName).(string); name != "" {
		actor.Name = name
	}
	if role, _ := ctx.Value(middleware.ContextKeyUserRole).(string); role != "" {
		actor.Role = models.RoleType(role)
	}
	return actor, true
}

func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

func queryUUID(r *http.Request, name string) *uuid.UUID {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

// respondServiceError maps service-layer sentinels onto the HTTP error
// taxonomy.
func respondServiceError(w http.ResponseWriter, err error, publicMessage string) {
	switch {
	case errors.Is(err, utils.ErrNotFound):
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Resource not found", nil)
	case errors.Is(err, utils.ErrTaskNotFound):
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeTaskNotFound, "Task not found in checklist", nil)
	case errors.Is(err, utils.ErrUnitHasOpenTurn):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeUnitHasOpenTurn, "Unit already has an open turn", nil)
	case errors.Is(err, utils.ErrTurnNotOpen):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict, "Turn is not open", nil)
	case errors.Is(err, utils.ErrUnitNumberTaken):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict, "Unit number already in use", nil)
	case errors.Is(err, utils.ErrRowVersionConflict):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeRowVersionConflict, "Concurrent update, please retry", nil)
	case errors.Is(err, utils.ErrInvalidRating):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidRating, "Rating must be between 1 and 5", nil)
	case errors.Is(err, utils.ErrInvalidRole):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidRole, "Unknown role", nil)
	default:
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, publicMessage, nil, err)
	}
}
