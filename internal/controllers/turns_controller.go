package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ips-ux/maintenance-manager/internal/dtos"
	"github.com/ips-ux/maintenance-manager/internal/models"
	"github.com/ips-ux/maintenance-manager/internal/repositories"
	"github.com/ips-ux/maintenance-manager/internal/services"
	"github.com/ips-ux/maintenance-manager/internal/utils"
)

type TurnsController struct {
	turnService *services.TurnService
}

func NewTurnsController(ts *services.TurnService) *TurnsController {
	return &TurnsController{turnService: ts}
}

// ----------------------------------------------------------------
// POST /api/v1/turns
// ----------------------------------------------------------------
func (c *TurnsController) CreateTurnHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}
	var req dtos.CreateTurnRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	turn, err := c.turnService.CreateTurn(r.Context(), req, actor)
	if err != nil {
		respondServiceError(w, err, "Failed to create turn")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, turn)
}

// ----------------------------------------------------------------
// GET /api/v1/turns
// ----------------------------------------------------------------
func (c *TurnsController) ListTurnsHandler(w http.ResponseWriter, r *http.Request) {
	q := repositories.TurnQuery{
		Status:               models.TurnStatusType(r.URL.Query().Get("status")),
		AssignedTechnicianID: queryUUID(r, "technician_id"),
		OrderBy:              r.URL.Query().Get("order_by"),
		Desc:                 r.URL.Query().Get("dir") == "desc",
		Limit:                queryInt(r, "limit"),
	}

	turns, err := c.turnService.ListTurns(r.Context(), q)
	if err != nil {
		respondServiceError(w, err, "Failed to list turns")
		return
	}
	if turns == nil {
		turns = []*models.Turn{}
	}
	utils.RespondWithJSON(w, http.StatusOK, turns)
}

// ----------------------------------------------------------------
// GET /api/v1/turns/{id}
// ----------------------------------------------------------------
func (c *TurnsController) GetTurnHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	turn, err := c.turnService.GetTurn(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch turn")
		return
	}
	if turn == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Turn not found", nil)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, turn)
}

// ----------------------------------------------------------------
// PATCH /api/v1/turns/{id}
// ----------------------------------------------------------------
func (c *TurnsController) UpdateTurnHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.UpdateTurnRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	turn, err := c.turnService.UpdateTurn(r.Context(), id, req, actor)
	if err != nil {
		respondServiceError(w, err, "Failed to update turn")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, turn)
}

// ----------------------------------------------------------------
// PATCH /api/v1/turns/{id}/tasks/{taskId}
// ----------------------------------------------------------------
func (c *TurnsController) UpdateTaskHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	taskID := mux.Vars(r)["taskId"]

	var req dtos.UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	turn, err := c.turnService.UpdateTask(r.Context(), id, taskID, req, actor)
	if err != nil {
		respondServiceError(w, err, "Failed to update task")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, turn)
}

// ----------------------------------------------------------------
// POST /api/v1/turns/{id}/complete
// ----------------------------------------------------------------
func (c *TurnsController) CompleteTurnHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	turn, err := c.turnService.CompleteTurn(r.Context(), id, actor)
	if err != nil {
		respondServiceError(w, err, "Failed to complete turn")
		return
	}
	if turn == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Turn not found", nil)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, turn)
}

// ----------------------------------------------------------------
// POST /api/v1/turns/{id}/block
// ----------------------------------------------------------------
func (c *TurnsController) BlockTurnHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.BlockTurnRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	turn, err := c.turnService.BlockTurn(r.Context(), id, req.Reason, actor)
	if err != nil {
		respondServiceError(w, err, "Failed to block turn")
		return
	}
	if turn == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Turn not found", nil)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, turn)
}

// ----------------------------------------------------------------
// DELETE /api/v1/turns/{id}
// ----------------------------------------------------------------
func (c *TurnsController) DeleteTurnHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := c.turnService.DeleteTurn(r.Context(), id); err != nil {
		respondServiceError(w, err, "Failed to delete turn")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ----------------------------------------------------------------
// POST /api/v1/turns/recalculate
// ----------------------------------------------------------------
func (c *TurnsController) RecalculateProgressHandler(w http.ResponseWriter, r *http.Request) {
	n, err := c.turnService.RecalculateAllProgress(r.Context())
	if err != nil {
		respondServiceError(w, err, "Failed to recalculate progress")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]int{"updated": n})
}
