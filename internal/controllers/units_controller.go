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

type UnitsController struct {
	unitService *services.UnitService
	turnService *services.TurnService
}

func NewUnitsController(us *services.UnitService, ts *services.TurnService) *UnitsController {
	return &UnitsController{unitService: us, turnService: ts}
}

// POST /api/v1/units
func (c *UnitsController) CreateUnitHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}
	var req dtos.CreateUnitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	unit, err := c.unitService.CreateUnit(r.Context(), req, actor)
	if err != nil {
		respondServiceError(w, err, "Failed to create unit")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, unit)
}

// POST /api/v1/units/bulk
func (c *UnitsController) BulkCreateUnitsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}
	var req dtos.BulkCreateUnitsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := c.unitService.CreateBulkUnits(r.Context(), req, actor)
	if err != nil {
		respondServiceError(w, err, "Failed to bulk create units")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, result)
}

// GET /api/v1/units
func (c *UnitsController) ListUnitsHandler(w http.ResponseWriter, r *http.Request) {
	q := repositories.UnitQuery{
		Status:   models.UnitStatusType(r.URL.Query().Get("status")),
		Building: r.URL.Query().Get("building"),
		OrderBy:  r.URL.Query().Get("order_by"),
		Desc:     r.URL.Query().Get("dir") == "desc",
		Limit:    queryInt(r, "limit"),
	}
	if v := r.URL.Query().Get("vacant"); v != "" {
		q.IsVacant = utils.Ptr(v == "true")
	}

	units, err := c.unitService.ListUnits(r.Context(), q)
	if err != nil {
		respondServiceError(w, err, "Failed to list units")
		return
	}
	if units == nil {
		units = []*models.Unit{}
	}
	utils.RespondWithJSON(w, http.StatusOK, units)
}

// GET /api/v1/units/statistics
func (c *UnitsController) UnitStatisticsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := c.unitService.GetStatistics(r.Context())
	if err != nil {
		respondServiceError(w, err, "Failed to compute unit statistics")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}

// GET /api/v1/units/{id}
func (c *UnitsController) GetUnitHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	unit, err := c.unitService.GetUnit(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch unit")
		return
	}
	if unit == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Unit not found", nil)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, unit)
}

// GET /api/v1/units/by-number/{unitNumber}
func (c *UnitsController) GetUnitByNumberHandler(w http.ResponseWriter, r *http.Request) {
	unitNumber := mux.Vars(r)["unitNumber"]

	unit, err := c.unitService.GetUnitByNumber(r.Context(), unitNumber)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch unit")
		return
	}
	if unit == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Unit not found", nil)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, unit)
}

// DELETE /api/v1/units/{id}
func (c *UnitsController) DeleteUnitHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := c.unitService.DeleteUnit(r.Context(), id); err != nil {
		respondServiceError(w, err, "Failed to delete unit")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// GET /api/v1/units/{id}/turns
func (c *UnitsController) ListUnitTurnsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	turns, err := c.turnService.ListTurnsByUnit(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to list unit turns")
		return
	}
	if turns == nil {
		turns = []*models.Turn{}
	}
	utils.RespondWithJSON(w, http.StatusOK, turns)
}

// PATCH /api/v1/units/{id}
func (c *UnitsController) UpdateUnitHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.UpdateUnitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	unit, err := c.unitService.UpdateUnit(r.Context(), id, req, actor)
	if err != nil {
		respondServiceError(w, err, "Failed to update unit")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, unit)
}

// POST /api/v1/units/{id}/vacant
func (c *UnitsController) MarkVacantHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.MarkVacantRequest
	if r.ContentLength > 0 && !decodeAndValidate(w, r, &req) {
		return
	}

	unit, err := c.unitService.MarkVacant(r.Context(), id, req, actor)
	if err != nil {
		respondServiceError(w, err, "Failed to mark unit vacant")
		return
	}
	if unit == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Unit not found", nil)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, unit)
}

// POST /api/v1/units/{id}/occupied
func (c *UnitsController) MarkOccupiedHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	unit, err := c.unitService.MarkOccupied(r.Context(), id, actor)
	if err != nil {
		respondServiceError(w, err, "Failed to mark unit occupied")
		return
	}
	if unit == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Unit not found", nil)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, unit)
}
