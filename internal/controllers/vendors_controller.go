package controllers

import (
	"net/http"

	"github.com/ips-ux/maintenance-manager/internal/dtos"
	"github.com/ips-ux/maintenance-manager/internal/models"
	"github.com/ips-ux/maintenance-manager/internal/repositories"
	"github.com/ips-ux/maintenance-manager/internal/services"
	"github.com/ips-ux/maintenance-manager/internal/utils"
)

type VendorsController struct {
	vendorService *services.VendorService
}

func NewVendorsController(vs *services.VendorService) *VendorsController {
	return &VendorsController{vendorService: vs}
}

// POST /api/v1/vendors
func (c *VendorsController) CreateVendorHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateVendorRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	vendor, err := c.vendorService.CreateVendor(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "Failed to create vendor")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, vendor)
}

// POST /api/v1/vendors/bulk
func (c *VendorsController) BulkCreateVendorsHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.BulkCreateVendorsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := c.vendorService.CreateBulkVendors(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "Failed to bulk create vendors")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, result)
}

// GET /api/v1/vendors/statistics
func (c *VendorsController) VendorStatisticsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := c.vendorService.GetStatistics(r.Context())
	if err != nil {
		respondServiceError(w, err, "Failed to compute vendor statistics")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}

// GET /api/v1/vendors
func (c *VendorsController) ListVendorsHandler(w http.ResponseWriter, r *http.Request) {
	q := repositories.VendorQuery{
		Category:      r.URL.Query().Get("category"),
		ActiveOnly:    r.URL.Query().Get("active") == "true",
		PreferredOnly: r.URL.Query().Get("preferred") == "true",
		Limit:         queryInt(r, "limit"),
	}

	vendors, err := c.vendorService.ListVendors(r.Context(), q)
	if err != nil {
		respondServiceError(w, err, "Failed to list vendors")
		return
	}
	if vendors == nil {
		vendors = []*models.Vendor{}
	}
	utils.RespondWithJSON(w, http.StatusOK, vendors)
}

// GET /api/v1/vendors/{id}
func (c *VendorsController) GetVendorHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	vendor, err := c.vendorService.GetVendor(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch vendor")
		return
	}
	if vendor == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Vendor not found", nil)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, vendor)
}

// PATCH /api/v1/vendors/{id}
func (c *VendorsController) UpdateVendorHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.UpdateVendorRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	vendor, err := c.vendorService.UpdateVendor(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, err, "Failed to update vendor")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, vendor)
}

// PUT /api/v1/vendors/{id}/rating
func (c *VendorsController) SetRatingHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.SetVendorRatingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	vendor, err := c.vendorService.SetRating(r.Context(), id, req.Rating)
	if err != nil {
		respondServiceError(w, err, "Failed to set rating")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, vendor)
}

// POST /api/v1/vendors/{id}/job-completion
func (c *VendorsController) RecordJobCompletionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	vendor, err := c.vendorService.RecordJobCompletion(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to record job completion")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, vendor)
}

// DELETE /api/v1/vendors/{id}
func (c *VendorsController) DeleteVendorHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := c.vendorService.DeleteVendor(r.Context(), id); err != nil {
		respondServiceError(w, err, "Failed to delete vendor")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
