package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"hospital-portal-server/internal/models"
	"hospital-portal-server/internal/storage"
	"hospital-portal-server/internal/utils"
)

// DoctorHandler handles doctor directory requests.
type DoctorHandler struct {
	Store storage.Backend
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(store storage.Backend) *DoctorHandler {
	return &DoctorHandler{Store: store}
}

// CreateDoctorRequest represents the request body for adding a doctor to the
// directory.
type CreateDoctorRequest struct {
	Name              string   `json:"name" binding:"required"`
	Specialty         string   `json:"specialty"`
	Department        string   `json:"department"`
	AvailabilitySlots []string `json:"availability_slots"`
}

// ListDoctors handles GET /api/doctors.
func (h *DoctorHandler) ListDoctors(c *gin.Context) {
	doctors, err := h.Store.ListDoctors(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list doctors")
		utils.InternalServerError(c, "Failed to fetch doctors")
		return
	}
	utils.Success(c, doctors)
}

// CreateDoctor handles POST /api/doctors.
func (h *DoctorHandler) CreateDoctor(c *gin.Context) {
	var req CreateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	ts := models.Timestamp(time.Now())
	doctor := models.Doctor{
		Name:              req.Name,
		Specialty:         req.Specialty,
		Department:        req.Department,
		Available:         true,
		AvailabilitySlots: models.StringArray(req.AvailabilitySlots),
		CreatedDate:       ts,
		UpdatedAt:         ts,
	}
	if doctor.AvailabilitySlots == nil {
		doctor.AvailabilitySlots = models.StringArray{}
	}

	if err := h.Store.CreateDoctor(c.Request.Context(), &doctor); err != nil {
		log.Error().Err(err).Msg("failed to create doctor")
		utils.InternalServerError(c, "Failed to create doctor")
		return
	}
	utils.Created(c, doctor)
}

// UpdateDoctorAvailabilityRequest represents the request body for changing a
// doctor's availability.
type UpdateDoctorAvailabilityRequest struct {
	Available         *bool    `json:"available"`
	AvailabilitySlots []string `json:"availability_slots"`
}

// UpdateDoctorAvailability handles PATCH /api/doctors/:id/availability.
func (h *DoctorHandler) UpdateDoctorAvailability(c *gin.Context) {
	var req UpdateDoctorAvailabilityRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	columns := map[string]interface{}{
		"updated_at": models.Timestamp(time.Now()),
	}
	if req.Available != nil {
		columns["available"] = *req.Available
	}
	if req.AvailabilitySlots != nil {
		columns["availability_slots"] = models.StringArray(req.AvailabilitySlots)
	}

	doctor, err := h.Store.UpdateDoctor(c.Request.Context(), c.Param("id"), columns)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			log.Error().Err(err).Str("id", c.Param("id")).Msg("failed to update doctor availability")
			utils.InternalServerError(c, "Failed to update doctor")
		}
		return
	}
	utils.Success(c, doctor)
}
