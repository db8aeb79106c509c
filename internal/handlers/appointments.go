package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"hospital-portal-server/internal/broadcast"
	"hospital-portal-server/internal/models"
	"hospital-portal-server/internal/storage"
	"hospital-portal-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Store storage.Backend
	Hub   *broadcast.Hub
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(store storage.Backend, hub *broadcast.Hub) *AppointmentHandler {
	return &AppointmentHandler{Store: store, Hub: hub}
}

// ListAppointments handles GET /api/appointments. sort=-created_date gives
// newest first; the default is ascending creation order.
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	appointments, err := h.Store.ListAppointments(c.Request.Context(), c.Query("sort"))
	if err != nil {
		log.Error().Err(err).Msg("failed to list appointments")
		utils.InternalServerError(c, "Failed to fetch appointments")
		return
	}
	utils.Success(c, toViews(appointments))
}

// GetAppointment handles GET /api/appointments/:id.
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	appointment, err := h.Store.GetAppointmentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			log.Error().Err(err).Str("id", c.Param("id")).Msg("failed to fetch appointment")
			utils.InternalServerError(c, "Failed to fetch appointment")
		}
		return
	}
	utils.Success(c, appointment.View())
}

// CreateAppointment handles POST /api/appointments. The payload is accepted
// as a raw map so the resolver can absorb legacy field names; only
// patient_name, symptoms and the resolved appointment_time are required.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var input map[string]interface{}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	appointment := models.ResolveAppointmentInput(input, models.Timestamp(time.Now()))
	if missing := appointment.MissingRequired(); len(missing) > 0 {
		utils.BadRequest(c, "Missing required fields: "+strings.Join(missing, ", "))
		return
	}

	// Best-effort doctor name denormalization from the directory. A failed
	// lookup leaves the name as submitted.
	if appointment.RequestedDoctorID != nil && appointment.RequestedDoctorName == nil {
		if doctor, err := h.Store.GetDoctorByID(c.Request.Context(), *appointment.RequestedDoctorID); err == nil {
			appointment.RequestedDoctorName = &doctor.Name
		}
	}

	created, err := h.Store.CreateAppointmentRecord(c.Request.Context(), &appointment)
	if err != nil {
		log.Error().Err(err).Msg("failed to create appointment")
		utils.InternalServerError(c, "Failed to create appointment")
		return
	}

	view := created.View()
	h.Hub.Broadcast("created", view)
	utils.Created(c, view)
}

// UpdateAppointment handles PATCH /api/appointments/:id. Only fields present
// in the payload change; updated_at is refreshed regardless.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	columns := models.BuildAppointmentUpdate(updates, models.Timestamp(time.Now()))
	updated, err := h.Store.UpdateAppointmentRecord(c.Request.Context(), c.Param("id"), columns)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			log.Error().Err(err).Str("id", c.Param("id")).Msg("failed to update appointment")
			utils.InternalServerError(c, "Failed to update appointment")
		}
		return
	}

	view := updated.View()
	h.Hub.Broadcast("updated", view)
	utils.Success(c, view)
}

// DeleteAppointment handles DELETE /api/appointments/:id. Hard delete; the
// broadcast carries only the id.
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	id := c.Param("id")
	deleted, err := h.Store.DeleteAppointmentRecord(c.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to delete appointment")
		utils.InternalServerError(c, "Failed to delete appointment")
		return
	}
	if !deleted {
		utils.NotFound(c, "Appointment not found")
		return
	}

	h.Hub.Broadcast("deleted", gin.H{"id": id})
	utils.OK(c)
}

// StreamAppointments handles GET /api/appointments/stream. The connection
// receives a retry directive and an init snapshot, then stays open for
// created/updated/deleted events with a ping every heartbeat interval. The
// only exits are client disconnect and process shutdown.
func (h *AppointmentHandler) StreamAppointments(c *gin.Context) {
	appointments, err := h.Store.ListAppointments(c.Request.Context(), "")
	if err != nil {
		log.Error().Err(err).Msg("failed to load stream snapshot")
		utils.InternalServerError(c, "Failed to open stream")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(c.Writer, "retry: %d\n\n", broadcast.RetryMillis)
	if err := sse.Encode(c.Writer, sse.Event{Event: "init", Data: toViews(appointments)}); err != nil {
		log.Warn().Err(err).Msg("stream client write failed")
		return
	}
	c.Writer.Flush()

	client := h.Hub.Register()
	defer h.Hub.Unregister(client)

	heartbeat := time.NewTicker(broadcast.HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-heartbeat.C:
			if err := sse.Encode(c.Writer, sse.Event{Event: "ping", Data: gin.H{"at": models.Timestamp(time.Now())}}); err != nil {
				log.Warn().Err(err).Msg("stream client write failed")
				return
			}
			c.Writer.Flush()
		case event := <-client.Events():
			if err := sse.Encode(c.Writer, sse.Event{Event: event.Name, Data: event.Data}); err != nil {
				log.Warn().Err(err).Msg("stream client write failed")
				return
			}
			c.Writer.Flush()
		}
	}
}

func toViews(appointments []models.Appointment) []models.AppointmentView {
	views := make([]models.AppointmentView, 0, len(appointments))
	for i := range appointments {
		views = append(views, appointments[i].View())
	}
	return views
}
