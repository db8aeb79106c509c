package routes

import (
	"github.com/gin-gonic/gin"

	"hospital-portal-server/internal/broadcast"
	"hospital-portal-server/internal/handlers"
	"hospital-portal-server/internal/storage"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, store storage.Backend, hub *broadcast.Hub) {
	// Initialize handlers
	appointmentHandler := handlers.NewAppointmentHandler(store, hub)
	doctorHandler := handlers.NewDoctorHandler(store)

	api := router.Group("/api")
	{
		appointmentRoutes := api.Group("/appointments")
		{
			appointmentRoutes.GET("", appointmentHandler.ListAppointments)
			// Registered before the :id route so "stream" is never read as an id
			appointmentRoutes.GET("/stream", appointmentHandler.StreamAppointments)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointment)
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
			appointmentRoutes.PATCH("/:id", appointmentHandler.UpdateAppointment)
			appointmentRoutes.DELETE("/:id", appointmentHandler.DeleteAppointment)
		}

		doctorRoutes := api.Group("/doctors")
		{
			doctorRoutes.GET("", doctorHandler.ListDoctors)
			doctorRoutes.POST("", doctorHandler.CreateDoctor)
			doctorRoutes.PATCH("/:id/availability", doctorHandler.UpdateDoctorAvailability)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "backend": store.Kind()})
	})
}
