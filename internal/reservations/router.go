package reservations

import "github.com/gin-gonic/gin"

// SetupPublicRoutes mounts the booking and lookup endpoints. The group is
// expected to carry the optional Google auth middleware.
func SetupPublicRoutes(rg *gin.RouterGroup, ctrl Controller) {
	reservations := rg.Group("/reservations")
	{
		reservations.POST("", ctrl.CreateReservation)
		reservations.GET("/:email", ctrl.GetReservationsByEmail)
	}
}

// SetupAdminRoutes mounts the reservation management endpoints.
func SetupAdminRoutes(rg *gin.RouterGroup, ctrl Controller) {
	reservations := rg.Group("/reservations")
	{
		reservations.GET("", ctrl.GetAllReservations)
		reservations.PUT("/:id", ctrl.UpdateReservationStatus)
		reservations.DELETE("/:id", ctrl.CancelReservation)
	}
}
