package concerts

import "github.com/gin-gonic/gin"

// SetupPublicRoutes mounts the read-only concert endpoints.
func SetupPublicRoutes(rg *gin.RouterGroup, ctrl Controller) {
	concerts := rg.Group("/concerts")
	{
		concerts.GET("", ctrl.GetConcerts)
		concerts.GET("/:id", ctrl.GetConcert)
	}
}

// SetupAdminRoutes mounts the concert management endpoints. The group is
// expected to carry admin auth middleware.
func SetupAdminRoutes(rg *gin.RouterGroup, ctrl Controller) {
	concerts := rg.Group("/concerts")
	{
		concerts.POST("", ctrl.CreateConcert)
		concerts.PUT("/:id", ctrl.UpdateConcert)
		concerts.DELETE("/:id", ctrl.DeleteConcert)
	}
}
