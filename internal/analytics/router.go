package analytics

import "github.com/gin-gonic/gin"

// SetupAdminRoutes mounts the stats endpoint on the admin group.
func SetupAdminRoutes(rg *gin.RouterGroup, ctrl Controller) {
	rg.GET("/stats", ctrl.GetStats)
}
