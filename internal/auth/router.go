package auth

import "github.com/gin-gonic/gin"

// SetupRoutes mounts the public auth endpoints.
func SetupRoutes(rg *gin.RouterGroup, ctrl Controller) {
	rg.POST("/admin/login", ctrl.Login)
	rg.POST("/auth/verify-google", ctrl.VerifyGoogleToken)
}
