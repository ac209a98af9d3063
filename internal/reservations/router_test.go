package reservations

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func registeredRoutes(t *testing.T) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	ctrl := NewController(nil)
	SetupPublicRoutes(engine.Group("/api"), ctrl)
	SetupAdminRoutes(engine.Group("/api/admin"), ctrl)

	routes := make(map[string]string)
	for _, route := range engine.Routes() {
		routes[route.Method+" "+route.Path] = route.Handler
	}
	return routes
}

func TestRouteLayout(t *testing.T) {
	routes := registeredRoutes(t)

	assert.Contains(t, routes, http.MethodPost+" /api/reservations")
	assert.Contains(t, routes, http.MethodGet+" /api/reservations/:email")
	assert.Contains(t, routes, http.MethodGet+" /api/admin/reservations")
	assert.Contains(t, routes, http.MethodPut+" /api/admin/reservations/:id")
	assert.Contains(t, routes, http.MethodDelete+" /api/admin/reservations/:id")
	assert.NotContains(t, routes, http.MethodPut+" /api/admin/reservations/:id/status")
}
