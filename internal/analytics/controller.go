package analytics

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"concertly/internal/shared/utils/response"
)

type Controller interface {
	GetStats(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) GetStats(c *gin.Context) {
	stats, err := ctrl.service.GetStats(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to fetch stats", nil)
		return
	}

	response.Success(c, http.StatusOK, "Stats retrieved successfully", stats)
}
