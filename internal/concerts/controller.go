package concerts

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"concertly/internal/shared/utils/response"
	"concertly/pkg/keylock"
)

type Controller interface {
	CreateConcert(c *gin.Context)
	GetConcert(c *gin.Context)
	GetConcerts(c *gin.Context)
	UpdateConcert(c *gin.Context)
	DeleteConcert(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateConcert(c *gin.Context) {
	var req CreateConcertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	concert, err := ctrl.service.CreateConcert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to create concert", nil)
		return
	}

	response.Success(c, http.StatusCreated, "Concert created successfully", concert)
}

func (ctrl *controller) GetConcert(c *gin.Context) {
	id, err := parseConcertID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid concert ID", nil)
		return
	}

	concert, err := ctrl.service.GetConcert(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrConcertNotFound) {
			response.Error(c, http.StatusNotFound, "Concert not found", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to fetch concert", nil)
		return
	}

	response.Success(c, http.StatusOK, "Concert retrieved successfully", concert)
}

func (ctrl *controller) GetConcerts(c *gin.Context) {
	concerts, err := ctrl.service.GetConcerts(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to fetch concerts", nil)
		return
	}

	response.Success(c, http.StatusOK, "Concerts retrieved successfully", concerts)
}

func (ctrl *controller) UpdateConcert(c *gin.Context) {
	id, err := parseConcertID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid concert ID", nil)
		return
	}

	var req UpdateConcertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	concert, err := ctrl.service.UpdateConcert(c.Request.Context(), id, req)
	if err != nil {
		var capErr *CapacityReductionError
		switch {
		case errors.Is(err, ErrConcertNotFound):
			response.Error(c, http.StatusNotFound, "Concert not found", nil)
		case errors.As(err, &capErr):
			response.Error(c, http.StatusBadRequest, capErr.Error(), gin.H{
				"bookedTickets": capErr.BookedTickets,
			})
		case errors.Is(err, keylock.ErrAcquireTimeout):
			response.Error(c, http.StatusServiceUnavailable, "Concert is busy, please retry", nil)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to update concert", nil)
		}
		return
	}

	response.Success(c, http.StatusOK, "Concert updated successfully", concert)
}

func (ctrl *controller) DeleteConcert(c *gin.Context) {
	id, err := parseConcertID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid concert ID", nil)
		return
	}

	if err := ctrl.service.DeleteConcert(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrConcertNotFound):
			response.Error(c, http.StatusNotFound, "Concert not found", nil)
		case errors.Is(err, keylock.ErrAcquireTimeout):
			response.Error(c, http.StatusServiceUnavailable, "Concert is busy, please retry", nil)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to delete concert", nil)
		}
		return
	}

	response.Success(c, http.StatusOK, "Concert deleted successfully", nil)
}

func parseConcertID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
