package reservations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"concertly/internal/concerts"
	"concertly/internal/shared/middleware"
	"concertly/internal/shared/utils/response"
	"concertly/pkg/keylock"
)

type Controller interface {
	CreateReservation(c *gin.Context)
	GetReservationsByEmail(c *gin.Context)
	GetAllReservations(c *gin.Context)
	CancelReservation(c *gin.Context)
	UpdateReservationStatus(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if req.GoogleAuth && !middleware.IsGoogleAuthenticated(c) {
		response.Error(c, http.StatusUnauthorized, "Google authentication required", nil)
		return
	}

	reservation, err := ctrl.service.CreateReservation(c.Request.Context(), req)
	if err != nil {
		var (
			availErr *AvailabilityError
			qtyErr   *QuantityError
		)
		switch {
		case errors.As(err, &qtyErr):
			response.Error(c, http.StatusBadRequest, qtyErr.Error(), gin.H{
				"maxQuantity": qtyErr.Max,
			})
		case errors.Is(err, concerts.ErrConcertNotFound):
			response.Error(c, http.StatusNotFound, "Concert not found", nil)
		case errors.Is(err, ErrBookingClosed):
			response.Error(c, http.StatusBadRequest, "Booking is closed for this concert", nil)
		case errors.As(err, &availErr):
			response.Error(c, http.StatusBadRequest, availErr.Error(), gin.H{
				"available": availErr.Available,
			})
		case errors.Is(err, keylock.ErrAcquireTimeout):
			response.Error(c, http.StatusServiceUnavailable, "Booking is busy, please retry", nil)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to create reservation", nil)
		}
		return
	}

	response.Success(c, http.StatusCreated, "Reservation created successfully", reservation)
}

func (ctrl *controller) GetReservationsByEmail(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		response.Error(c, http.StatusBadRequest, "Email is required", nil)
		return
	}

	reservations, err := ctrl.service.GetReservationsByEmail(c.Request.Context(), email)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to fetch reservations", nil)
		return
	}

	response.Success(c, http.StatusOK, "Reservations retrieved successfully", reservations)
}

func (ctrl *controller) GetAllReservations(c *gin.Context) {
	reservations, err := ctrl.service.GetAllReservations(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to fetch reservations", nil)
		return
	}

	response.Success(c, http.StatusOK, "Reservations retrieved successfully", reservations)
}

func (ctrl *controller) CancelReservation(c *gin.Context) {
	id := c.Param("id")

	reservation, err := ctrl.service.CancelReservation(c.Request.Context(), id)
	if err != nil {
		ctrl.respondStatusError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Reservation cancelled successfully", reservation)
}

func (ctrl *controller) UpdateReservationStatus(c *gin.Context) {
	id := c.Param("id")

	var req UpdateReservationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	reservation, err := ctrl.service.UpdateReservationStatus(c.Request.Context(), id, Status(req.Status))
	if err != nil {
		ctrl.respondStatusError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Reservation status updated successfully", reservation)
}

func (ctrl *controller) respondStatusError(c *gin.Context, err error) {
	var availErr *AvailabilityError
	switch {
	case errors.Is(err, ErrReservationNotFound):
		response.Error(c, http.StatusNotFound, "Reservation not found", nil)
	case errors.Is(err, concerts.ErrConcertNotFound):
		response.Error(c, http.StatusNotFound, "Concert not found", nil)
	case errors.As(err, &availErr):
		response.Error(c, http.StatusBadRequest, availErr.Error(), gin.H{
			"available": availErr.Available,
		})
	case errors.Is(err, keylock.ErrAcquireTimeout):
		response.Error(c, http.StatusServiceUnavailable, "Booking is busy, please retry", nil)
	default:
		response.Error(c, http.StatusInternalServerError, "Failed to update reservation", nil)
	}
}
