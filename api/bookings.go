package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/skysailor/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	FlightID   string `json:"flightId"`
	Passengers int    `json:"passengers"`
}

type archiveRequest struct {
	Archived *bool `json:"archived"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.listActive)
	router.GET("/archived", h.listArchived)
	router.GET("/:id", h.get)
	router.PATCH("/:id/archive", h.archive)
	router.DELETE("/:id", h.delete)
}

func (h *BookingHandler) create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	booked, err := h.service.Book(c.Request.Context(), booking.BookRequest{
		UserID:     userID,
		FlightID:   req.FlightID,
		Passengers: req.Passengers,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booked)
}

func (h *BookingHandler) listActive(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	booked, err := h.service.ListActive(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, booked)
}

func (h *BookingHandler) listArchived(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	booked, err := h.service.ListArchived(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, booked)
}

func (h *BookingHandler) get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	booked, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, booked)
}

func (h *BookingHandler) archive(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	// An empty body archives.
	var req archiveRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	archived := true
	if req.Archived != nil {
		archived = *req.Archived
	}

	booked, err := h.service.Archive(c.Request.Context(), userID, c.Param("id"), archived)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, booked)
}

// delete soft deletes an archived booking; active ones report zero rows.
func (h *BookingHandler) delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	rows, err := h.service.Delete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rowsAffected": rows})
}
