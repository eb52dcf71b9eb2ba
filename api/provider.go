package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/skysailor/internal/domain"
	"github.com/Domenick1991/skysailor/internal/localstore"
	"github.com/Domenick1991/skysailor/internal/validator"
)

// ProviderStore is the local cache exposed to other apps on the device.
type ProviderStore interface {
	ListFlights() ([]domain.Flight, error)
	GetFlight(id string) (*domain.Flight, error)
	PutFlight(f *domain.Flight) error
	UpdateFlight(id string, patch localstore.FlightPatch) (int64, error)
	DeleteFlight(id string) (int64, error)

	ListBookedFlights(userID string) ([]domain.BookedFlight, error)
	GetBookedFlight(id string) (*domain.BookedFlight, error)
	PutBookedFlight(b *domain.BookedFlight) error
	UpdateBookedFlight(id string, patch localstore.BookedFlightPatch) (int64, error)
	SoftDeleteBookedFlight(id string) (int64, error)
}

type ProviderHandler struct {
	store ProviderStore
}

type providerFlight struct {
	ID             string          `json:"id" validate:"notblank"`
	Origin         string          `json:"origin" validate:"notblank"`
	Destination    string          `json:"destination" validate:"notblank"`
	DepartureDate  domain.Date     `json:"departureDate"`
	ReturnDate     *domain.Date    `json:"returnDate"`
	Price          float64         `json:"price" validate:"gte=0"`
	PassengerCount int             `json:"passengerCount" validate:"gte=0"`
	TripType       domain.TripType `json:"tripType" validate:"triptype"`
	Archived       bool            `json:"archived"`
	UserID         string          `json:"userId"`
	Deleted        bool            `json:"deleted"`
}

func NewProviderHandler(store ProviderStore) *ProviderHandler {
	return &ProviderHandler{store: store}
}

func (h *ProviderHandler) Register(router *gin.RouterGroup) {
	flights := router.Group("/flights")
	flights.GET("", h.listFlights)
	flights.GET("/:id", h.getFlight)
	flights.POST("", h.insertFlight)
	flights.PATCH("/:id", h.updateFlight)
	flights.DELETE("/:id", h.deleteFlight)

	booked := router.Group("/bookedFlights")
	booked.GET("", h.listBooked)
	booked.GET("/:id", h.getBooked)
	booked.POST("", h.insertBooked)
	booked.PATCH("/:id", h.updateBooked)
	booked.DELETE("/:id", h.deleteBooked)
}

func (h *ProviderHandler) listFlights(c *gin.Context) {
	flights, err := h.store.ListFlights()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flights)
}

func (h *ProviderHandler) getFlight(c *gin.Context) {
	f, err := h.store.GetFlight(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *ProviderHandler) insertFlight(c *gin.Context) {
	row, ok := bindRow(c)
	if !ok {
		return
	}
	f := &domain.Flight{
		ID: row.ID, Origin: row.Origin, Destination: row.Destination,
		DepartureDate: row.DepartureDate, ReturnDate: row.ReturnDate,
		Price: row.Price, PassengerCount: row.PassengerCount, TripType: row.TripType, Archived: row.Archived,
	}
	if err := h.store.PutFlight(f); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *ProviderHandler) updateFlight(c *gin.Context) {
	var patch localstore.FlightPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	rows, err := h.store.UpdateFlight(c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rowsAffected": rows})
}

func (h *ProviderHandler) deleteFlight(c *gin.Context) {
	rows, err := h.store.DeleteFlight(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rowsAffected": rows})
}

// listBooked requires ?userId= and only serves the caller's own rows.
func (h *ProviderHandler) listBooked(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	requested := c.Query("userId")
	if requested == "" {
		writeError(c, domain.NewValidationError("userId", "userId is required"))
		return
	}
	if requested != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "userId does not match the authenticated user"})
		return
	}

	booked, err := h.store.ListBookedFlights(userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, booked)
}

func (h *ProviderHandler) getBooked(c *gin.Context) {
	b, ok := h.ownedBooked(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *ProviderHandler) insertBooked(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	row, ok := bindRow(c)
	if !ok {
		return
	}
	if row.UserID != "" && row.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "userId does not match the authenticated user"})
		return
	}
	if row.Deleted && !row.Archived {
		writeError(c, domain.NewValidationError("deleted", "only archived flights can be deleted"))
		return
	}

	b := &domain.BookedFlight{
		ID: row.ID, UserID: userID, Origin: row.Origin, Destination: row.Destination,
		DepartureDate: row.DepartureDate, ReturnDate: row.ReturnDate,
		Price: row.Price, PassengerCount: row.PassengerCount, TripType: row.TripType,
		Archived: row.Archived, Deleted: row.Deleted,
	}
	if err := h.store.PutBookedFlight(b); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *ProviderHandler) updateBooked(c *gin.Context) {
	if _, ok := h.ownedBooked(c); !ok {
		return
	}
	var patch localstore.BookedFlightPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	rows, err := h.store.UpdateBookedFlight(c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rowsAffected": rows})
}

// deleteBooked is a soft delete: only archived rows are marked deleted.
func (h *ProviderHandler) deleteBooked(c *gin.Context) {
	if _, ok := h.ownedBooked(c); !ok {
		return
	}
	rows, err := h.store.SoftDeleteBookedFlight(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rowsAffected": rows})
}

func (h *ProviderHandler) ownedBooked(c *gin.Context) (*domain.BookedFlight, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	b, err := h.store.GetBookedFlight(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	if b.UserID != userID {
		writeError(c, domain.ErrNotFound)
		return nil, false
	}
	return b, true
}

func bindRow(c *gin.Context) (*providerFlight, bool) {
	var row providerFlight
	if err := c.ShouldBindJSON(&row); err != nil {
		badRequest(c, err)
		return nil, false
	}
	if err := validator.Struct(row); err != nil {
		writeError(c, err)
		return nil, false
	}
	if row.DepartureDate.IsZero() {
		writeError(c, domain.NewValidationError("departureDate", "departureDate is required"))
		return nil, false
	}
	return &row, true
}
