package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/skysailor/internal/service/offers"
)

type OfferHandler struct {
	service offers.OfferUseCase
}

func NewOfferHandler(service offers.OfferUseCase) *OfferHandler {
	return &OfferHandler{service: service}
}

func (h *OfferHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.PUT("/:id/favorite", h.toggleFavorite)
}

func (h *OfferHandler) list(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *OfferHandler) toggleFavorite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	on, err := h.service.ToggleFavorite(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "isFavorite": on})
}
