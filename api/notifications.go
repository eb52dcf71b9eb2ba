package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/skysailor/internal/service/notify"
)

// NotificationHandler turns reminders for the current user's upcoming
// bookings on and off.
type NotificationHandler struct {
	scheduler notify.SchedulerUseCase
}

func NewNotificationHandler(scheduler notify.SchedulerUseCase) *NotificationHandler {
	return &NotificationHandler{scheduler: scheduler}
}

func (h *NotificationHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.enable)
	router.DELETE("", h.disable)
}

func (h *NotificationHandler) enable(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	n, err := h.scheduler.ScheduleAll(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scheduled": n})
}

func (h *NotificationHandler) disable(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	n, err := h.scheduler.CancelAll(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": n})
}
