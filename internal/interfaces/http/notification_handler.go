package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
)

// NotificationFeed bandeja de notificaciones recientes.
type NotificationFeed interface {
	Recent(ctx context.Context, limit int) ([]*entity.Notification, error)
}

// NotificationHandler lista lo que el motor ha notificado.
type NotificationHandler struct {
	feed NotificationFeed
	log  *logger.Logger
}

// NewNotificationHandler construye el handler.
func NewNotificationHandler(feed NotificationFeed, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{feed: feed, log: log}
}

// List godoc
// @Summary      Notificaciones recientes (stock bajo, vencimientos)
// @Tags         notifications
// @Produce      json
// @Param        limit  query  int  false  "Máximo 200 (default 50)"
// @Success      200  {array}  dto.NotificationResponse
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 50)
	if err != nil || limit < 1 {
		return validation(c, "limit debe ser un entero positivo")
	}
	if limit > 200 {
		limit = 200
	}
	list, err := h.feed.Recent(c.UserContext(), limit)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NotificationsFromEntities(list))
}
