package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// NotificationResponse notificación emitida.
type NotificationResponse struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Title           string          `json:"title"`
	Message         string          `json:"message"`
	ProductID       string          `json:"product_id,omitempty"`
	Location        string          `json:"location,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	DaysUntilExpiry int             `json:"days_until_expiry,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NotificationsFromEntities mapea una lista (nunca devuelve nil).
func NotificationsFromEntities(list []*entity.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, NotificationResponse{
			ID:              n.ID,
			Type:            string(n.Type),
			Title:           n.Title,
			Message:         n.Message,
			ProductID:       n.ProductID,
			Location:        n.Location,
			Quantity:        n.Quantity,
			DaysUntilExpiry: n.DaysUntilExpiry,
			CreatedAt:       n.CreatedAt,
		})
	}
	return out
}
