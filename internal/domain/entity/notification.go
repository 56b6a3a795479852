package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// NotificationType tipo de evento entregado al canal de notificaciones.
type NotificationType string

const (
	NotificationLowStock        NotificationType = "LOW_STOCK"
	NotificationExpiringProduct NotificationType = "EXPIRING_PRODUCT"
	NotificationExpiredProduct  NotificationType = "EXPIRED_PRODUCT"
)

// Notification evento fire-and-forget. Su entrega nunca revierte una escritura de stock o de lote.
type Notification struct {
	ID              string
	Type            NotificationType
	Title           string
	Message         string
	ProductID       string
	Location        string
	Quantity        decimal.Decimal
	DaysUntilExpiry int
	CreatedAt       time.Time
}

// ExpiryUrgency etiqueta de urgencia según días al vencimiento.
func ExpiryUrgency(days int) string {
	switch {
	case days <= 3:
		return "CRÍTICO"
	case days <= 7:
		return "URGENTE"
	}
	return "ATENCIÓN"
}

// NewLowStockNotification stock total del producto en o bajo su mínimo.
func NewLowStockNotification(p *Product, location string, total decimal.Decimal, at time.Time) Notification {
	return Notification{
		Type:      NotificationLowStock,
		Title:     "Stock bajo",
		Message:   fmt.Sprintf("El producto %q tiene stock bajo (%s/%s).", p.Name, total, p.MinimumStock),
		ProductID: p.ID,
		Location:  location,
		Quantity:  total,
		CreatedAt: at,
	}
}

// NewExpiryNotification vencido (days <= 0) o próximo a vencer.
func NewExpiryNotification(p *Product, b *Batch, days int, at time.Time) Notification {
	n := Notification{
		ProductID:       p.ID,
		Location:        b.Location,
		Quantity:        b.Quantity,
		DaysUntilExpiry: days,
		CreatedAt:       at,
	}
	if days <= 0 {
		n.Type = NotificationExpiredProduct
		n.Title = "PRODUCTO VENCIDO"
		n.Message = fmt.Sprintf("El producto %q está VENCIDO y no debe venderse. Cantidad: %s un. Ubicación: %s. Retírelo del inventario.",
			p.Name, b.Quantity, b.Location)
		return n
	}
	n.Type = NotificationExpiringProduct
	n.Title = ExpiryUrgency(days) + ": producto próximo a vencer"
	n.Message = fmt.Sprintf("El producto %q vence en %d día(s). Cantidad: %s un. Ubicación: %s.",
		p.Name, days, b.Quantity, b.Location)
	return n
}
