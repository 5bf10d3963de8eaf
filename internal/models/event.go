package models

import "time"

// Product event types published after a successful mutation.
const (
	EventProductCreated             = "product.created"
	EventProductUpdated             = "product.updated"
	EventProductAvailabilityToggled = "product.availability_toggled"
	EventProductDeleted             = "product.deleted"
)

// ProductEvent is the envelope sent to the message broker.
type ProductEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Product    Product   `json:"product"`
	OccurredAt time.Time `json:"occurred_at"`
}
