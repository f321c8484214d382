package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order. Only pending, completed,
// and cancelled carry stock or bonus side effects; the remaining statuses are
// display metadata set by downstream systems.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// Terminal reports whether the status ends the fulfillment lifecycle.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Order is an order header plus its immutable line items. Monetary amounts
// are in minor currency units (cents).
type Order struct {
	ID             uuid.UUID   `json:"id"`
	OrganizationID uuid.UUID   `json:"organization_id"`
	UserID         *uuid.UUID  `json:"user_id,omitempty"`
	OrderNumber    string      `json:"order_number"`
	Status         OrderStatus `json:"status"`
	Currency       string      `json:"currency"`
	Subtotal       int64       `json:"subtotal"`
	TotalAmount    int64       `json:"total_amount"`

	CustomerEmail    string `json:"customer_email,omitempty"`
	CustomerPhone    string `json:"customer_phone,omitempty"`
	CustomerFullName string `json:"customer_full_name,omitempty"`
	ShippingAddress  string `json:"shipping_address,omitempty"`

	Items []OrderItem `json:"items,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItem is a priced order line. Quantity is the number of units reserved
// against the stock ledger; UnitPrice and TotalPrice are in minor units.
type OrderItem struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	VariantID  uuid.UUID `json:"variant_id"`
	LocationID uuid.UUID `json:"location_id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	UnitPrice  int64     `json:"unit_price"`
	TotalPrice int64     `json:"total_price"`
}

// CreateOrderRequest is the payload for creating an order.
type CreateOrderRequest struct {
	Items            []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Currency         string             `json:"currency" validate:"required,len=3"`
	LocationID       uuid.UUID          `json:"location_id" validate:"required"`
	ShippingAddress  string             `json:"shipping_address,omitempty"`
	CustomerEmail    string             `json:"customer_email,omitempty" validate:"omitempty,email"`
	CustomerPhone    string             `json:"customer_phone,omitempty"`
	CustomerFullName string             `json:"customer_full_name,omitempty"`
}

// OrderItemRequest is one requested order line. LocationID overrides the
// request-level location for that line when set.
type OrderItemRequest struct {
	ProductVariantID uuid.UUID  `json:"product_variant_id" validate:"required"`
	Quantity         int        `json:"quantity" validate:"required,gt=0"`
	LocationID       *uuid.UUID `json:"location_id,omitempty"`
}

// ResolveLocation returns the effective stock location for the line.
func (r OrderItemRequest) ResolveLocation(fallback uuid.UUID) uuid.UUID {
	if r.LocationID != nil {
		return *r.LocationID
	}
	return fallback
}
