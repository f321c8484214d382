package domain

import "github.com/google/uuid"

// Variant is a purchasable SKU of a product. Price is in minor currency units.
type Variant struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
}

// Product groups variants and carries the backorder policy that governs
// whether its variants can be reserved beyond available stock.
type Product struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	AllowBackorders bool      `json:"allow_backorders"`
}
