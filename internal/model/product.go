package model

import "time"

// Product represents an item in the electronics catalogue.
type Product struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Category  string    `json:"category" db:"category"`
	Condition string    `json:"condition" db:"condition"`
	ImageURL  string    `json:"imageUrl" db:"image_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Variant is a priced, stocked configuration of a product (e.g. a specific
// RAM/storage combination). Stock is mutated only through the inventory
// ledger's conditional decrement and compensating increment.
type Variant struct {
	ID        string    `json:"id" db:"id"`
	ProductID string    `json:"productId" db:"product_id"`
	Label     string    `json:"label" db:"label"`
	Price     float64   `json:"price" db:"price"`
	Stock     int       `json:"stock" db:"stock"`
	InStock   bool      `json:"inStock" db:"in_stock"`
	IsDefault bool      `json:"isDefault" db:"is_default"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// FallbackVariantLabel is the synthesised label used for products that have
// no variants of their own, so downstream code never special-cases an empty
// variant set.
const FallbackVariantLabel = "Base configuration"
