package model

// CartLine is a single caller-supplied cart entry. It carries no identity
// beyond the request.
type CartLine struct {
	ProductID    string  `json:"productId"`
	Quantity     int     `json:"quantity"`
	VariantLabel *string `json:"variant,omitempty"`
	Color        *string `json:"color,omitempty"`
}

// ResolvedLine is a cart line resolved against the catalogue. The unit price
// is always taken from the variant record at resolution time, never from
// client input.
type ResolvedLine struct {
	ProductID    string  `json:"productId"`
	VariantID    *string `json:"variantId,omitempty"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Condition    string  `json:"condition"`
	ImageURL     string  `json:"imageUrl"`
	VariantLabel string  `json:"variant"`
	Color        string  `json:"color,omitempty"`
	UnitPrice    float64 `json:"unitPrice"`
	Quantity     int     `json:"quantity"`
}

// TaxConfig is the store-wide tax configuration.
type TaxConfig struct {
	Enabled     bool    `json:"enabled"`
	RatePercent float64 `json:"ratePercent"`
}

// ShippingConfig is the store-wide flat-rate shipping configuration.
type ShippingConfig struct {
	Enabled    bool    `json:"enabled"`
	FlatAmount float64 `json:"flatAmount"`
}

// CartTotals holds the priced cart. Total is always the sum of the three
// already-rounded components.
type CartTotals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}
