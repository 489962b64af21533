package catalog

import "context"

type Product struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	OldPrice *float64 `json:"old_price,omitempty"`
	Category string   `json:"category"`
	Image    string   `json:"image"`
	Rating   float64  `json:"rating"`
	InStock  bool     `json:"in_stock"`
}

// Resolver looks up products by id. A missing product is reported via the
// bool, not an error, so callers can tell absence from a failed lookup.
type Resolver interface {
	Resolve(ctx context.Context, id string) (Product, bool, error)
	List(ctx context.Context) ([]Product, error)
}
