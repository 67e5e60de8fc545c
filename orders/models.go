package orders

import (
	"fmt"
	"strings"

	storeerrors "github.com/jrsteele09/go-storefront/internal/errors"
)

// StatusPending marks the order that backs the cart.
const StatusPending = "PENDING"

// ItemRequest is one line of a create or update payload.
type ItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Item is an order line as returned by the API, enriched with product data.
type Item struct {
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Seller    string  `json:"seller"`
}

// Order is a server-side order resource.
type Order struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
	Items  []Item `json:"items"`
}

// IsPending reports whether the order is the user's open cart.
func (o Order) IsPending() bool {
	return strings.EqualFold(o.Status, StatusPending)
}

// Validate rejects payloads that break the line invariants: every line has a
// positive quantity and a product appears at most once.
func (o Order) Validate() error {
	if o.ID <= 0 {
		return fmt.Errorf("%w: order without id", storeerrors.ErrMalformedResponse)
	}
	seen := make(map[int64]struct{}, len(o.Items))
	for _, item := range o.Items {
		if item.ProductID <= 0 {
			return fmt.Errorf("%w: order %d has a line without product", storeerrors.ErrMalformedResponse, o.ID)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: order %d product %d has quantity %d", storeerrors.ErrMalformedResponse, o.ID, item.ProductID, item.Quantity)
		}
		if _, dup := seen[item.ProductID]; dup {
			return fmt.Errorf("%w: order %d repeats product %d", storeerrors.ErrMalformedResponse, o.ID, item.ProductID)
		}
		seen[item.ProductID] = struct{}{}
	}
	return nil
}

// FindPending returns the first pending order, if any.
func FindPending(list []Order) (Order, bool) {
	for _, o := range list {
		if o.IsPending() {
			return o, true
		}
	}
	return Order{}, false
}
