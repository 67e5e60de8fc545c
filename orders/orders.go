// Package orders is the typed client of the /orders resource.
package orders

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-storefront/gateway"
)

const ordersPath = "/orders"

// API is the subset of the orders resource the cart needs.
type API interface {
	List(ctx context.Context) ([]Order, error)
	Create(ctx context.Context, items []ItemRequest) (Order, error)
	Update(ctx context.Context, id int64, items []ItemRequest) (Order, error)
	Delete(ctx context.Context, id int64) error
}

var _ API = (*Client)(nil)

type Client struct {
	gw *gateway.Client
}

func NewClient(gw *gateway.Client) *Client {
	return &Client{gw: gw}
}

// List returns every order of the signed-in user.
func (c *Client) List(ctx context.Context) ([]Order, error) {
	var list []Order
	if err := c.gw.DoJSON(ctx, http.MethodGet, ordersPath, nil, &list); err != nil {
		return nil, err
	}
	for _, o := range list {
		// Only the pending order has to satisfy the cart invariants.
		if o.IsPending() {
			if err := o.Validate(); err != nil {
				return nil, err
			}
		}
	}
	return list, nil
}

// Create opens a new order with items.
func (c *Client) Create(ctx context.Context, items []ItemRequest) (Order, error) {
	var o Order
	if err := c.gw.DoJSON(ctx, http.MethodPost, ordersPath, items, &o); err != nil {
		return Order{}, err
	}
	return o, o.Validate()
}

// Update replaces the line list of order id.
func (c *Client) Update(ctx context.Context, id int64, items []ItemRequest) (Order, error) {
	var o Order
	if err := c.gw.DoJSON(ctx, http.MethodPatch, orderPath(id), items, &o); err != nil {
		return Order{}, err
	}
	return o, o.Validate()
}

// Delete removes order id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.gw.DoJSON(ctx, http.MethodDelete, orderPath(id), nil, nil)
}

func orderPath(id int64) string {
	return fmt.Sprintf("%s/%d", ordersPath, id)
}
