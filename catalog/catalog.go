// Package catalog browses products and categories. These routes are public; the
// gateway still attaches a bearer token when the user is signed in.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-storefront/gateway"
	storeerrors "github.com/jrsteele09/go-storefront/internal/errors"
)

const (
	productsPath   = "/product"
	categoriesPath = "/categories"
)

type Category struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	SubCategories []Category `json:"subCategories,omitempty"`
}

type Product struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Price       float64    `json:"price"`
	OldPrice    float64    `json:"oldPrice,omitempty"`
	Discount    float64    `json:"discount,omitempty"`
	ImageURL    string     `json:"imgUrl"`
	Stock       *int       `json:"stock,omitempty"`
	Categories  []Category `json:"categories,omitempty"`
}

// InStock reports whether the product can be added to the cart. Products
// without stock information are treated as available.
func (p Product) InStock() bool {
	return p.Stock == nil || *p.Stock > 0
}

// FinalPrice applies the percentage discount to the list price.
func (p Product) FinalPrice() float64 {
	if p.Discount <= 0 {
		return p.Price
	}
	return p.Price - p.Price*p.Discount/100
}

// InCategory reports whether the product belongs to categoryID or one of its
// sub-categories.
func (p Product) InCategory(categoryID int64) bool {
	return containsCategory(p.Categories, categoryID)
}

func containsCategory(categories []Category, id int64) bool {
	for _, c := range categories {
		if c.ID == id || containsCategory(c.SubCategories, id) {
			return true
		}
	}
	return false
}

type Client struct {
	gw *gateway.Client
}

func NewClient(gw *gateway.Client) *Client {
	return &Client{gw: gw}
}

// List returns every product.
func (c *Client) List(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.gw.DoJSON(ctx, http.MethodGet, productsPath, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Get returns product id. A 404 maps to ErrNotFound.
func (c *Client) Get(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := c.gw.DoJSON(ctx, http.MethodGet, fmt.Sprintf("%s/id/%d", productsPath, id), nil, &p)
	if gateway.IsStatus(err, http.StatusNotFound) {
		return Product{}, fmt.Errorf("product %d: %w", id, storeerrors.ErrNotFound)
	}
	if err != nil {
		return Product{}, err
	}
	if p.ID != id {
		return Product{}, fmt.Errorf("product %d: %w", id, storeerrors.ErrMalformedResponse)
	}
	return p, nil
}

// Search finds products by name. An empty query returns nothing without a call.
func (c *Client) Search(ctx context.Context, name string) ([]Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []Product{}, nil
	}
	var products []Product
	path := fmt.Sprintf("%s/name/%s", productsPath, url.PathEscape(name))
	if err := c.gw.DoJSON(ctx, http.MethodGet, path, nil, &products); err != nil {
		if gateway.IsStatus(err, http.StatusNotFound) {
			return []Product{}, nil
		}
		return nil, err
	}
	return products, nil
}

// Categories returns the category tree.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.gw.DoJSON(ctx, http.MethodGet, categoriesPath, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
