// Package favorites keeps the signed-in user's favourite products in sync with
// /user/favorites.
package favorites

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/jrsteele09/go-storefront/catalog"
	"github.com/jrsteele09/go-storefront/gateway"
	storeerrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/sessions"
)

const favoritesPath = "/user/favorites"

type Client struct {
	gw        *gateway.Client
	session   *sessions.Session
	favorites []catalog.Product
	lock      sync.RWMutex
}

func NewClient(gw *gateway.Client) *Client {
	return &Client{gw: gw, session: gw.Session(), favorites: []catalog.Product{}}
}

// Reset forgets the local favourites, e.g. when the session ends.
func (c *Client) Reset() {
	c.set([]catalog.Product{})
}

// List returns the locally known favourites.
func (c *Client) List() []catalog.Product {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return append([]catalog.Product(nil), c.favorites...)
}

// IsFavorite reports whether productID is a favourite.
func (c *Client) IsFavorite(productID int64) bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return indexOf(c.favorites, productID) >= 0
}

// Fetch reloads favourites. Signed-out users and failed loads end with an
// empty list.
func (c *Client) Fetch(ctx context.Context) error {
	if !c.session.Authenticated(ctx) {
		c.set([]catalog.Product{})
		return nil
	}
	var products []catalog.Product
	if err := c.gw.DoJSON(ctx, http.MethodGet, favoritesPath, nil, &products); err != nil {
		c.set([]catalog.Product{})
		return fmt.Errorf("fetch favorites: %w", err)
	}
	c.set(products)
	return nil
}

// Add marks product as favourite.
func (c *Client) Add(ctx context.Context, product catalog.Product) error {
	if !c.session.Authenticated(ctx) {
		return storeerrors.ErrNotAuthenticated
	}
	if err := c.gw.DoJSON(ctx, http.MethodPost, favoritesPath, []int64{product.ID}, nil); err != nil {
		return fmt.Errorf("add favorite %d: %w", product.ID, err)
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	if indexOf(c.favorites, product.ID) < 0 {
		c.favorites = append(c.favorites, product)
	}
	return nil
}

// Remove unmarks the given products.
func (c *Client) Remove(ctx context.Context, productIDs ...int64) error {
	if len(productIDs) == 0 {
		return nil
	}
	if !c.session.Authenticated(ctx) {
		return storeerrors.ErrNotAuthenticated
	}
	ids := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	query := url.Values{"ids": {strings.Join(ids, ",")}}
	if err := c.gw.DoJSON(ctx, http.MethodDelete, favoritesPath+"?"+query.Encode(), nil, nil); err != nil {
		return fmt.Errorf("remove favorites: %w", err)
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	for _, id := range productIDs {
		if i := indexOf(c.favorites, id); i >= 0 {
			c.favorites = append(c.favorites[:i], c.favorites[i+1:]...)
		}
	}
	return nil
}

// Toggle adds or removes product and reports whether it is now a favourite.
func (c *Client) Toggle(ctx context.Context, product catalog.Product) (bool, error) {
	if c.IsFavorite(product.ID) {
		if err := c.Remove(ctx, product.ID); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := c.Add(ctx, product); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) set(products []catalog.Product) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.favorites = products
}

func indexOf(products []catalog.Product, id int64) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
