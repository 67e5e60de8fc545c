package mockapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/jrsteele09/go-storefront/catalog"
	"github.com/jrsteele09/go-storefront/internal/config"
	"github.com/jrsteele09/go-storefront/mockapi"
	"github.com/jrsteele09/go-storefront/orders"
	"github.com/stretchr/testify/require"
)

type pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type harness struct {
	t      *testing.T
	api    *mockapi.Server
	server *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := mockapi.New(config.New())
	require.NoError(t, api.SeedDemo())
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)
	return &harness{t: t, api: api, server: server}
}

func (h *harness) call(method, path, bearer string, in, out any) int {
	h.t.Helper()
	var body bytes.Buffer
	if in != nil {
		require.NoError(h.t, json.NewEncoder(&body).Encode(in))
	}
	req, err := http.NewRequest(method, h.server.URL+path, &body)
	require.NoError(h.t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(h.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (h *harness) login() pair {
	h.t.Helper()
	var p pair
	status := h.call(http.MethodPost, mockapi.RouteAuthLogin, "", map[string]string{"email": mockapi.DemoEmail, "password": mockapi.DemoPassword}, &p)
	require.Equal(h.t, http.StatusOK, status)
	require.NotEmpty(h.t, p.AccessToken)
	require.NotEmpty(h.t, p.RefreshToken)
	return p
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	h.login()

	status := h.call(http.MethodPost, mockapi.RouteAuthLogin, "", map[string]string{"email": mockapi.DemoEmail, "password": "wrong"}, nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status = h.call(http.MethodPost, mockapi.RouteAuthLogin, "", map[string]any{"email": mockapi.DemoEmail, "extra": true}, nil)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestRefreshRotation(t *testing.T) {
	h := newHarness(t)
	first := h.login()

	var second pair
	status := h.call(http.MethodPost, mockapi.RouteAuthRefresh, "", map[string]string{"refreshToken": first.RefreshToken}, &second)
	require.Equal(t, http.StatusOK, status)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.Equal(t, 1, h.api.RefreshExchanges())

	// A spent refresh token cannot be replayed.
	status = h.call(http.MethodPost, mockapi.RouteAuthRefresh, "", map[string]string{"refreshToken": first.RefreshToken}, nil)
	require.Equal(t, http.StatusUnauthorized, status)

	h.api.RevokeRefreshTokens()
	status = h.call(http.MethodPost, mockapi.RouteAuthRefresh, "", map[string]string{"refreshToken": second.RefreshToken}, nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestOrdersRequireValidToken(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, http.StatusUnauthorized, h.call(http.MethodGet, mockapi.RouteOrders, "", nil, nil))
	require.Equal(t, http.StatusUnauthorized, h.call(http.MethodGet, mockapi.RouteOrders, "garbage", nil, nil))

	p := h.login()
	require.Equal(t, http.StatusOK, h.call(http.MethodGet, mockapi.RouteOrders, p.AccessToken, nil, nil))

	h.api.ExpireAccessTokens()
	require.Equal(t, http.StatusUnauthorized, h.call(http.MethodGet, mockapi.RouteOrders, p.AccessToken, nil, nil))
}

func TestOrderLifecycle(t *testing.T) {
	h := newHarness(t)
	p := h.login()

	var created orders.Order
	status := h.call(http.MethodPost, mockapi.RouteOrders, p.AccessToken, []orders.ItemRequest{{ProductID: 10, Quantity: 2}}, &created)
	require.Equal(t, http.StatusCreated, status)
	require.True(t, created.IsPending())
	require.Equal(t, "Mouse sem fio", created.Items[0].Name)
	require.Equal(t, "Loja Tech", created.Items[0].Seller)

	var updated orders.Order
	path := "/orders/" + strconv.FormatInt(created.ID, 10)
	status = h.call(http.MethodPatch, path, p.AccessToken, []orders.ItemRequest{{ProductID: 10, Quantity: 2}, {ProductID: 11, Quantity: 1}}, &updated)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, updated.Items, 2)
	require.Equal(t, 4500.0, updated.Items[1].Price)

	status = h.call(http.MethodPatch, path, p.AccessToken, []orders.ItemRequest{{ProductID: 10, Quantity: 1}, {ProductID: 10, Quantity: 1}}, nil)
	require.Equal(t, http.StatusBadRequest, status)
	status = h.call(http.MethodPatch, path, p.AccessToken, []orders.ItemRequest{{ProductID: 10, Quantity: 0}}, nil)
	require.Equal(t, http.StatusBadRequest, status)

	require.NoError(t, h.api.SetOrderStatus(created.ID, "PAID"))
	status = h.call(http.MethodPatch, path, p.AccessToken, []orders.ItemRequest{{ProductID: 10, Quantity: 1}}, nil)
	require.Equal(t, http.StatusConflict, status)

	require.Equal(t, http.StatusNoContent, h.call(http.MethodDelete, path, p.AccessToken, nil, nil))
	require.Equal(t, http.StatusNotFound, h.call(http.MethodDelete, path, p.AccessToken, nil, nil))
}

func TestOrdersAreScopedToTheirOwner(t *testing.T) {
	h := newHarness(t)
	_, err := h.api.AddUser("Bia", "bia@example.com", "secret123")
	require.NoError(t, err)

	demo := h.login()
	var created orders.Order
	h.call(http.MethodPost, mockapi.RouteOrders, demo.AccessToken, []orders.ItemRequest{{ProductID: 10, Quantity: 1}}, &created)

	var bia pair
	h.call(http.MethodPost, mockapi.RouteAuthLogin, "", map[string]string{"email": "bia@example.com", "password": "secret123"}, &bia)

	var list []orders.Order
	require.Equal(t, http.StatusOK, h.call(http.MethodGet, mockapi.RouteOrders, bia.AccessToken, nil, &list))
	require.Empty(t, list)
	require.Equal(t, http.StatusNotFound, h.call(http.MethodDelete, "/orders/"+strconv.FormatInt(created.ID, 10), bia.AccessToken, nil, nil))
}

func TestCatalogRoutes(t *testing.T) {
	h := newHarness(t)

	var products []catalog.Product
	require.Equal(t, http.StatusOK, h.call(http.MethodGet, mockapi.RouteProducts, "", nil, &products))
	require.Len(t, products, 4)

	var p catalog.Product
	require.Equal(t, http.StatusOK, h.call(http.MethodGet, "/product/id/11", "", nil, &p))
	require.Equal(t, 4500.0, p.FinalPrice())
	require.Equal(t, http.StatusNotFound, h.call(http.MethodGet, "/product/id/999", "", nil, nil))

	var found []catalog.Product
	require.Equal(t, http.StatusOK, h.call(http.MethodGet, "/product/name/mouse", "", nil, &found))
	require.Len(t, found, 1)
	require.Equal(t, http.StatusNotFound, h.call(http.MethodGet, "/product/name/geladeira", "", nil, nil))
}

func TestFavoritesRoutes(t *testing.T) {
	h := newHarness(t)
	p := h.login()

	require.Equal(t, http.StatusNoContent, h.call(http.MethodPost, mockapi.RouteUserFavorites, p.AccessToken, []int64{10, 13}, nil))
	require.Equal(t, http.StatusBadRequest, h.call(http.MethodPost, mockapi.RouteUserFavorites, p.AccessToken, []int64{999}, nil))

	var list []catalog.Product
	require.Equal(t, http.StatusOK, h.call(http.MethodGet, mockapi.RouteUserFavorites, p.AccessToken, nil, &list))
	require.Len(t, list, 2)

	require.Equal(t, http.StatusNoContent, h.call(http.MethodDelete, mockapi.RouteUserFavorites+"?ids=10", p.AccessToken, nil, nil))
	require.Equal(t, http.StatusOK, h.call(http.MethodGet, mockapi.RouteUserFavorites, p.AccessToken, nil, &list))
	require.Len(t, list, 1)
	require.Equal(t, int64(13), list[0].ID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	h := newHarness(t)
	body := map[string]any{"name": "Demo 2", "email": mockapi.DemoEmail, "password": "secret123"}
	require.Equal(t, http.StatusConflict, h.call(http.MethodPost, mockapi.RouteUser, "", body, nil))

	body["email"] = "new@example.com"
	require.Equal(t, http.StatusCreated, h.call(http.MethodPost, mockapi.RouteUser, "", body, nil))
}

func TestCorsPreflight(t *testing.T) {
	h := newHarness(t)
	req, err := http.NewRequest(http.MethodOptions, h.server.URL+mockapi.RouteOrders, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")
}
