package cart_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jrsteele09/go-storefront/cart"
	storeerrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/orders"
	ordersapifake "github.com/jrsteele09/go-storefront/orders/apifake"
	"github.com/stretchr/testify/require"
)

var (
	camiseta = orders.Item{ProductID: 42, Name: "Camiseta", Price: 150.0, Image: "camiseta.png", Seller: "Loja A"}
	notebook = orders.Item{ProductID: 7, Name: "Notebook", Price: 4500.0, Image: "notebook.png", Seller: "Loja B"}
)

func setupEngine(t *testing.T) (*cart.Engine, *ordersapifake.FakeOrdersAPI) {
	t.Helper()
	api := ordersapifake.NewFakeOrdersAPI(camiseta, notebook)
	return cart.NewEngine(api), api
}

func seedPending(api *ordersapifake.FakeOrdersAPI, id int64, lines ...orders.Item) {
	api.Seed(orders.Order{ID: id, Status: orders.StatusPending, Items: lines})
}

func withQty(item orders.Item, qty int) orders.Item {
	item.Quantity = qty
	return item
}

func TestNewEngineIsUninitialized(t *testing.T) {
	engine, _ := setupEngine(t)
	snap := engine.Snapshot()
	require.Equal(t, cart.Uninitialized, snap.Status)
	require.Nil(t, snap.OrderID)
	require.Empty(t, snap.Items)
}

func TestFetchSelectsPendingOrder(t *testing.T) {
	ctx := context.Background()
	engine, api := setupEngine(t)
	api.Seed(orders.Order{ID: 3, Status: "PAID", Items: []orders.Item{withQty(notebook, 1)}})
	api.Seed(orders.Order{ID: 4, Status: "pending", Items: []orders.Item{withQty(camiseta, 2)}})

	require.NoError(t, engine.Fetch(ctx))
	snap := engine.Snapshot()
	require.Equal(t, cart.Populated, snap.Status)
	require.Equal(t, int64(4), *snap.OrderID)
	require.Len(t, snap.Items, 1)
	require.Equal(t, 2, snap.Items[0].Quantity)
	require.Equal(t, "Camiseta", snap.Items[0].Name)
}

func TestFetchWithoutPendingOrderIsEmpty(t *testing.T) {
	engine, api := setupEngine(t)
	api.Seed(orders.Order{ID: 3, Status: "DELIVERED", Items: []orders.Item{withQty(notebook, 1)}})

	require.NoError(t, engine.Fetch(context.Background()))
	snap := engine.Snapshot()
	require.Equal(t, cart.Empty, snap.Status)
	require.Nil(t, snap.OrderID)
}

func TestFetchFailureResetsToEmpty(t *testing.T) {
	ctx := context.Background()
	engine, api := setupEngine(t)
	seedPending(api, 7, withQty(camiseta, 1))
	require.NoError(t, engine.Fetch(ctx))

	api.FailOn("List", ordersapifake.ErrInjected)
	require.ErrorIs(t, engine.Fetch(ctx), ordersapifake.ErrInjected)

	snap := engine.Snapshot()
	require.Equal(t, cart.Empty, snap.Status)
	require.Nil(t, snap.OrderID)
	require.Empty(t, snap.Items)
}

func TestFreshAddCreatesOrder(t *testing.T) {
	engine, api := setupEngine(t)
	api.SetNextID(7)

	require.NoError(t, engine.Add(context.Background(), 42))

	snap := engine.Snapshot()
	require.Equal(t, int64(7), *snap.OrderID)
	require.Equal(t, cart.Populated, snap.Status)
	require.Equal(t, []cart.Line{{ProductID: 42, Quantity: 1, Name: "Camiseta", Price: 150.0, Image: "camiseta.png", Seller: "Loja A"}}, snap.Items)

	calls := api.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "Create", calls[0].Method)
	require.Equal(t, []orders.ItemRequest{{ProductID: 42, Quantity: 1}}, calls[0].Items)
}

func TestAddIncrementsExistingLine(t *testing.T) {
	ctx := context.Background()
	engine, api := setupEngine(t)
	seedPending(api, 7, withQty(camiseta, 1))
	require.NoError(t, engine.Fetch(ctx))
	api.ResetCalls()

	require.NoError(t, engine.Add(ctx, 42))

	calls := api.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "Update", calls[0].Method)
	require.Equal(t, int64(7), calls[0].OrderID)
	require.Equal(t, []orders.ItemRequest{{ProductID: 42, Quantity: 2}}, calls[0].Items)

	line, ok := engine.Snapshot().Line(42)
	require.True(t, ok)
	require.Equal(t, 2, line.Quantity)
}

func TestRepeatedAddsKeepOneLine(t *testing.T) {
	ctx := context.Background()
	engine, _ := setupEngine(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, engine.Add(ctx, 42))
	}
	require.NoError(t, engine.Add(ctx, 7))

	snap := engine.Snapshot()
	require.Len(t, snap.Items, 2)
	line, ok := snap.Line(42)
	require.True(t, ok)
	require.Equal(t, 5, line.Quantity)
	require.Equal(t, 6, snap.Count())
}

func TestAddRejectsInvalidProduct(t *testing.T) {
	engine, api := setupEngine(t)
	require.ErrorIs(t, engine.Add(context.Background(), 0), storeerrors.ErrInvalidRequest)
	require.Empty(t, api.Calls())
}

func TestAddFailureResyncs(t *testing.T) {
	ctx := context.Background()
	engine, api := setupEngine(t)
	seedPending(api, 7, withQty(camiseta, 1))
	require.NoError(t, engine.Fetch(ctx))
	api.ResetCalls()

	api.FailOn("Update", ordersapifake.ErrInjected)
	require.ErrorIs(t, engine.Add(ctx, 7), ordersapifake.ErrInjected)

	require.Equal(t, []string{"Update", "List"}, api.Methods())
	snap := engine.Snapshot()
	require.Equal(t, int64(7), *snap.OrderID)
	require.Len(t, snap.Items, 1)
	require.Equal(t, 1, snap.Items[0].Quantity)
}

func TestUpdateQuantityFailureResyncs(t *testing.T) {
	ctx := context.Background()
	engine, api := setupEngine(t)
	seedPending(api, 7, withQty(camiseta, 1), withQty(notebook, 1))
	require.NoError(t, engine.Fetch(ctx))
	api.ResetCalls()

	api.FailOn("Update", ordersapifake.ErrInjected)
	require.ErrorIs(t, engine.UpdateQuantity(ctx, camiseta.ProductID, 5), ordersapifake.ErrInjected)

	require.Equal(t, []string{"Update", "List"}, api.Methods())
	line, ok := engine.Snapshot().Line(camiseta.ProductID)
	require.True(t, ok)
	require.Equal(t, 1, line.Quantity)
}

func TestEndedSessionSkipsResync(t *testing.T) {
	ctx := context.Background()
	engine, api := setupEngine(t)
	seedPending(api, 7, withQty(camiseta, 1), withQty(notebook, 1))
	require.NoError(t, engine.Fetch(ctx))
	api.ResetCalls()

	sessionEnded := fmt.Errorf("%w: %w", storeerrors.ErrSessionInvalid, storeerrors.ErrRefreshRejected)
	for _, tc := range []struct {
		method string
		mutate func() error
	}{
		{"Update", func() error { return engine.Add(ctx, camiseta.ProductID) }},
		{"Update", func() error { return engine.Remove(ctx, camiseta.ProductID) }},
		{"Delete", func() error { return engine.Clear(ctx) }},
	} {
		require.NoError(t, engine.Fetch(ctx))
		api.ResetCalls()
		api.FailOn(tc.method, sessionEnded)

		require.ErrorIs(t, tc.mutate(), storeerrors.ErrSessionInvalid)
		require.Equal(t, []string{tc.method}, api.Methods())
		require.Equal(t, cart.Empty, engine.Snapshot().Status)
		require.Nil(t, engine.Snapshot().OrderID)
		api.FailOn(tc.method, nil)
	}
}

func TestCreateFailureResyncs(t *testing.T) {
	engine, api := setupEngine(t)
	api.FailOn("Create", ordersapifake.ErrInjected)

	require.ErrorIs(t, engine.Add(context.Background(), 42), ordersapifake.ErrInjected)
	require.Equal(t, []string{"Create", "List"}, api.Methods())
	require.Equal(t, cart.Empty, engine.Snapshot().Status)
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	engine, api := setupEngine(t)
	seedPending(api, 7, withQty(camiseta, 1), withQty(notebook, 1))
	require.NoError(t, engine.Fetch(ctx))
	api.ResetCalls()

	require.NoError(t, engine.UpdateQuantity(ctx, 42, 4))

	calls := api.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, []orders.ItemRequest{{ProductID: 42, Quantity: 4}, {ProductID: 7, Quantity: 1}}, calls[0].Items)
	line, _ := engine.Snapshot().Line(42)
	require.Equal(t, 4, line.Quantity)
}

func TestUpdateQuantityUnknownProduct(t *testing.T) {
	ctx := context.Background()
	engine, api := setupEngine(t)
	seedPending(api, 7, withQty(camiseta, 1))
	require.NoError(t, engine.Fetch(ctx))
	api.ResetCalls()

	require.ErrorIs(t, engine.UpdateQuantity(ctx, 99, 2), storeerrors.ErrNotFound)
	require.Empty(t, api.Calls())
}

func TestZeroOrNegativeQuantityRemoves(t *testing.T) {
	for _, qty := range []int{0, -1} {
		ctx := context.Background()
		engine, api := setupEngine(t)
		seedPending(api, 7, withQty(camiseta, 3), withQty(notebook, 1))
		require.NoError(t, engine.Fetch(ctx))
		api.ResetCalls()

		require.NoError(t, engine.UpdateQuantity(ctx, 42, qty))

		_, ok := engine.Snapshot().Line(42)
		require.False(t, ok, "quantity %d", qty)
		calls := api.Calls()
		require.Len(t, calls, 1)
		require.Equal(t, []orders.ItemRequest{{ProductID: 7, Quantity: 1}}, calls[0].Items)
		for _, item := range calls[0].Items {
			require.Positive(t, item.Quantity)
		}
	}
}

func TestRemovingLastLineDeletesOrder(t *testing.T) {
	ctx := context.Background()
	engine, api := setupEngine(t)
	seedPending(api, 7, withQty(camiseta, 2))
	require.NoError(t, engine.Fetch(ctx))
	api.ResetCalls()

	require.NoError(t, engine.Remove(ctx, 42))

	require.Equal(t, []string{"Delete"}, api.Methods())
	require.Equal(t, int64(7), api.Calls()[0].OrderID)
	snap := engine.Snapshot()
	require.Nil(t, snap.OrderID)
	require.Equal(t, cart.Empty, snap.Status)

	// The next add starts a new order.
	api.ResetCalls()
	require.NoError(t, engine.Add(ctx, 7))
	require.Equal(t, []string{"Create"}, api.Methods())
}

func TestUpdateQuantityZeroOnLastLineDeletesOrder(t *testing.T) {
	ctx := context.Background()
	engine, api := setupEngine(t)
	seedPending(api, 7, withQty(camiseta, 1))
	require.NoError(t, engine.Fetch(ctx))
	api.ResetCalls()

	require.NoError(t, engine.UpdateQuantity(ctx, 42, 0))
	require.Equal(t, []string{"Delete"}, api.Methods())
	require.Nil(t, engine.Snapshot().OrderID)
}

func TestRemoveFailureResyncs(t *testing.T) {
	ctx := context.Background()
	engine, api := setupEngine(t)
	seedPending(api, 7, withQty(camiseta, 1), withQty(notebook, 1))
	require.NoError(t, engine.Fetch(ctx))
	api.ResetCalls()

	api.FailOn("Update", ordersapifake.ErrInjected)
	require.ErrorIs(t, engine.Remove(ctx, 42), ordersapifake.ErrInjected)
	require.Equal(t, []string{"Update", "List"}, api.Methods())
	require.Len(t, engine.Snapshot().Items, 2)
}

func TestRemoveAbsentProductIsNoop(t *testing.T) {
	ctx := context.Background()
	engine, api := setupEngine(t)
	seedPending(api, 7, withQty(camiseta, 1))
	require.NoError(t, engine.Fetch(ctx))
	api.ResetCalls()

	require.NoError(t, engine.Remove(ctx, 99))
	require.Empty(t, api.Calls())
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	engine, api := setupEngine(t)

	// Nothing on the server yet.
	require.NoError(t, engine.Clear(ctx))
	require.Empty(t, api.Calls())

	seedPending(api, 7, withQty(camiseta, 1), withQty(notebook, 2))
	require.NoError(t, engine.Fetch(ctx))
	require.NoError(t, engine.Clear(ctx))

	snap := engine.Snapshot()
	require.Nil(t, snap.OrderID)
	require.Empty(t, snap.Items)
	require.Equal(t, cart.Empty, snap.Status)
}

func TestClearFailureResyncs(t *testing.T) {
	ctx := context.Background()
	engine, api := setupEngine(t)
	seedPending(api, 7, withQty(camiseta, 1))
	require.NoError(t, engine.Fetch(ctx))
	api.ResetCalls()

	api.FailOn("Delete", ordersapifake.ErrInjected)
	require.ErrorIs(t, engine.Clear(ctx), ordersapifake.ErrInjected)
	require.Equal(t, []string{"Delete", "List"}, api.Methods())
	require.Equal(t, int64(7), *engine.Snapshot().OrderID)
}

func TestResyncFailureLeavesCartEmpty(t *testing.T) {
	ctx := context.Background()
	engine, api := setupEngine(t)
	seedPending(api, 7, withQty(camiseta, 1))
	require.NoError(t, engine.Fetch(ctx))

	api.FailOn("Update", ordersapifake.ErrInjected)
	api.FailOn("List", ordersapifake.ErrInjected)
	require.Error(t, engine.Add(ctx, 42))

	snap := engine.Snapshot()
	require.Equal(t, cart.Empty, snap.Status)
	require.Nil(t, snap.OrderID)
}

func TestTotal(t *testing.T) {
	state := cart.State{Items: []cart.Line{
		{ProductID: 42, Price: 150.0, Quantity: 2},
		{ProductID: 7, Price: 4500.0, Quantity: 1},
	}}
	require.Equal(t, 4800.0, state.Total())
	require.Equal(t, 3, state.Count())
}

func TestEngineTotalUsesServerPrices(t *testing.T) {
	ctx := context.Background()
	engine, api := setupEngine(t)
	seedPending(api, 7, withQty(camiseta, 2), withQty(notebook, 1))
	require.NoError(t, engine.Fetch(ctx))
	require.Equal(t, 4800.0, engine.Total())
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	engine, _ := setupEngine(t)

	var statuses []cart.Status
	cancel := engine.Subscribe(func(s cart.State) { statuses = append(statuses, s.Status) })

	require.NoError(t, engine.Fetch(ctx))
	require.NoError(t, engine.Add(ctx, 42))
	require.Equal(t, []cart.Status{cart.Loading, cart.Empty, cart.Populated}, statuses)

	cancel()
	require.NoError(t, engine.Add(ctx, 42))
	require.Len(t, statuses, 3)
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	engine, _ := setupEngine(t)
	require.NoError(t, engine.Add(ctx, 42))

	snap := engine.Snapshot()
	snap.Items[0].Quantity = 99
	*snap.OrderID = 1000

	fresh := engine.Snapshot()
	require.Equal(t, 1, fresh.Items[0].Quantity)
	require.NotEqual(t, int64(1000), *fresh.OrderID)
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "uninitialized", cart.Uninitialized.String())
	require.Equal(t, "loading", cart.Loading.String())
	require.Equal(t, "empty", cart.Empty.String())
	require.Equal(t, "populated", cart.Populated.String())
}
