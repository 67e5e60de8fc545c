// Package cart keeps a client-side view of the server's pending order and
// mediates every cart mutation against it. After a mutation the server's answer
// replaces local state; when a mutation fails the engine re-reads the server.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	storeerrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/orders"
	"github.com/rs/zerolog/log"
)

// Listener receives a snapshot after every state change.
type Listener func(State)

// Engine is the Cart Reconciliation Engine. Its lock is never held across a
// network call, so concurrent mutations are not serialised: whichever response
// resolves last defines the state.
type Engine struct {
	api       orders.API
	state     State
	listeners map[int]Listener
	nextID    int
	lock      sync.RWMutex
}

func NewEngine(api orders.API) *Engine {
	return &Engine{
		api:       api,
		state:     State{Status: Uninitialized, Items: []Line{}},
		listeners: make(map[int]Listener),
	}
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() State {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return e.state.clone()
}

// Total is the cart total over server-returned prices.
func (e *Engine) Total() float64 {
	return e.Snapshot().Total()
}

// Count is the number of units in the cart.
func (e *Engine) Count() int {
	return e.Snapshot().Count()
}

// Subscribe registers fn for state changes and returns its cancel function.
func (e *Engine) Subscribe(fn Listener) func() {
	e.lock.Lock()
	defer e.lock.Unlock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	return func() {
		e.lock.Lock()
		defer e.lock.Unlock()
		delete(e.listeners, id)
	}
}

// Reset drops local state without touching the server, e.g. on logout.
func (e *Engine) Reset() {
	e.setState(emptyState())
}

// Fetch loads the pending order. Without one, or when loading fails, the cart
// becomes Empty with no order id so stale data never survives a refresh.
func (e *Engine) Fetch(ctx context.Context) error {
	e.setStatus(Loading)

	list, err := e.api.List(ctx)
	if err != nil {
		e.setState(emptyState())
		return fmt.Errorf("fetch cart: %w", err)
	}

	pending, ok := orders.FindPending(list)
	if !ok {
		e.setState(emptyState())
		return nil
	}
	e.setState(stateFromOrder(pending))
	return nil
}

// Add puts one unit of productID in the cart. The first add creates the order.
func (e *Engine) Add(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return fmt.Errorf("add product %d: %w", productID, storeerrors.ErrInvalidRequest)
	}
	snap := e.Snapshot()

	var (
		o   orders.Order
		err error
	)
	if snap.OrderID == nil {
		o, err = e.api.Create(ctx, []orders.ItemRequest{{ProductID: productID, Quantity: 1}})
	} else {
		o, err = e.api.Update(ctx, *snap.OrderID, withIncrement(snap.Items, productID))
	}
	if err != nil {
		return e.resync(ctx, fmt.Errorf("add product %d: %w", productID, err))
	}
	e.setState(stateFromOrder(o))
	return nil
}

// UpdateQuantity sets the quantity of a line already in the cart. A quantity
// of zero or less removes the line; it is never sent to the server.
func (e *Engine) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return e.Remove(ctx, productID)
	}
	snap := e.Snapshot()
	if _, ok := snap.Line(productID); !ok || snap.OrderID == nil {
		return fmt.Errorf("update product %d: %w", productID, storeerrors.ErrNotFound)
	}

	o, err := e.api.Update(ctx, *snap.OrderID, withQuantity(snap.Items, productID, quantity))
	if err != nil {
		return e.resync(ctx, fmt.Errorf("update product %d: %w", productID, err))
	}
	e.setState(stateFromOrder(o))
	return nil
}

// Remove drops productID's line. Removing the last line deletes the order
// instead of sending an empty list. Removing an absent product is a no-op.
func (e *Engine) Remove(ctx context.Context, productID int64) error {
	snap := e.Snapshot()
	if _, ok := snap.Line(productID); !ok || snap.OrderID == nil {
		return nil
	}

	remaining := without(snap.Items, productID)
	if len(remaining) == 0 {
		return e.Clear(ctx)
	}

	o, err := e.api.Update(ctx, *snap.OrderID, remaining)
	if err != nil {
		return e.resync(ctx, fmt.Errorf("remove product %d: %w", productID, err))
	}
	e.setState(stateFromOrder(o))
	return nil
}

// Clear deletes the pending order.
func (e *Engine) Clear(ctx context.Context) error {
	snap := e.Snapshot()
	if snap.OrderID == nil {
		e.setState(emptyState())
		return nil
	}

	if err := e.api.Delete(ctx, *snap.OrderID); err != nil {
		return e.resync(ctx, fmt.Errorf("clear cart: %w", err))
	}
	e.setState(emptyState())
	return nil
}

// resync re-reads the server after a failed mutation and returns cause. A
// mutation that failed because the session ended is not followed by a read:
// the server would only answer 401 again.
func (e *Engine) resync(ctx context.Context, cause error) error {
	if errors.Is(cause, storeerrors.ErrSessionInvalid) {
		e.setState(emptyState())
		return cause
	}
	log.Warn().Err(cause).Msg("cart mutation failed, resynchronising")
	if err := e.Fetch(ctx); err != nil {
		log.Err(err).Msg("cart resync failed")
	}
	return cause
}

func (e *Engine) setStatus(status Status) {
	e.lock.Lock()
	e.state.Status = status
	snap, listeners := e.state.clone(), e.listenersLocked()
	e.lock.Unlock()
	notify(listeners, snap)
}

func (e *Engine) setState(s State) {
	e.lock.Lock()
	e.state = s
	snap, listeners := e.state.clone(), e.listenersLocked()
	e.lock.Unlock()
	notify(listeners, snap)
}

func (e *Engine) listenersLocked() []Listener {
	listeners := make([]Listener, 0, len(e.listeners))
	for _, fn := range e.listeners {
		listeners = append(listeners, fn)
	}
	return listeners
}

func notify(listeners []Listener, s State) {
	for _, fn := range listeners {
		fn(s.clone())
	}
}
