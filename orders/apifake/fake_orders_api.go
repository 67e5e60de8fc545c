package ordersapifake

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/go-storefront/orders"
)

var _ orders.API = (*FakeOrdersAPI)(nil)

var ErrInjected = errors.New("injected failure")

// Call records one invocation of the fake.
type Call struct {
	Method  string
	OrderID int64
	Items   []orders.ItemRequest
}

// FakeOrdersAPI keeps orders in memory and enriches lines from a product table.
type FakeOrdersAPI struct {
	products map[int64]orders.Item
	orders   map[int64]*orders.Order
	nextID   int64
	calls    []Call
	failOn   map[string]error
	lock     sync.Mutex
}

func NewFakeOrdersAPI(products ...orders.Item) *FakeOrdersAPI {
	f := &FakeOrdersAPI{
		products: make(map[int64]orders.Item),
		orders:   make(map[int64]*orders.Order),
		nextID:   1,
		failOn:   make(map[string]error),
	}
	for _, p := range products {
		f.products[p.ProductID] = p
	}
	return f
}

// SetNextID fixes the id given to the next created order.
func (f *FakeOrdersAPI) SetNextID(id int64) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.nextID = id
}

// Seed stores an order as if the server already had it.
func (f *FakeOrdersAPI) Seed(o orders.Order) {
	f.lock.Lock()
	defer f.lock.Unlock()
	stored := o
	stored.Items = append([]orders.Item(nil), o.Items...)
	f.orders[o.ID] = &stored
	if o.ID >= f.nextID {
		f.nextID = o.ID + 1
	}
}

// FailOn makes every call to method ("List", "Create", "Update", "Delete")
// return err until cleared with a nil err.
func (f *FakeOrdersAPI) FailOn(method string, err error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err == nil {
		delete(f.failOn, method)
		return
	}
	f.failOn[method] = err
}

func (f *FakeOrdersAPI) Calls() []Call {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]Call(nil), f.calls...)
}

// Methods returns the recorded method names in order.
func (f *FakeOrdersAPI) Methods() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	methods := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		methods = append(methods, c.Method)
	}
	return methods
}

func (f *FakeOrdersAPI) ResetCalls() {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls = nil
}

func (f *FakeOrdersAPI) List(_ context.Context) ([]orders.Order, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls = append(f.calls, Call{Method: "List"})
	if err := f.failOn["List"]; err != nil {
		return nil, err
	}
	list := make([]orders.Order, 0, len(f.orders))
	for _, o := range f.orders {
		list = append(list, copyOrder(o))
	}
	return list, nil
}

func (f *FakeOrdersAPI) Create(_ context.Context, items []orders.ItemRequest) (orders.Order, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls = append(f.calls, Call{Method: "Create", Items: items})
	if err := f.failOn["Create"]; err != nil {
		return orders.Order{}, err
	}
	o := &orders.Order{ID: f.nextID, Status: orders.StatusPending, Items: f.enrich(items)}
	f.nextID++
	f.orders[o.ID] = o
	return copyOrder(o), nil
}

func (f *FakeOrdersAPI) Update(_ context.Context, id int64, items []orders.ItemRequest) (orders.Order, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls = append(f.calls, Call{Method: "Update", OrderID: id, Items: items})
	if err := f.failOn["Update"]; err != nil {
		return orders.Order{}, err
	}
	o, ok := f.orders[id]
	if !ok {
		return orders.Order{}, errors.New("order not found")
	}
	o.Items = f.enrich(items)
	return copyOrder(o), nil
}

func (f *FakeOrdersAPI) Delete(_ context.Context, id int64) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls = append(f.calls, Call{Method: "Delete", OrderID: id})
	if err := f.failOn["Delete"]; err != nil {
		return err
	}
	if _, ok := f.orders[id]; !ok {
		return errors.New("order not found")
	}
	delete(f.orders, id)
	return nil
}

func (f *FakeOrdersAPI) enrich(items []orders.ItemRequest) []orders.Item {
	out := make([]orders.Item, 0, len(items))
	for _, req := range items {
		item := f.products[req.ProductID]
		item.ProductID = req.ProductID
		item.Quantity = req.Quantity
		out = append(out, item)
	}
	return out
}

func copyOrder(o *orders.Order) orders.Order {
	c := *o
	c.Items = append([]orders.Item(nil), o.Items...)
	return c
}
