package cart

import "github.com/jrsteele09/go-storefront/orders"

// Status is the engine's position in its lifecycle:
// Uninitialized → Loading → {Empty, Populated}.
type Status int

const (
	Uninitialized Status = iota
	Loading
	Empty
	Populated
)

func (s Status) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Empty:
		return "empty"
	case Populated:
		return "populated"
	default:
		return "unknown"
	}
}

// Line is one product in the cart. Name, price, image and seller always come
// from the server.
type Line struct {
	ProductID int64
	Quantity  int
	Name      string
	Price     float64
	Image     string
	Seller    string
}

// Subtotal is price × quantity.
func (l Line) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// State is a read-only snapshot of the cart.
type State struct {
	OrderID *int64
	Items   []Line
	Status  Status
}

// Total sums price × quantity over the server-confirmed lines.
func (s State) Total() float64 {
	var total float64
	for _, l := range s.Items {
		total += l.Subtotal()
	}
	return total
}

// Count is the number of units in the cart.
func (s State) Count() int {
	var count int
	for _, l := range s.Items {
		count += l.Quantity
	}
	return count
}

// Line returns the line for productID.
func (s State) Line(productID int64) (Line, bool) {
	for _, l := range s.Items {
		if l.ProductID == productID {
			return l, true
		}
	}
	return Line{}, false
}

func (s State) clone() State {
	c := s
	if s.OrderID != nil {
		id := *s.OrderID
		c.OrderID = &id
	}
	c.Items = append([]Line(nil), s.Items...)
	return c
}

func emptyState() State {
	return State{Status: Empty, Items: []Line{}}
}

func stateFromOrder(o orders.Order) State {
	id := o.ID
	s := State{OrderID: &id, Items: make([]Line, 0, len(o.Items)), Status: Empty}
	for _, item := range o.Items {
		s.Items = append(s.Items, Line{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Name:      item.Name,
			Price:     item.Price,
			Image:     item.Image,
			Seller:    item.Seller,
		})
	}
	if len(s.Items) > 0 {
		s.Status = Populated
	}
	return s
}

// Desired line lists sent to the server. They are always computed from the
// local snapshot, never from a fresh read.

func requestFromLines(lines []Line) []orders.ItemRequest {
	items := make([]orders.ItemRequest, 0, len(lines))
	for _, l := range lines {
		items = append(items, orders.ItemRequest{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return items
}

func withIncrement(lines []Line, productID int64) []orders.ItemRequest {
	items := requestFromLines(lines)
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity++
			return items
		}
	}
	return append(items, orders.ItemRequest{ProductID: productID, Quantity: 1})
}

func withQuantity(lines []Line, productID int64, quantity int) []orders.ItemRequest {
	items := requestFromLines(lines)
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
		}
	}
	return items
}

func without(lines []Line, productID int64) []orders.ItemRequest {
	items := make([]orders.ItemRequest, 0, len(lines))
	for _, item := range requestFromLines(lines) {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	return items
}
