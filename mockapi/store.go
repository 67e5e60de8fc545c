package mockapi

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-storefront/catalog"
	"github.com/jrsteele09/go-storefront/orders"
)

var (
	errNotFound     = errors.New("not found")
	errConflict     = errors.New("conflict")
	errInvalidInput = errors.New("invalid input")
)

type orderRecord struct {
	ID     int64
	UserID int64
	Status string
	Items  []orders.ItemRequest
}

// store holds every resource of the mock API in memory.
type store struct {
	users      map[int64]*user
	byEmail    map[string]int64
	suppliers  map[int64]*supplier
	products   map[int64]catalog.Product
	sellers    map[int64]string
	categories []catalog.Category
	orders     map[int64]*orderRecord
	nextID     int64
	lock       sync.RWMutex
}

func newStore() *store {
	return &store{
		users:     make(map[int64]*user),
		byEmail:   make(map[string]int64),
		suppliers: make(map[int64]*supplier),
		products:  make(map[int64]catalog.Product),
		sellers:   make(map[int64]string),
		orders:    make(map[int64]*orderRecord),
		nextID:    1,
	}
}

func (s *store) idLocked() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *store) createUser(u user) (*user, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	email := strings.ToLower(u.Email)
	if _, ok := s.byEmail[email]; ok {
		return nil, fmt.Errorf("%w: email %s already registered", errConflict, u.Email)
	}
	u.ID = s.idLocked()
	u.DateJoined = time.Now()
	stored := u
	s.users[u.ID] = &stored
	s.byEmail[email] = u.ID
	return &stored, nil
}

func (s *store) createSupplier(sp supplier) *supplier {
	s.lock.Lock()
	defer s.lock.Unlock()
	sp.ID = s.idLocked()
	stored := sp
	s.suppliers[sp.ID] = &stored
	return &stored
}

func (s *store) userByID(id int64) (*user, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *store) userByEmail(email string) (*user, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, false
	}
	return s.users[id], true
}

func (s *store) putProduct(p catalog.Product, seller string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.products[p.ID] = p
	s.sellers[p.ID] = seller
	if p.ID >= s.nextID {
		s.nextID = p.ID + 1
	}
}

func (s *store) putCategory(c catalog.Category) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.categories = append(s.categories, c)
}

func (s *store) product(id int64) (catalog.Product, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *store) listProducts(match func(catalog.Product) bool) []catalog.Product {
	s.lock.RLock()
	defer s.lock.RUnlock()
	list := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		if match == nil || match(p) {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (s *store) listCategories() []catalog.Category {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return append([]catalog.Category{}, s.categories...)
}

// checkItemsLocked enforces the order line rules the real API applies.
func (s *store) checkItemsLocked(items []orders.ItemRequest) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: order must have at least one item", errInvalidInput)
	}
	seen := make(map[int64]struct{}, len(items))
	for _, it := range items {
		if _, ok := s.products[it.ProductID]; !ok {
			return fmt.Errorf("%w: product %d does not exist", errInvalidInput, it.ProductID)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: quantity of product %d must be positive", errInvalidInput, it.ProductID)
		}
		if _, dup := seen[it.ProductID]; dup {
			return fmt.Errorf("%w: product %d repeated", errInvalidInput, it.ProductID)
		}
		seen[it.ProductID] = struct{}{}
	}
	return nil
}

func (s *store) createOrder(userID int64, items []orders.ItemRequest) (orders.Order, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.checkItemsLocked(items); err != nil {
		return orders.Order{}, err
	}
	rec := &orderRecord{
		ID:     s.idLocked(),
		UserID: userID,
		Status: orders.StatusPending,
		Items:  append([]orders.ItemRequest(nil), items...),
	}
	s.orders[rec.ID] = rec
	return s.renderLocked(rec), nil
}

func (s *store) updateOrder(userID, id int64, items []orders.ItemRequest) (orders.Order, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	rec, err := s.ownedLocked(userID, id)
	if err != nil {
		return orders.Order{}, err
	}
	if !strings.EqualFold(rec.Status, orders.StatusPending) {
		return orders.Order{}, fmt.Errorf("%w: order %d is %s", errConflict, id, rec.Status)
	}
	if err := s.checkItemsLocked(items); err != nil {
		return orders.Order{}, err
	}
	rec.Items = append([]orders.ItemRequest(nil), items...)
	return s.renderLocked(rec), nil
}

func (s *store) deleteOrder(userID, id int64) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, err := s.ownedLocked(userID, id); err != nil {
		return err
	}
	delete(s.orders, id)
	return nil
}

func (s *store) setOrderStatus(id int64, status string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	rec, ok := s.orders[id]
	if !ok {
		return fmt.Errorf("%w: order %d", errNotFound, id)
	}
	rec.Status = status
	return nil
}

func (s *store) listOrders(userID int64) []orders.Order {
	s.lock.RLock()
	defer s.lock.RUnlock()
	list := []orders.Order{}
	for _, rec := range s.orders {
		if rec.UserID == userID {
			list = append(list, s.renderLocked(rec))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// ownedLocked hides other users' orders behind a 404.
func (s *store) ownedLocked(userID, id int64) (*orderRecord, error) {
	rec, ok := s.orders[id]
	if !ok || rec.UserID != userID {
		return nil, fmt.Errorf("%w: order %d", errNotFound, id)
	}
	return rec, nil
}

func (s *store) renderLocked(rec *orderRecord) orders.Order {
	o := orders.Order{ID: rec.ID, Status: rec.Status, Items: make([]orders.Item, 0, len(rec.Items))}
	for _, it := range rec.Items {
		p := s.products[it.ProductID]
		o.Items = append(o.Items, orders.Item{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Name:      p.Name,
			Price:     p.FinalPrice(),
			Image:     p.ImageURL,
			Seller:    s.sellers[it.ProductID],
		})
	}
	return o
}

func (s *store) favorites(userID int64) ([]catalog.Product, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %d", errNotFound, userID)
	}
	list := make([]catalog.Product, 0, len(u.Favorites))
	for _, id := range u.Favorites {
		if p, ok := s.products[id]; ok {
			list = append(list, p)
		}
	}
	return list, nil
}

func (s *store) addFavorites(userID int64, ids []int64) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %d", errNotFound, userID)
	}
	for _, id := range ids {
		if _, ok := s.products[id]; !ok {
			return fmt.Errorf("%w: product %d does not exist", errInvalidInput, id)
		}
	}
	for _, id := range ids {
		if !containsID(u.Favorites, id) {
			u.Favorites = append(u.Favorites, id)
		}
	}
	return nil
}

func (s *store) removeFavorites(userID int64, ids []int64) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %d", errNotFound, userID)
	}
	kept := u.Favorites[:0]
	for _, id := range u.Favorites {
		if !containsID(ids, id) {
			kept = append(kept, id)
		}
	}
	u.Favorites = kept
	return nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
