package mockapi

import (
	"net/http"

	"github.com/jrsteele09/go-storefront/orders"
)

func (s *Server) ListOrdersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.store.listOrders(userIDFrom(r.Context())))
	}
}

func (s *Server) CreateOrderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var items []orders.ItemRequest
		if !decodeBody(w, r, &items) {
			return
		}
		o, err := s.store.createOrder(userIDFrom(r.Context()), items)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, o)
	}
}

func (s *Server) UpdateOrderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var items []orders.ItemRequest
		if !decodeBody(w, r, &items) {
			return
		}
		o, err := s.store.updateOrder(userIDFrom(r.Context()), id, items)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, o)
	}
}

func (s *Server) DeleteOrderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := s.store.deleteOrder(userIDFrom(r.Context()), id); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
