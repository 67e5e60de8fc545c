package mockapi

import (
	"net/http"
	"strconv"
	"strings"
)

func (s *Server) ListFavoritesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.store.favorites(userIDFrom(r.Context()))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) AddFavoritesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ids []int64
		if !decodeBody(w, r, &ids) {
			return
		}
		if err := s.store.addFavorites(userIDFrom(r.Context()), ids); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// RemoveFavoritesHandler takes a comma separated ?ids= list.
func (s *Server) RemoveFavoritesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ids []int64
		for _, raw := range strings.Split(r.URL.Query().Get("ids"), ",") {
			if raw = strings.TrimSpace(raw); raw == "" {
				continue
			}
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid id "+raw)
				return
			}
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			writeError(w, http.StatusBadRequest, "ids is required")
			return
		}
		if err := s.store.removeFavorites(userIDFrom(r.Context()), ids); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
