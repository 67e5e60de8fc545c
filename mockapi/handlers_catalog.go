package mockapi

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-storefront/catalog"
)

func (s *Server) ListProductsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.store.listProducts(nil))
	}
}

func (s *Server) GetProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		p, ok := s.store.product(id)
		if !ok {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// SearchProductsHandler matches names case-insensitively and answers 404 when
// nothing matches, as the storefront API does.
func (s *Server) SearchProductsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.ToLower(strings.TrimSpace(r.PathValue("name")))
		found := s.store.listProducts(func(p catalog.Product) bool {
			return strings.Contains(strings.ToLower(p.Name), query)
		})
		if len(found) == 0 {
			writeError(w, http.StatusNotFound, "no products match "+query)
			return
		}
		writeJSON(w, http.StatusOK, found)
	}
}

func (s *Server) ListCategoriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.store.listCategories())
	}
}
