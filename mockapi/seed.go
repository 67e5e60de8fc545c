package mockapi

import (
	"fmt"

	"github.com/jrsteele09/go-storefront/catalog"
	"github.com/jrsteele09/go-storefront/internal/utils"
)

const (
	DemoEmail    = "demo@storefront.dev"
	DemoPassword = "demo123"
)

// SeedDemo loads a small catalog and a demo customer for local development.
func (s *Server) SeedDemo() error {
	electronics := catalog.Category{ID: 1, Name: "Eletrônicos", SubCategories: []catalog.Category{
		{ID: 2, Name: "Notebooks"},
		{ID: 3, Name: "Acessórios"},
	}}
	home := catalog.Category{ID: 4, Name: "Casa"}
	s.AddCategory(electronics)
	s.AddCategory(home)

	products := []struct {
		product catalog.Product
		seller  string
	}{
		{catalog.Product{ID: 10, Name: "Mouse sem fio", Price: 150, ImageURL: "/img/mouse.png", Stock: utils.Ptr(40), Categories: []catalog.Category{{ID: 3, Name: "Acessórios"}}}, "Loja Tech"},
		{catalog.Product{ID: 11, Name: "Notebook 14", Price: 5000, Discount: 10, ImageURL: "/img/notebook.png", Stock: utils.Ptr(5), Categories: []catalog.Category{{ID: 2, Name: "Notebooks"}}}, "Loja Tech"},
		{catalog.Product{ID: 12, Name: "Teclado mecânico", Price: 320, ImageURL: "/img/teclado.png", Stock: utils.Ptr(0), Categories: []catalog.Category{{ID: 3, Name: "Acessórios"}}}, "Loja Tech"},
		{catalog.Product{ID: 13, Name: "Luminária de mesa", Price: 89.9, ImageURL: "/img/luminaria.png", Categories: []catalog.Category{home}}, "Casa Bela"},
	}
	for _, p := range products {
		s.AddProduct(p.product, p.seller)
	}

	if _, err := s.AddUser("Demo", DemoEmail, DemoPassword); err != nil {
		return fmt.Errorf("seed demo user: %w", err)
	}
	return nil
}
