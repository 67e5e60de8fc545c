package mockapi

import "net/http"

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("OPTIONS /", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {}, s.APIMiddleware()...))

	// AUTH
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthFederated, ChainMiddleware(s.FederatedLoginHandler(), s.APIMiddleware()...))

	// ACCOUNTS
	s.RegisterRouteHandler("POST "+RouteUser, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSuppliers, ChainMiddleware(s.RegisterSupplierHandler(), s.APIMiddleware()...))

	// CATALOG
	s.RegisterRouteHandler("GET "+RouteProducts, ChainMiddleware(s.ListProductsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteProductByID, ChainMiddleware(s.GetProductHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteProductByName, ChainMiddleware(s.SearchProductsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteCategories, ChainMiddleware(s.ListCategoriesHandler(), s.APIMiddleware()...))

	// ORDERS (bearer token required)
	s.RegisterRouteHandler("GET "+RouteOrders, ChainMiddleware(s.ListOrdersHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteOrders, ChainMiddleware(s.CreateOrderHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("PATCH "+RouteOrder, ChainMiddleware(s.UpdateOrderHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("DELETE "+RouteOrder, ChainMiddleware(s.DeleteOrderHandler(), s.APIMiddleware(s.RequireAuth())...))

	// FAVORITES (bearer token required)
	s.RegisterRouteHandler("GET "+RouteUserFavorites, ChainMiddleware(s.ListFavoritesHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteUserFavorites, ChainMiddleware(s.AddFavoritesHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("DELETE "+RouteUserFavorites, ChainMiddleware(s.RemoveFavoritesHandler(), s.APIMiddleware(s.RequireAuth())...))
}
