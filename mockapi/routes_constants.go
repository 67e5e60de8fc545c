package mockapi

// Route path constants
const (
	// Auth Routes
	RouteAuthLogin     = "/auth/login"
	RouteAuthRefresh   = "/auth/refresh"
	RouteAuthFederated = "/auth/firebase"

	// Account Routes
	RouteUser          = "/user"
	RouteUserFavorites = "/user/favorites"
	RouteSuppliers     = "/suppliers"

	// Order Routes
	RouteOrders = "/orders"
	RouteOrder  = "/orders/{id}"

	// Catalog Routes
	RouteProducts      = "/product"
	RouteProductByID   = "/product/id/{id}"
	RouteProductByName = "/product/name/{name}"
	RouteCategories    = "/categories"
)
