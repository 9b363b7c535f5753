package server

import "github.com/gin-gonic/gin"

// SetupRoutes registers every /api route on r.
func SetupRoutes(r *gin.Engine, deps Deps) {
	api := r.Group("/api")
	if deps.Limiter != nil {
		api.Use(rateLimit(deps.Limiter))
	}

	api.GET("/health", Health())
	setupAIRoutes(api, deps)
	setupCatalogRoutes(api, deps)
	setupSessionRoutes(api, deps)
}

func setupAIRoutes(api *gin.RouterGroup, deps Deps) {
	ai := api.Group("/ai")
	ai.POST("/compare", CompareProducts(deps.Gateway))
	ai.POST("/safety-audit", SafetyAudit(deps.Gateway))
}

func setupCatalogRoutes(api *gin.RouterGroup, deps Deps) {
	products := api.Group("/catalog/products")
	products.GET("", ListProducts(deps.Catalog))
	products.GET("/:id", GetProduct(deps.Catalog))
}

func setupSessionRoutes(api *gin.RouterGroup, deps Deps) {
	session := api.Group("/session")
	session.Use(withSession(deps.Sessions))
	session.DELETE("", EndSession(deps.Sessions))

	session.GET("/cart", GetCart())
	session.POST("/cart", AddToCart(deps.Catalog))
	session.PUT("/cart/:productId", UpdateCartItem())
	session.DELETE("/cart/:productId", RemoveCartItem(deps.Catalog))
	session.DELETE("/cart", ClearCart())
	session.POST("/wishlist/:productId", ToggleWishlist(deps.Catalog))
	session.POST("/saved/:productId", ToggleSaved(deps.Catalog))
	session.POST("/move-to-cart/:productId", MoveToCart(deps.Catalog))

	session.GET("/comparison", GetComparison())
	session.POST("/comparison/run", RunComparison())
	session.POST("/comparison/:productId", ToggleComparison(deps.Catalog))
	session.DELETE("/comparison", ResetComparison())
	session.POST("/audit/:productId", RunSafetyAudit(deps.Catalog))
	session.DELETE("/audit", CloseSafetyAudit())

	session.GET("/toasts", GetToasts())
	session.DELETE("/toasts/:id", DismissToast())

	if deps.Checkout != nil {
		session.GET("/checkout/quote", GetQuote(deps.Checkout))
		session.POST("/checkout", PlaceOrder(deps.Checkout))
		session.GET("/orders", ListOrders(deps.Checkout))
	}
}
