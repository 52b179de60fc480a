package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"ecommerce-api/controllers"
	"ecommerce-api/middleware"
)

type Controllers struct {
	Auth    *controllers.AuthController
	Cart    *controllers.CartController
	Order   *controllers.OrderController
	Product *controllers.ProductController
	Coupon  *controllers.CouponController
	Pricing *controllers.PricingController
}

// Register wires every route group. The webhook route stays outside the auth
// middleware: it authenticates via the Stripe signature instead.
func Register(r *gin.Engine, c Controllers, jwtSecret string) {
	// gateway callbacks
	r.POST("/webhook-checkout", c.Order.StripeWebhook)

	auth := r.Group("/auth")
	auth.Use(middleware.RateLimit(rate.Every(time.Minute/20), 10))
	auth.POST("/register", c.Auth.Register)
	auth.POST("/login", c.Auth.Login)

	products := r.Group("/products")
	products.GET("", c.Product.List)
	products.GET("/:id", c.Product.GetByID)

	cart := r.Group("/cart")
	cart.Use(middleware.AuthMiddleware(jwtSecret))
	cart.POST("", c.Cart.AddProduct)
	cart.GET("", c.Cart.GetCart)
	cart.DELETE("", c.Cart.ClearCart)
	cart.PUT("/apply-coupon", c.Cart.ApplyCoupon)
	cart.PUT("/:itemId", c.Cart.UpdateItemQuantity)
	cart.DELETE("/:itemId", c.Cart.RemoveItem)

	orders := r.Group("/orders")
	orders.Use(middleware.AuthMiddleware(jwtSecret))
	orders.GET("", c.Order.GetMyOrders)
	orders.GET("/checkout-session/:cartId", c.Order.GetCheckoutSession)
	orders.GET("/:id", c.Order.GetMyOrderByID)
	orders.POST("/:cartId",
		middleware.RateLimit(rate.Every(time.Minute/30), 10),
		c.Order.CreateCashOrder)

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtSecret), middleware.AdminOnly())
	admin.GET("/orders", c.Order.GetAllOrders)
	admin.PUT("/orders/:id/pay", c.Order.MarkPaid)
	admin.PUT("/orders/:id/deliver", c.Order.MarkDelivered)
	admin.POST("/products", c.Product.Create)
	admin.POST("/coupons", c.Coupon.Create)
	admin.GET("/coupons", c.Coupon.List)
	admin.DELETE("/coupons/:name", c.Coupon.Deactivate)
	admin.GET("/pricing-settings", c.Pricing.Get)
	admin.PUT("/pricing-settings", c.Pricing.Update)
}
