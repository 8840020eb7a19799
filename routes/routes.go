package routes

import (
	"time"

	"shawarma-sheesh-api/handlers"
	"shawarma-sheesh-api/middleware"
	"shawarma-sheesh-api/models"

	"github.com/gin-gonic/gin"
)

// OTPLimits bounds how often a code can be requested.
type OTPLimits struct {
	Limiter     middleware.Limiter
	MaxRequests int
	Window      time.Duration
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, otp OTPLimits) {
	r.GET("/health", handlers.Health)

	authRequired := middleware.AuthRequired(h.Tokens, h.DB)

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.GET("/products", h.ListProducts)
		public.GET("/products/:id", h.GetProduct)
		public.GET("/categories", h.ListCategories)
		public.GET("/additions", h.ListAdditions)
		public.GET("/slides", h.ListSlides)
		public.GET("/jobs", h.ListJobs)
		public.POST("/jobs/:id/apply", h.ApplyForJob)
		public.GET("/shipping-locations", h.ListShippingLocations)
		public.GET("/order-states", h.GetStateMachineInfo)

		// signed by the payment provider, no JWT
		public.POST("/payment/callback", h.PaymentCallback)
	}

	// ── Auth ───────────────────────────────────────────────────────
	auth := r.Group("/api/auth")
	{
		auth.POST("/otp/request",
			middleware.RateLimit(otp.Limiter, otp.MaxRequests*5, otp.Window, middleware.IPKey("otp-ip:")),
			middleware.RateLimit(otp.Limiter, otp.MaxRequests, otp.Window, middleware.PhoneKey("otp-phone:")),
			h.RequestOTP)
		auth.POST("/otp/verify", h.VerifyOTP)
		auth.POST("/login", h.Login)
		auth.GET("/me", authRequired, h.GetProfile)
		auth.PUT("/me", authRequired, h.UpdateProfile)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api")
	customer.Use(authRequired, middleware.RoleRequired(models.RoleUser))
	{
		customer.GET("/cart", h.GetCart)
		customer.POST("/cart/items", h.AddCartItem)
		customer.PUT("/cart/items/:itemId", h.UpdateCartItem)
		customer.DELETE("/cart/items/:itemId", h.RemoveCartItem)
		customer.DELETE("/cart", h.ClearCart)

		customer.GET("/addresses", h.ListAddresses)
		customer.POST("/addresses", h.CreateAddress)
		customer.DELETE("/addresses/:id", h.DeleteAddress)

		customer.POST("/orders", h.PlaceOrder)
		customer.GET("/orders", h.GetMyOrders)
		customer.GET("/orders/:id", h.GetOrderDetail)
		customer.PUT("/orders/:id/cancel", h.CancelOrder)

		customer.POST("/payment/session", h.CreatePaymentSession)
		customer.GET("/payment/status/:orderId", h.GetPaymentStatus)
	}

	// ── Staff routes (employee or admin) ───────────────────────────
	staff := r.Group("/api/admin")
	staff.Use(authRequired, middleware.StaffRequired())
	{
		staff.GET("/orders", h.AdminGetAllOrders)
		staff.GET("/orders/:id", h.AdminGetOrder)
		staff.PUT("/orders/:id/status", h.UpdateOrderStatus)
		staff.PUT("/orders/:id/payment", h.UpdateOrderPayment)
		staff.GET("/ws", h.AdminSocket)

		staff.POST("/products", h.CreateProduct)
		staff.PUT("/products/:id", h.UpdateProduct)
		staff.PATCH("/products/:id/stock", h.UpdateProductStock)
		staff.DELETE("/products/:id", h.DeleteProduct)

		staff.POST("/categories", h.CreateCategory)
		staff.PUT("/categories/:id", h.UpdateCategory)
		staff.DELETE("/categories/:id", h.DeleteCategory)

		staff.POST("/additions", h.CreateAddition)
		staff.PUT("/additions/:id", h.UpdateAddition)
		staff.DELETE("/additions/:id", h.DeleteAddition)

		staff.GET("/slides", h.AdminListSlides)
		staff.POST("/slides", h.CreateSlide)
		staff.PUT("/slides/:id", h.UpdateSlide)
		staff.DELETE("/slides/:id", h.DeleteSlide)

		staff.GET("/jobs", h.AdminListJobs)
		staff.POST("/jobs", h.CreateJob)
		staff.PUT("/jobs/:id", h.UpdateJob)
		staff.DELETE("/jobs/:id", h.DeleteJob)
		staff.GET("/jobs/:id/applications", h.ListJobApplications)

		staff.POST("/shipping-locations", h.CreateShippingLocation)
		staff.PUT("/shipping-locations/:id", h.UpdateShippingLocation)
		staff.DELETE("/shipping-locations/:id", h.DeleteShippingLocation)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(authRequired, middleware.RoleRequired(models.RoleAdmin))
	{
		admin.PUT("/orders/:id/force-status", h.AdminForceOrderStatus)
		admin.GET("/users", h.AdminGetAllUsers)
		admin.POST("/users", h.CreateStaffUser)
		admin.DELETE("/users/:id", h.DeleteUser)
	}
}
