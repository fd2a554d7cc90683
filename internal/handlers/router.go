package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/vrjatclg/Time2Eat/internal/logging"
	"github.com/vrjatclg/Time2Eat/internal/middleware"
	"github.com/vrjatclg/Time2Eat/internal/ordering"
	"github.com/vrjatclg/Time2Eat/internal/store"
)

type Deps struct {
	Service     *ordering.Service
	Store       *store.Store
	Images      ImageStore
	Idempotency IdempotencyStore
	RateLimiter *middleware.RateLimiter
	Tokens      TokenConfig
	// UploadDir is served under /public when set.
	UploadDir string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger())

	if d.UploadDir != "" {
		r.Static("/public", d.UploadDir)
	}
	r.GET("/healthz", Healthz(d.Store.Pinger))

	svc := d.Service

	public := r.Group("/")
	if d.RateLimiter != nil {
		public.Use(d.RateLimiter.Middleware())
	}
	{
		public.GET("/menu", GetMenu(svc))
		public.POST("/orders", CreateOrder(svc, d.Idempotency))

		public.GET("/students/:pid", GetStudentStatus(svc))
		public.GET("/students/:pid/cart", GetCart(svc))
		public.PUT("/students/:pid/cart", PutCart(svc))
		public.DELETE("/students/:pid/cart", ClearCart(svc))
		public.POST("/students/:pid/cart/merge", MergeCart(svc))
		public.POST("/students/:pid/cart/items", AddCartItem(svc))
		public.PATCH("/students/:pid/cart/items/:itemId", ChangeCartItem(svc))
		public.DELETE("/students/:pid/cart/items/:itemId", RemoveCartItem(svc))
		public.POST("/students/:pid/checkout", Checkout(svc, d.Idempotency))
		public.GET("/students/:pid/orders", ListStudentOrders(svc))
		public.POST("/students/:pid/orders/:id/cancel", CancelStudentOrder(svc))

		public.POST("/admin/login", AdminLogin(d.Store, d.Tokens))
		public.POST("/admin/refresh", Refresh(d.Store, d.Tokens))
		public.POST("/admin/logout", Logout(d.Store))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(d.Tokens.Secret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true, "email": middleware.StaffEmail(c)})
		})

		admin.GET("/orders", SearchOrders(svc))
		admin.GET("/orders/:id", GetOrder(svc))
		admin.POST("/orders/:id/status", AdvanceOrderStatus(svc))
		admin.POST("/orders/:id/cancel", StaffCancelOrder(svc))
		admin.DELETE("/orders/:id", DeleteOrder(svc))
		admin.POST("/payments/verify", VerifyPayment(svc))

		admin.GET("/students/:pid", GetStudentStatus(svc))
		admin.PUT("/students/:pid/block", SetStudentBlocked(svc))
		admin.POST("/students/:pid/reconcile", ReconcileStudent(svc))

		admin.GET("/menu", AdminListMenu(svc))
		admin.POST("/menu", CreateMenuItem(svc))
		admin.PUT("/menu/:id", UpdateMenuItem(svc))
		admin.POST("/menu/:id/toggle", ToggleMenuItem(svc))
		admin.POST("/menu/:id/image", UploadMenuImage(svc, d.Images))
		admin.DELETE("/menu/:id", DeleteMenuItem(svc, d.Images))
	}

	return r
}
