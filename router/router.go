package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableside-app/controllers"
	"github.com/yeremiapane/tableside-app/middlewares"
	"github.com/yeremiapane/tableside-app/notify"
	"github.com/yeremiapane/tableside-app/services"
	"gorm.io/gorm"
)

// SetupRouter wires services, controllers and routes. The notifier defaults
// to the websocket hub; tests pass a recorder or the no-op notifier.
func SetupRouter(db *gorm.DB, notifier notify.Notifier, provider services.PaymentProvider, stripe *services.StripeService) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	// 50 requests per second per client IP; registered before any route so
	// gin bakes it into every handler chain.
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	// Services
	qrSvc := services.NewQRService(db)
	sessionSvc := services.NewSessionService(db)
	cartSvc := services.NewCartService(db)
	orderSvc := services.NewOrderService(db, notifier)
	billingSvc := services.NewBillingService(db, notifier)
	paymentSvc := services.NewPaymentService(db, billingSvc, provider, notifier)

	// Controllers
	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db, qrSvc, notifier)
	sessionCtrl := controllers.NewSessionController(db, sessionSvc)
	cartCtrl := controllers.NewCartController(db, cartSvc)
	orderCtrl := controllers.NewOrderController(db, orderSvc)
	billingCtrl := controllers.NewBillingController(db, billingSvc)
	paymentCtrl := controllers.NewPaymentController(paymentSvc, stripe)
	menuCtrl := controllers.NewMenuController(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Catalog browsing needs no credential at all.
	r.GET("/categories", menuCtrl.GetAllCategories)
	r.GET("/menu-items", menuCtrl.GetAllMenuItems)
	r.GET("/menu-items/:item_id", menuCtrl.GetMenuItemByID)

	// Payment provider webhook (authenticated by signature).
	r.POST("/payments/webhook", paymentCtrl.HandleWebhook)

	// ----------------------------------------------------------------
	//                GUEST ROUTES (table QR credential)
	// ----------------------------------------------------------------
	guest := r.Group("/t")
	guest.Use(middlewares.TableTokenMiddleware(qrSvc))
	{
		guest.POST("/scan", sessionCtrl.Scan)

		withSession := guest.Group("/")
		withSession.Use(middlewares.OptionalSessionMiddleware(sessionSvc))
		{
			withSession.GET("/cart", cartCtrl.GetCart)
			withSession.POST("/cart/lines", cartCtrl.AddLine)
			withSession.PATCH("/cart/lines/:line_id", cartCtrl.SetLineQuantity)
			withSession.DELETE("/cart/lines/:line_id", cartCtrl.RemoveLine)
			withSession.DELETE("/cart", cartCtrl.ClearCart)

			withSession.POST("/orders", orderCtrl.PlaceOrder)
			withSession.POST("/cart/submit", orderCtrl.SubmitCart)
			withSession.GET("/orders", orderCtrl.GetTableOrders)

			withSession.POST("/bill-requests", billingCtrl.RequestBill)
			withSession.POST("/payments/intent", paymentCtrl.CreateIntent)
			withSession.POST("/payments/intent/:intent_id/confirm", paymentCtrl.ConfirmIntent)
		}

		requireSession := guest.Group("/")
		requireSession.Use(middlewares.SessionMiddleware(sessionSvc))
		{
			requireSession.GET("/session", sessionCtrl.GetSession)
		}

		guest.GET("/ws", controllers.NewWSController(hubOrNil(notifier)).TableSocket)
	}

	// ----------------------------------------------------------------
	//                      STAFF ROUTES (JWT)
	// ----------------------------------------------------------------
	staff := r.Group("/staff")
	staff.Use(middlewares.AuthMiddleware())
	{
		staff.GET("/profile", userCtrl.GetProfile)

		// Tables & QR
		staff.GET("/tables", tableCtrl.GetAllTables)
		staff.GET("/tables/:table_id", tableCtrl.GetTableByID)
		staff.PATCH("/tables/:table_id", tableCtrl.UpdateTableStatus)
		staff.POST("/tables", middlewares.RequireRoles("admin"), tableCtrl.CreateTable)
		staff.POST("/tables/:table_id/qr", middlewares.RequireRoles("admin", "staff"), tableCtrl.RegenerateQR)

		// Sessions
		staff.GET("/sessions", sessionCtrl.GetActiveSessions)
		staff.POST("/sessions/:session_id/end", sessionCtrl.EndSession)
		staff.POST("/sessions/:session_id/bind", sessionCtrl.BindUser)

		// Orders & kitchen
		staff.GET("/orders", orderCtrl.GetAllOrders)
		staff.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		staff.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
		staff.POST("/order-items/:item_id/accept", middlewares.RequireRoles("admin", "chef"), orderCtrl.AcceptItem)
		staff.POST("/order-items/:item_id/reject", middlewares.RequireRoles("admin", "chef"), orderCtrl.RejectItem)
		staff.GET("/kitchen/display", middlewares.RequireRoles("admin", "staff", "chef"), orderCtrl.GetKitchenDisplay)

		// Settlement
		staff.GET("/tables/:table_id/bill/preview", billingCtrl.PreviewBill)
		staff.POST("/tables/:table_id/settle", billingCtrl.Settle)
		staff.GET("/bills/:bill_id", billingCtrl.GetBillByID)
		staff.GET("/bill-requests", billingCtrl.ListBillRequests)
		staff.PATCH("/bill-requests/:request_id", billingCtrl.HandleBillRequest)

		staff.GET("/ws", controllers.NewWSController(hubOrNil(notifier)).StaffSocket)
	}

	return r
}

// hubOrNil returns the concrete hub when the notifier is one; websocket
// endpoints are inert under a test notifier.
func hubOrNil(notifier notify.Notifier) *notify.Hub {
	if hub, ok := notifier.(*notify.Hub); ok {
		return hub
	}
	return notify.NewHub()
}
