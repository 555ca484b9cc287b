package httpserver

import (
	"context"
	"net/http"
	"time"

	"garud-store/internal/domain"
	"garud-store/internal/logging"
	"garud-store/internal/metrics"
	"garud-store/internal/service/account"
	"garud-store/internal/service/admin"
	"garud-store/internal/service/catalog"
	"garud-store/internal/service/checkout"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type accountService interface {
	Register(ctx context.Context, in account.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, login, password string) (*domain.User, string, error)
	Logout(ctx context.Context, token string) error
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, in account.ProfileInput) (*domain.User, error)
	AccessTTLSeconds() int
}

type catalogService interface {
	Home(ctx context.Context) (*catalog.HomePage, error)
	List(ctx context.Context, in catalog.ListInput) (*catalog.ListResult, error)
	Detail(ctx context.Context, id string) (*catalog.ProductDetail, error)
	AdminList(ctx context.Context) ([]domain.Product, error)
	AdminGet(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in catalog.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in catalog.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	ToggleActive(ctx context.Context, id string) (*domain.Product, error)
}

type cartService interface {
	View(ctx context.Context, userID string) (*domain.Cart, error)
	Add(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error)
	Update(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error)
	Remove(ctx context.Context, userID, productID string) (*domain.Cart, error)
}

type checkoutService interface {
	CheckoutSummary(ctx context.Context, userID string) (*checkout.Summary, error)
	CreatePaymentOrder(ctx context.Context, userID string, addr domain.ShippingAddress) (*checkout.PaymentOrder, error)
	VerifyAndFinalize(ctx context.Context, userID string, in checkout.VerifyInput) (*checkout.FinalizeResult, error)
	GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)
}

type adminService interface {
	Dashboard(ctx context.Context) (*admin.Dashboard, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string) (*domain.Order, error)
}

// Deps bundles the services the router dispatches to.
type Deps struct {
	DB          Pinger
	Accounts    accountService
	Catalog     catalogService
	Carts       cartService
	Checkout    checkoutService
	Admin       adminService
	Metrics     *metrics.Recorder
	CORSOrigins []string
	// AuthPerMinute caps login and register attempts per client IP; <= 0 disables the limit.
	AuthPerMinute int
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, deps Deps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(logging.GinMiddleware(logger), logging.Recovery(logger))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.GinMiddleware())
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(corsConfig(deps.CORSOrigins)))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.DB))

	h := &handlers{deps: deps, logger: logger.Named("handlers")}
	authn := authMiddleware(deps.Accounts)
	limited := rateLimit(newIPLimiter(deps.AuthPerMinute))

	auth := router.Group("/auth")
	auth.POST("/register", limited, h.register)
	auth.POST("/login", limited, h.login)
	auth.POST("/logout", authn, h.logout)
	auth.GET("/profile", authn, h.profile)
	auth.PUT("/profile", authn, h.updateProfile)

	router.GET("/home", h.home)
	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.productDetail)

	cart := router.Group("/cart", authn)
	cart.GET("", h.viewCart)
	cart.POST("/add/:productId", h.addToCart)
	cart.POST("/update/:productId", h.updateCart)
	cart.POST("/remove/:productId", h.removeFromCart)

	pay := router.Group("/payment", authn)
	pay.GET("/checkout", h.checkoutSummary)
	pay.POST("/create-order", h.createOrder)
	pay.POST("/verify-payment", h.verifyPayment)
	pay.GET("/order-success/:id", h.orderSuccess)
	pay.GET("/my-orders", h.myOrders)

	adm := router.Group("/admin", authn, requireAdmin())
	adm.GET("", h.dashboard)
	adm.GET("/products", h.adminProducts)
	adm.POST("/products", h.adminCreateProduct)
	adm.GET("/products/:id", h.adminGetProduct)
	adm.PUT("/products/:id", h.adminUpdateProduct)
	adm.DELETE("/products/:id", h.adminDeleteProduct)
	adm.POST("/products/:id/toggle", h.adminToggleProduct)
	adm.GET("/orders", h.adminOrders)
	adm.POST("/orders/:id/status", h.adminUpdateOrderStatus)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "reason": "not_found"})
	})

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

type handlers struct {
	deps   Deps
	logger *zap.Logger
}
