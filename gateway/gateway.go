package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/example/clickmenu/pkg/auth"
	"github.com/example/clickmenu/pkg/config"
	"github.com/example/clickmenu/pkg/discovery"
	"github.com/example/clickmenu/pkg/service"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Services are the domain services the HTTP surface fronts.
type Services struct {
	Orders    service.OrderService
	Menu      service.MenuService
	Stores    service.StoreService
	Analytics service.AnalyticsService
}

type Gateway struct {
	config    *config.Config
	discovery *discovery.ServiceDiscovery
	logger    *zap.Logger
	router    *gin.Engine
	server    *http.Server
	services  Services
	tokens    *auth.TokenIssuer
}

func NewGateway(cfg *config.Config, logger *zap.Logger, disc *discovery.ServiceDiscovery, svc Services, tokens *auth.TokenIssuer) *Gateway {
	gin.SetMode(gin.ReleaseMode)
	useJSONFieldNames()
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))
	router.Use(corsMiddleware(cfg.Gateway.CORS))

	return &Gateway{
		config:    cfg,
		discovery: disc,
		logger:    logger,
		router:    router,
		services:  svc,
		tokens:    tokens,
	}
}

func (g *Gateway) SetupRoutes() {
	g.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := g.router.Group("/api")
	api.GET("/health", g.health)

	public := api.Group("/public")
	{
		public.GET("/store/:storeId", g.getPublicStore)
		public.GET("/store/:storeId/menu", g.getStoreMenu)
		public.GET("/menu", g.getCombinedMenu)
		public.POST("/store/:storeId/orders", g.createOrder)
	}

	api.POST("/merchant/login", g.merchantLogin)
	merchant := api.Group("/merchant", g.requireRole(auth.RoleMerchant))
	{
		merchant.GET("/me", g.merchantProfile)
		merchant.PATCH("/profile", g.updateMerchantProfile)
		merchant.GET("/items", g.listMerchantItems)
		merchant.POST("/items", g.upsertMerchantItem)
		merchant.PATCH("/items/:itemId", g.updateMerchantItem)
		merchant.POST("/items/:itemId/archive", g.archiveMerchantItem)
		merchant.GET("/orders", g.listMerchantOrders)
		merchant.POST("/orders/:requestId/status", g.updateMerchantOrderStatus)
		merchant.GET("/analytics", g.merchantAnalytics)
	}

	api.POST("/admin/login", g.adminLogin)
	admin := api.Group("/admin", g.requireRole(auth.RoleAdmin))
	{
		admin.GET("/stores", g.listStores)
		admin.POST("/stores", g.createStore)
		admin.GET("/stores/summary", g.platformAnalytics)
		admin.POST("/stores/bulk-update", g.bulkUpdateStores)
		admin.POST("/stores/bulk-reset-passcodes", g.bulkResetPasscodes)
		admin.GET("/stores/:storeId", g.getStore)
		admin.PATCH("/stores/:storeId", g.updateStore)
		admin.POST("/reset-password", g.resetPasscode)
		admin.POST("/reset-passcode", g.resetPasscode)
		admin.GET("/orders", g.listAdminOrders)
		admin.POST("/orders/:requestId/status", g.updateAdminOrderStatus)
		admin.GET("/menu-items", g.listAdminItems)
		admin.PATCH("/menu-items/:storeId/:itemId", g.updateAdminItem)
		admin.POST("/menu/:storeId/:itemId/delete", g.deleteAdminItem)
		admin.GET("/summary", g.platformAnalytics)
		admin.GET("/analytics", g.platformAnalytics)
	}

	g.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Handler exposes the router, mainly for httptest.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

func (g *Gateway) Start() error {
	addr := fmt.Sprintf("%s:%d", g.config.Gateway.Host, g.config.Gateway.Port)
	g.server = &http.Server{
		Addr:              addr,
		Handler:           g.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.logger.Info("Gateway starting", zap.String("address", addr))
	if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	return g.server.Shutdown(ctx)
}

// health reports the gateway and, when etcd is reachable, how many order
// RPC instances are registered.
func (g *Gateway) health(c *gin.Context) {
	body := gin.H{"status": "ok", "time": time.Now().UTC()}
	if g.discovery != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		instances, err := g.discovery.Discover(ctx, g.config.Server.Name)
		if err != nil {
			g.logger.Warn("Service discovery failed", zap.Error(err))
			body["rpc_instances"] = nil
		} else {
			body["rpc_instances"] = len(instances)
		}
	}
	respond(c, http.StatusOK, body)
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// corsMiddleware echoes the request origin when it is allowed. "*" allows any.
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowed["*"] || allowed[origin]) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
			c.Writer.Header().Set("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
