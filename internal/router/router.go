package router

import (
	"net/http"
	"os"
	"strconv"
	"strings"

	"zkdex-backend/internal/app"
	"zkdex-backend/internal/config"
	"zkdex-backend/internal/handlers"
	"zkdex-backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// corsMiddleware applies the configured origin allowlist and answers
// preflight requests. Environment overrides are resolved at config load.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowedOrigins := []string{"*"}
		allowCredentials := false
		maxAge := 43200
		if config.AppConfig != nil && len(config.AppConfig.CORS.AllowedOrigins) > 0 {
			allowedOrigins = config.AppConfig.CORS.AllowedOrigins
			allowCredentials = config.AppConfig.CORS.AllowCredentials
			if config.AppConfig.CORS.MaxAge > 0 {
				maxAge = config.AppConfig.CORS.MaxAge
			}
		}

		origin := c.GetHeader("Origin")
		if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" && originAllowed(origin, allowedOrigins) {
			c.Header("Access-Control-Allow-Origin", origin)
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, Cache-Control, Accept")
		if allowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		c.Header("Access-Control-Max-Age", strconv.Itoa(maxAge))

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, entry := range allowed {
		if strings.TrimSpace(entry) == origin {
			return true
		}
	}
	return false
}

// SetupRouter builds the HTTP surface from an initialized container
func SetupRouter(container *app.ServiceContainer) *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware())

	logger := container.Logger
	authMiddleware := middleware.NewAuthMiddleware(logger)
	adminMiddleware := middleware.NewAdminAuthMiddleware(logger)

	// The metrics endpoint and TOTP bootstrap stay local unless additional
	// addresses are allowlisted.
	var allowedIPs []string
	if env := os.Getenv("METRICS_ALLOWED_IPS"); env != "" {
		for _, entry := range strings.Split(env, ",") {
			if trimmed := strings.TrimSpace(entry); trimmed != "" {
				allowedIPs = append(allowedIPs, trimmed)
			}
		}
	}
	localhostOnly := middleware.NewLocalhostOnly(logger, allowedIPs)

	authHandler := handlers.NewAuthHandler(logger)
	adminAuthHandler := handlers.NewAdminAuthHandler(logger)
	swapHandler := handlers.NewSwapHandler(container.SwapService, logger)
	bridgeHandler := handlers.NewBridgeHandler(container.BridgeService, logger)
	eventsHandler := handlers.NewEventsHandler(container.Store, container.Hub, logger)

	// ============ Health and observability ============
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/health", handlers.HealthCheckHandler)
	r.GET("/ready", handlers.ReadinessHandler)
	r.GET("/metrics", localhostOnly.Restrict(), gin.WrapH(promhttp.Handler()))

	// ============ Live event feed ============
	r.GET("/ws/events", eventsHandler.StreamHandler)

	// ============ API Routes ============
	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.GET("/nonce", authHandler.GenerateNonceHandler)
			auth.POST("/login", authHandler.AuthenticateHandler)
		}

		swap := api.Group("/swap")
		{
			swap.GET("/config", swapHandler.GetConfigHandler)
			swap.GET("/pools", swapHandler.ListPoolsHandler)
			swap.GET("/pools/:id", swapHandler.GetPoolHandler)
			swap.GET("/commitments/:id", swapHandler.GetCommitmentHandler)

			swap.POST("/pools", authMiddleware.RequireAuth(), swapHandler.CreatePoolHandler)
			swap.POST("/liquidity", authMiddleware.RequireAuth(), swapHandler.AddLiquidityHandler)
			swap.DELETE("/liquidity", authMiddleware.RequireAuth(), swapHandler.RemoveLiquidityHandler)
			swap.POST("/commit", authMiddleware.RequireAuth(), swapHandler.CommitSwapHandler)
			swap.POST("/execute", authMiddleware.RequireAuth(), swapHandler.ExecuteSwapHandler)
			swap.POST("/cancel", authMiddleware.RequireAuth(), swapHandler.CancelSwapHandler)
			swap.GET("/positions", authMiddleware.RequireAuth(), swapHandler.ListPositionsHandler)
		}

		bridge := api.Group("/bridge")
		{
			bridge.GET("/status", bridgeHandler.StatusHandler)
			bridge.GET("/relayers", bridgeHandler.ListRelayersHandler)
			bridge.GET("/transactions/:id", bridgeHandler.GetTransactionHandler)

			bridge.POST("/lock", authMiddleware.RequireAuth(), bridgeHandler.LockAssetsHandler)
			bridge.POST("/relay", authMiddleware.RequireAuth(), bridgeHandler.RelayHandler)
			bridge.POST("/unlock", authMiddleware.RequireAuth(), bridgeHandler.UnlockAssetsHandler)
			bridge.POST("/refund", authMiddleware.RequireAuth(), bridgeHandler.RefundHandler)
			bridge.GET("/transactions", authMiddleware.RequireAuth(), bridgeHandler.ListTransactionsHandler)
		}

		api.GET("/events", eventsHandler.ListEventsHandler)
	}

	// ============ Admin control plane ============
	admin := r.Group("/admin")
	{
		admin.POST("/login", adminAuthHandler.AdminLoginHandler)
		admin.GET("/totp/generate", localhostOnly.Restrict(), adminAuthHandler.GenerateTOTPSecretHandler)

		protected := admin.Group("")
		protected.Use(adminMiddleware.RequireAdminAuth())
		{
			protected.POST("/swap/initialize", swapHandler.InitializeHandler)
			protected.POST("/swap/pause", swapHandler.PauseHandler)
			protected.POST("/swap/unpause", swapHandler.UnpauseHandler)
			protected.POST("/swap/fee", swapHandler.UpdateFeeHandler)

			protected.POST("/bridge/initialize", bridgeHandler.InitializeHandler)
			protected.POST("/bridge/pause", bridgeHandler.PauseHandler)
			protected.POST("/bridge/unpause", bridgeHandler.UnpauseHandler)
			protected.POST("/bridge/fee", bridgeHandler.UpdateFeeHandler)
			protected.POST("/bridge/relayers", bridgeHandler.AddRelayerHandler)
			protected.POST("/bridge/relayers/:authority/slash", bridgeHandler.SlashRelayerHandler)
			protected.POST("/bridge/transactions/fail", bridgeHandler.FailTransactionHandler)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "Endpoint not found",
			"path":    c.Request.URL.Path,
		})
	})

	return r
}
