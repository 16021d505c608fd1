package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/simplelender/backend/internal/config"
	"github.com/simplelender/backend/internal/http/handlers"
	"github.com/simplelender/backend/internal/http/middleware"
	"github.com/simplelender/backend/internal/version"
	"github.com/simplelender/backend/internal/ws"
)

type Dependencies struct {
	Pinger             handlers.Pinger
	UserResolver       middleware.UserResolver
	AuthHandler        *handlers.AuthHandler
	BorrowerHandler    *handlers.BorrowerHandler
	TransactionHandler *handlers.TransactionHandler
	WSHandler          *ws.Handler
}

var apiRoutes = []string{"/api/auth", "/api/borrower", "/api/transaction", "/api/ws"}

func NewRouter(cfg config.Config, logger *slog.Logger, deps Dependencies) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers.UseJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))
	r.Use(middleware.RequestBodyLimit(cfg.MaxBodyBytes))

	health := handlers.NewHealthHandler(deps.Pinger, cfg.StoreDriver)
	meta := handlers.NewMetaHandler(cfg.Env, version.Version, apiRoutes)

	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/v1/meta", meta.GetMeta)

	if deps.UserResolver != nil {
		requireAuth := middleware.RequireAuth(deps.UserResolver)
		api := r.Group("/api")

		if deps.AuthHandler != nil {
			authGroup := api.Group("/auth")
			authGroup.POST("/signup", deps.AuthHandler.SignUp)
			authGroup.POST("/signin", deps.AuthHandler.SignIn)
			authGroup.GET("/profile", requireAuth, deps.AuthHandler.Profile)
			authGroup.PUT("/profile", requireAuth, deps.AuthHandler.UpdateProfile)
		}

		if deps.BorrowerHandler != nil {
			borrowerGroup := api.Group("/borrower", requireAuth)
			borrowerGroup.POST("", deps.BorrowerHandler.Upsert)
			borrowerGroup.GET("", deps.BorrowerHandler.List)
			borrowerGroup.GET("/:borrowerId", deps.BorrowerHandler.Get)
			borrowerGroup.DELETE("/:borrowerId", deps.BorrowerHandler.Delete)
		}

		if deps.TransactionHandler != nil {
			txnGroup := api.Group("/transaction", requireAuth)
			txnGroup.POST("", deps.TransactionHandler.Add)
			txnGroup.GET("", deps.TransactionHandler.List)
			txnGroup.GET("/summary", deps.TransactionHandler.Summary)
			txnGroup.GET("/:txnId", deps.TransactionHandler.Get)
			txnGroup.PUT("/:txnId", deps.TransactionHandler.Update)
			txnGroup.DELETE("/:txnId", deps.TransactionHandler.Delete)
		}

		if deps.WSHandler != nil {
			api.GET("/ws", middleware.RequireAuthForUpgrade(deps.UserResolver), deps.WSHandler.HandleWebSocket)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "message": "Not found", "error": "not_found"})
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
