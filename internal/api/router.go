package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/user-management-backend/internal/role"
	roleHttp "github.com/nekogravitycat/user-management-backend/internal/role/http"
	"github.com/nekogravitycat/user-management-backend/internal/user"
	userHttp "github.com/nekogravitycat/user-management-backend/internal/user/http"
)

// Config carries the services and settings the router is built from.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	UserService  user.Service
	RoleService  role.Service
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Recovery) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	r.Use(cors.New(corsConfig(cfg)))

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewUserHandler(cfg.UserService)
	roleHandler := roleHttp.NewHandler(cfg.RoleService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler)
		roleHttp.RegisterRoutes(v1, roleHandler)
	}

	return r
}

// corsConfig allows the local Swagger UI in development and the comma-separated
// PROD_ORIGINS in production.
func corsConfig(cfg Config) cors.Config {
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{
		"http://localhost:8081", // Swagger
	}
	if cfg.IsProduction {
		config.AllowOrigins = nil
		for _, o := range strings.Split(cfg.ProdOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				config.AllowOrigins = append(config.AllowOrigins, o)
			}
		}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	return config
}
