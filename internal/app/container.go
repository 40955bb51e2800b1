package app

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/user-management-backend/internal/api"
	"github.com/nekogravitycat/user-management-backend/internal/auth"
	"github.com/nekogravitycat/user-management-backend/internal/role"
	"github.com/nekogravitycat/user-management-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	// DBPool backs the stores with Postgres. A nil pool selects the in-memory stores.
	DBPool      *pgxpool.Pool
	BcryptCost  int
	MaxPageSize int
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router      *gin.Engine
	UserService user.Service
	RoleService role.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)

	var (
		userRepo user.Repository
		roleRepo role.Repository
	)
	if cfg.DBPool != nil {
		userRepo = user.NewPgxRepository(cfg.DBPool)
		roleRepo = role.NewPgxRepository(cfg.DBPool)
	} else {
		userRepo = user.NewMemoryRepository()
		roleRepo = role.NewMemoryRepository()
	}

	// Role Module
	roleService := role.NewService(roleRepo)

	// User Module
	userService := user.NewService(userRepo, passwordHasher, roleService, cfg.MaxPageSize)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		UserService:  userService,
		RoleService:  roleService,
	})

	return &Container{
		Router:      router,
		UserService: userService,
		RoleService: roleService,
	}
}
