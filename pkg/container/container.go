package container

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"library-backend/internal/config"
	"library-backend/internal/domains/book"
	bookhandler "library-backend/internal/domains/book/handler"
	bookrepo "library-backend/internal/domains/book/repository"
	bookservice "library-backend/internal/domains/book/service"
	"library-backend/internal/domains/borrow"
	borrowhandler "library-backend/internal/domains/borrow/handler"
	borrowrepo "library-backend/internal/domains/borrow/repository"
	borrowservice "library-backend/internal/domains/borrow/service"
	"library-backend/internal/domains/user"
	userhandler "library-backend/internal/domains/user/handler"
	userrepo "library-backend/internal/domains/user/repository"
	userservice "library-backend/internal/domains/user/service"
	infracache "library-backend/internal/infrastructure/cache"
	infradb "library-backend/internal/infrastructure/database"
	"library-backend/pkg/broadcast"
	"library-backend/pkg/database"
	"library-backend/pkg/jwt"
)

// Container wires every layer together in dependency order.
type Container struct {
	Config *config.Config

	// infrastructure
	Pool        *pgxpool.Pool
	RedisClient *redis.Client
	JWTManager  *jwt.Manager
	Hub         *broadcast.Hub[book.AvailabilityEvent]

	// repositories
	UserRepo   user.Repository
	BookRepo   book.Repository
	BorrowRepo borrow.Repository

	// services
	UserService   user.Service
	BookService   book.Service
	BorrowService borrow.Service

	// handlers
	UserHandler   *userhandler.UserHandler
	BookHandler   *bookhandler.BookHandler
	BorrowHandler *borrowhandler.BorrowHandler
}

func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	// ==================== Infrastructure ====================
	pool, err := infradb.NewPostgresPool(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	c.Pool = pool
	log.Println("✅ Connected to PostgreSQL")

	redisClient, err := infracache.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		pool.Close()
		return nil, err
	}
	c.RedisClient = redisClient
	log.Println("✅ Connected to Redis")

	cacheImpl := infracache.NewRedisCache(redisClient)
	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry)
	c.Hub = broadcast.NewHub[book.AvailabilityEvent]()
	txRunner := database.NewTxRunner(pool)

	// ==================== Repositories ====================
	c.UserRepo = userrepo.NewPostgresRepository(pool)
	c.BookRepo = bookrepo.NewPostgresRepository(pool, cacheImpl)
	c.BorrowRepo = borrowrepo.NewPostgresRepository(pool)

	// ==================== Services ====================
	c.BookService = bookservice.NewBookService(c.BookRepo)
	c.UserService = userservice.NewUserService(c.UserRepo, c.JWTManager, c.BorrowRepo)
	c.BorrowService = borrowservice.NewBorrowService(
		c.BorrowRepo, c.BookRepo, c.UserRepo, txRunner, c.Hub, cfg.Report.OutputPath)

	// ==================== Handlers ====================
	c.UserHandler = userhandler.NewUserHandler(c.UserService)
	c.BookHandler = bookhandler.NewBookHandler(c.BookService, c.Hub)
	c.BorrowHandler = borrowhandler.NewBorrowHandler(c.BorrowService)

	return c, nil
}

// Cleanup releases infrastructure resources in reverse order.
func (c *Container) Cleanup() {
	c.Hub.Close()

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			log.Printf("⚠️ Error closing Redis connection: %v", err)
		}
	}

	if c.Pool != nil {
		c.Pool.Close()
	}

	log.Println("👋 Container cleaned up")
}
