package main

import (
	"github.com/gin-gonic/gin"

	"library-backend/internal/domains/book"
	"library-backend/internal/shared"
	"library-backend/internal/shared/middleware"
	"library-backend/pkg/container"
)

func setupRouter(c *container.Container) *gin.Engine {
	if c.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.CORS(),
	)

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	setupAuthRoutes(v1, c)
	setupBookRoutes(v1, c)
	setupUserRoutes(v1, c)
	setupBorrowRoutes(v1, c)

	return router
}

func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.UserHandler.Register)
		auth.POST("/login", c.UserHandler.Login)
	}
}

func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	books := v1.Group("/books")

	// availability stream cố tình để public, client chưa login vẫn xem được
	books.GET("/availability-stream", c.BookHandler.AvailabilityStream)

	authed := books.Group("", middleware.Auth(c.JWTManager))
	{
		read := authed.Group("", middleware.RequireRoles(shared.RoleLibrarian, shared.RolePatron))
		{
			read.GET("", c.BookHandler.List)
			read.GET("/:id", c.BookHandler.GetByID)
			read.GET("/search/title", c.BookHandler.Search(book.SearchByTitle))
			read.GET("/search/author", c.BookHandler.Search(book.SearchByAuthor))
			read.GET("/search/isbn", c.BookHandler.Search(book.SearchByISBN))
			read.GET("/search/genre", c.BookHandler.Search(book.SearchByGenre))
		}

		write := authed.Group("", middleware.RequireRoles(shared.RoleLibrarian))
		{
			write.POST("", c.BookHandler.Create)
			write.PUT("/:id", c.BookHandler.Update)
			write.DELETE("/:id", c.BookHandler.Delete)
		}
	}
}

func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container) {
	users := v1.Group("/users", middleware.Auth(c.JWTManager))

	users.GET("/me", c.UserHandler.Me)

	admin := users.Group("", middleware.RequireRoles(shared.RoleLibrarian))
	{
		admin.GET("", c.UserHandler.List)
		admin.GET("/:id", c.UserHandler.GetByID)
		admin.PUT("/:id", c.UserHandler.Update)
		admin.DELETE("/:id", c.UserHandler.Delete)
	}
}

func setupBorrowRoutes(v1 *gin.RouterGroup, c *container.Container) {
	records := v1.Group("/borrow-records", middleware.Auth(c.JWTManager))

	records.GET("/me", c.BorrowHandler.Me)

	patron := records.Group("", middleware.RequireRoles(shared.RolePatron))
	{
		patron.POST("", c.BorrowHandler.Borrow)
		patron.PUT("/return/:id", c.BorrowHandler.Return)
		patron.GET("/user/:userId", c.BorrowHandler.ListByUser)
	}

	librarian := records.Group("", middleware.RequireRoles(shared.RoleLibrarian))
	{
		librarian.GET("", c.BorrowHandler.List)
		librarian.GET("/overdue", c.BorrowHandler.ListOverdue)
		librarian.GET("/overdue/report", c.BorrowHandler.OverdueReport)
	}
}
