package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/guzobus/guzo-backend/internal/database"
	"github.com/guzobus/guzo-backend/internal/handlers"
	"github.com/guzobus/guzo-backend/internal/middleware"
	"github.com/guzobus/guzo-backend/internal/repository"
	"github.com/guzobus/guzo-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize database with better error handling
	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Get underlying SQL DB instance
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is optional; caching and live seat updates degrade gracefully
	if err := services.InitRedis(); err != nil {
		log.Printf("Redis initialization warning: %v", err)
	}

	// Initialize Storage (S3 or local fallback)
	if err := services.InitStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	if services.RedisEnabled() {
		go services.RunSeatUpdateRelay(context.Background(), hub)
	}

	store := repository.NewGormStore(db)
	reservations := services.NewReservationService(store)
	trips := services.NewTripService(store)

	// Initialize router
	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	// Serve static files
	r.Static("/uploads", "/app/uploads")

	// Routes
	api := r.Group("/api")
	{
		// Public routes
		api.GET("/trips", handlers.SearchTrips(trips))
		api.GET("/trips/:id", handlers.GetTrip(trips))
		api.GET("/companies/:id", handlers.GetCompany(store))

		// WebSocket connection for live seat updates
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			bookings := protected.Group("/bookings")
			{
				bookings.POST("", handlers.ReserveSeats(reservations))
				bookings.GET("", handlers.GetMyBookings(reservations))
				bookings.GET("/:id", handlers.GetBooking(reservations))
				bookings.POST("/:id/cancel", handlers.CancelBooking(reservations))
			}

			// Operator routes
			operator := protected.Group("/")
			operator.Use(middleware.OperatorOnly())
			{
				operator.POST("/trips", handlers.CreateTrip(trips))
				operator.PATCH("/trips/:id/status", handlers.UpdateTripStatus(trips))
				operator.POST("/companies", handlers.CreateCompany(store))
				operator.POST("/companies/:id/logo", handlers.UploadCompanyLogo(store))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
