package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"nhatro_api/internal/config"
	"nhatro_api/internal/handlers"
	"nhatro_api/internal/middleware"
	"nhatro_api/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	if cfg.VNPHashSecret == "" {
		log.Fatal("VNP_HASH_SECRET is not set")
	}

	db, err := services.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	var cache *services.RedisCache
	if cfg.RedisURL != "" {
		cache, err = services.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Redis unavailable, catalog caching disabled: %v", err)
		}
	} else {
		log.Println("Warning: REDIS_URL not set, catalog caching disabled")
	}

	vnpay := services.NewVNPayService(cfg)
	paymentService := services.NewPaymentService(db, vnpay)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.HTTPErrorHandler = middleware.CustomErrorHandler

	packageHandler := handlers.NewPackageHandler(db, cache)
	paymentHandler := handlers.NewPaymentHandler(db, paymentService, cfg.ClientURL)
	postHandler := handlers.NewPostHandler(db)

	requireAuth := middleware.RequireAuth(cfg.JWTSecret)
	requireAdmin := middleware.RequireAuth(cfg.JWTSecret, "Admin")

	api := e.Group("/api")

	packages := api.Group("/packages")
	packages.GET("/active", packageHandler.ListActivePackages)
	packages.GET("/payment-callback", paymentHandler.PaymentCallback)
	packages.GET("/current", packageHandler.GetCurrentPackage, requireAuth)
	packages.GET("/history", packageHandler.GetPackageHistory, requireAuth)
	packages.POST("/payment", paymentHandler.CreatePayment, requireAuth)
	packages.GET("/verify-payment/:paymentId", paymentHandler.VerifyPayment, requireAuth)

	// Admin catalog management
	packages.GET("", packageHandler.ListPackages, requireAdmin)
	packages.GET("/:id", packageHandler.GetPackage, requireAdmin)
	packages.POST("", packageHandler.CreatePackage, requireAdmin)
	packages.PUT("/:id", packageHandler.UpdatePackage, requireAdmin)
	packages.DELETE("/:id", packageHandler.DeletePackage, requireAdmin)

	api.POST("/posts", postHandler.CreatePost, requireAuth, middleware.RequirePostQuota(db))

	log.Printf("Server starting on port %s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
