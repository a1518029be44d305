package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"lookbook-service/internal/clients"
	"lookbook-service/internal/config"
	"lookbook-service/internal/editor"
	"lookbook-service/internal/events"
	"lookbook-service/internal/handlers"
	"lookbook-service/internal/middleware"
	"lookbook-service/internal/profile"
	"lookbook-service/internal/repository"
	"lookbook-service/internal/staging"
)

// @title Lookbook Service API
// @version 1.0.0
// @description Storefront and dashboard API for influencer affiliate lookbooks

// @host localhost:8088
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	// Initialize logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client for the storefront cache
	var redisClient *redis.Client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (caching disabled)", err)
	} else {
		redisClient = redis.NewClient(redisOpts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("WARNING: Failed to connect to Redis: %v (caching degraded)", err)
		} else {
			log.Println("✓ Redis connected successfully")
		}
		cancel()
	}

	// Initialize backend clients
	productsClient := clients.NewProductsClient(cfg.BackendURL)
	ootdsClient := clients.NewOotdsClient(cfg.BackendURL)
	mediaClient := clients.NewMediaClient(cfg.BackendURL)
	usersClient := clients.NewUsersClient(cfg.BackendURL)

	// Initialize event publisher only if NATS_URL is set
	var eventsPublisher *events.Publisher
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		eventsPublisher, err = events.NewPublisher(natsURL)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without events)", err)
		} else {
			log.Println("✓ Events publisher initialized (NATS connected)")
		}
	} else {
		log.Println("NATS_URL not set, skipping event publishing initialization")
	}
	defer eventsPublisher.Close()

	// Initialize profile image hosting
	images, err := profile.NewImages(cfg.CloudinaryURL)
	if err != nil {
		log.Fatal("Failed to initialize image hosting:", err)
	}
	if images == nil {
		log.Println("CLOUDINARY_URL not set, profile image uploads disabled")
	}

	// Storefront cache and editor sessions
	storefrontRepo := repository.NewStorefrontRepository(productsClient, ootdsClient, usersClient, redisClient, cfg.MaxPageSize)

	stager := staging.NewStager(cfg.StagingDir, staging.Limits{
		MaxPerPost:   cfg.MaxMediaPerPost,
		MaxImageSize: cfg.MaxImageSize,
		MaxVideoSize: cfg.MaxVideoSize,
	})
	sessions := editor.NewManager(ootdsClient, mediaClient, stager, time.Duration(cfg.SessionIdleMinutes)*time.Minute)
	defer sessions.Shutdown()

	// Initialize handlers
	storefrontHandler := handlers.NewStorefrontHandler(storefrontRepo, productsClient)
	productsHandler := handlers.NewProductsHandler(productsClient, usersClient, storefrontRepo, eventsPublisher)
	ootdsHandler := handlers.NewOotdsHandler(ootdsClient, usersClient, storefrontRepo, eventsPublisher)
	editorHandler := handlers.NewEditorHandler(sessions, productsClient, usersClient, storefrontRepo, eventsPublisher)
	profileHandler := handlers.NewProfileHandler(usersClient, images, storefrontRepo, eventsPublisher)
	healthHandler := handlers.NewHealthHandler(redisClient)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS())

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Health)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")

	// Public storefront routes
	storefront := api.Group("/storefront/:handle")
	{
		storefront.GET("", storefrontHandler.GetProfile)
		storefront.GET("/products", storefrontHandler.GetCatalog)
		storefront.GET("/looks", storefrontHandler.GetLooks)
		storefront.GET("/looks/:id", storefrontHandler.GetLook)
		storefront.POST("/products/:id/click", storefrontHandler.TrackClick)
	}

	// Authenticated dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.Use(middleware.RequireAuth(cfg.JWTSecret))
	{
		dashboard.GET("/me", profileHandler.GetMe)
		dashboard.POST("/profile", profileHandler.CreateProfile)
		dashboard.PATCH("/profile", profileHandler.UpdateProfile)
		dashboard.POST("/profile/avatar", profileHandler.UploadAvatar)
		dashboard.POST("/profile/banner", profileHandler.UploadBanner)

		products := dashboard.Group("/products")
		{
			products.GET("", productsHandler.ListProducts)
			products.GET("/export", productsHandler.ExportProducts)
			products.GET("/:id", productsHandler.GetProduct)
			products.POST("", productsHandler.CreateProduct)
			products.PATCH("/:id", productsHandler.UpdateProduct)
			products.DELETE("/:id", productsHandler.DeleteProduct)
			products.POST("/:id/platforms", productsHandler.AddPlatform)
			products.PUT("/:id/platforms/:listingId", productsHandler.UpdatePlatform)
			products.DELETE("/:id/platforms/:listingId", productsHandler.DeletePlatform)
		}

		ootds := dashboard.Group("/ootds")
		{
			ootds.GET("", ootdsHandler.ListOotds)
			ootds.GET("/:id", ootdsHandler.GetOotd)
			ootds.DELETE("/:id", ootdsHandler.DeleteOotd)
		}

		editorRoutes := dashboard.Group("/editor")
		{
			editorRoutes.POST("", editorHandler.OpenSession)
			editorRoutes.GET("/:sessionId", editorHandler.GetSession)
			editorRoutes.DELETE("/:sessionId", editorHandler.CloseSession)
			editorRoutes.PUT("/:sessionId/draft", editorHandler.UpdateDraft)
			editorRoutes.POST("/:sessionId/save", editorHandler.Save)

			editorRoutes.POST("/:sessionId/products", editorHandler.AddProduct)
			editorRoutes.DELETE("/:sessionId/products/:productId", editorHandler.RemoveProduct)
			editorRoutes.POST("/:sessionId/products/:productId/move", editorHandler.MoveProduct)
			editorRoutes.PUT("/:sessionId/products/:productId/note", editorHandler.EditNote)

			editorRoutes.POST("/:sessionId/media", editorHandler.StageMedia)
			editorRoutes.POST("/:sessionId/media/url", editorHandler.AddMediaURL)
			editorRoutes.DELETE("/:sessionId/media/staged/:stagedId", editorHandler.RemoveStaged)
			editorRoutes.PUT("/:sessionId/media/:mediaId/primary", editorHandler.SetPrimary)
			editorRoutes.POST("/:sessionId/media/:mediaId/delete", editorHandler.MarkDeleted)
			editorRoutes.POST("/:sessionId/media/:mediaId/restore", editorHandler.RestoreMedia)
			editorRoutes.DELETE("/:sessionId/media/:mediaId", editorHandler.DeleteMedia)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("lookbook-service listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	log.Println("Server exited")
}
