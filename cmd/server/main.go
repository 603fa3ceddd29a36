package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stayfront/hotel-ops-backend/internal/config"
	"github.com/stayfront/hotel-ops-backend/internal/database"
	"github.com/stayfront/hotel-ops-backend/internal/handlers"
	"github.com/stayfront/hotel-ops-backend/internal/middleware"
	"github.com/stayfront/hotel-ops-backend/internal/services"
	"github.com/stayfront/hotel-ops-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Stayfront Hotel Operations Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Repositories
	bookingRepo := database.NewBookingRepository(db)
	roomRepo := database.NewRoomRepository(db)
	guestRepo := database.NewGuestRepository(db)
	chargeRepo := database.NewChargeRepository(db)
	auditRepo := database.NewPaymentAuditRepository(db)
	staffRepo := database.NewStaffRepository(db)

	// Services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	authService := services.NewAuthService(staffRepo, jwtService, logger)

	availability := services.NewAvailabilityService(logger)
	calculator := services.NewRateCalculator(cfg.Billing, logger)
	bookingService := services.NewBookingService(bookingRepo, roomRepo, guestRepo, availability, calculator, logger)
	chargeService := services.NewChargeService(chargeRepo, bookingRepo, logger)
	checkoutService := services.NewCheckoutService(bookingService, bookingRepo, roomRepo, chargeRepo, calculator, logger)

	paystackService := services.NewPaystackService(&cfg.Payment, logger)
	coordinator := services.NewPaymentCoordinator(
		bookingService, bookingRepo, guestRepo, auditRepo,
		paystackService, cfg.Payment, cfg.Billing, logger,
	)

	// The availability index must hold every active interval before the
	// server starts taking bookings.
	logger.Info("Loading availability index...")
	if err := availability.Load(bookingRepo); err != nil {
		logger.Fatalf("Failed to load availability index: %v", err)
	}

	sweepService := services.NewReservationSweepService(bookingRepo, bookingService, coordinator, cfg.Sweep, logger)
	sweepService.Start()

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	roomHandler := handlers.NewRoomHandler(roomRepo, availability, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, coordinator, logger)
	paymentHandler := handlers.NewPaymentHandler(coordinator, paystackService, auditRepo, logger)
	chargeHandler := handlers.NewChargeHandler(chargeService, logger)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, logger)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthCheckHandler(db))

	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
		}

		// Gateway webhook (public; authenticated by signature)
		v1.POST("/payments/webhook", paymentHandler.Webhook)

		// Guest-facing payment handshake routes (public; the guest holds
		// the booking reference, not a staff token)
		v1.POST("/payments/:reference/verify", paymentHandler.VerifyPayment)

		// Staff routes (protected)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(jwtService))
		{
			rooms := protected.Group("/rooms")
			{
				rooms.GET("", roomHandler.ListRooms)
				rooms.GET("/:id", roomHandler.GetRoom)
				rooms.GET("/:id/availability", roomHandler.CheckAvailability)
			}

			bookings := protected.Group("/bookings")
			{
				bookings.POST("", bookingHandler.CreateBooking)
				bookings.GET("", bookingHandler.ListBookings)
				bookings.GET("/:reference", bookingHandler.GetBooking)
				bookings.PATCH("/:reference/status", bookingHandler.UpdateStatus)
				bookings.POST("/:reference/cancel", bookingHandler.CancelBooking)

				bookings.POST("/:reference/payment", paymentHandler.InitiatePayment)
				bookings.POST("/:reference/payment/abandon", paymentHandler.AbandonPayment)
				bookings.POST("/:reference/payment/retry", paymentHandler.RetryPayment)
				bookings.GET("/:reference/payments", paymentHandler.GetAuditTrail)

				bookings.GET("/:reference/charges", chargeHandler.ListCharges)
				bookings.GET("/:reference/checkout", checkoutHandler.PreviewBill)
				bookings.POST("/:reference/checkout", checkoutHandler.FinalizeCheckout)
			}

			protected.GET("/guests/:guest_id/bookings", bookingHandler.ListGuestBookings)
			protected.POST("/charges", chargeHandler.CreateCharge)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	sweepService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
