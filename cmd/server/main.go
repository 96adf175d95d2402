package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/duitku/backend/internal/config"
	"github.com/duitku/backend/internal/database"
	"github.com/duitku/backend/internal/handlers"
	mW "github.com/duitku/backend/internal/middleware"
	"github.com/duitku/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
)

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env
	viper.ReadInConfig()        // read .env file

	// Set environment variable prefix
	viper.SetEnvPrefix("")

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")
	viper.BindEnv("whatsapp.gateway_url", "WHATSAPP_GATEWAY_URL")
	viper.BindEnv("whatsapp.token", "WHATSAPP_TOKEN")
	viper.BindEnv("telegram.token", "TELEGRAM_BOT_TOKEN")
	viper.BindEnv("app.env", "APP_ENV")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	// Initialize storage
	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	defer redisClient.Close()

	// Initialize services
	otpCfg := config.LoadOTPConfig()
	codeStore := services.NewRedisCodeStore(redisClient)
	whatsappSender := services.NewWhatsAppSender()
	otpManager := services.NewOTPManager(codeStore, whatsappSender, otpCfg)
	otpLimiter := services.NewFixedWindowLimiter(otpCfg.MaxIssuePerWindow, otpCfg.RateLimitWindow)

	ledgerService := services.NewLedgerService(db)
	linkService := services.NewLinkService(db, redisClient)
	authService := services.NewAuthService(db, redisClient, otpManager, otpLimiter)

	walletHandler := handlers.NewWalletHandler(ledgerService, linkService)

	// Initialize auth middleware with Redis
	mW.InitAuthMiddleware(redisClient)

	// Telegram bot runs alongside the HTTP server; a missing token disables it
	// so the API can be developed without a bot registration.
	botCtx, stopBot := context.WithCancel(context.Background())
	defer stopBot()

	if token := viper.GetString("telegram.token"); token != "" {
		router := handlers.NewChatRouter(linkService, ledgerService)
		botHandler, err := handlers.NewBotHandler(token, router)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram bot: %v", err)
		}
		go botHandler.Start(botCtx)
	} else {
		log.Println("TELEGRAM_BOT_TOKEN not set, Telegram bot disabled")
	}

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Post("/auth/register", authService.Register)
		r.Post("/auth/verify-otp", authService.VerifyOTP)
		r.Post("/auth/login-phone", authService.LoginPhone)
		r.Post("/auth/verify-login-otp", authService.VerifyLoginOTP)
		r.Post("/auth/resend-otp", authService.ResendOTP)

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Get("/auth/account", authService.GetUserAccount)
			r.Post("/auth/logout", authService.Logout)

			r.Get("/wallets", walletHandler.ListWallets)
			r.Get("/wallets/summary", walletHandler.WalletSummary)
			r.Get("/transactions/recent", walletHandler.RecentTransactions)

			r.Post("/chat/link-code", walletHandler.CreateLinkCode)
			r.Delete("/chat/link", walletHandler.Unlink)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	stopBot()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
