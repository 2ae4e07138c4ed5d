package router

import (
	"database/sql"
	"net/http"

	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/paystack"
	"storefront/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type Dependencies struct {
	Config        config.Config
	DB            *sql.DB
	Logger        zerolog.Logger
	Gateway       services.PaymentGateway
	Notifications *services.OrderNotifications
}

func SetupRouter(deps Dependencies) *mux.Router {
	cfg, logger := deps.Config, deps.Logger

	gateway := deps.Gateway
	if gateway == nil {
		gateway = paystack.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey)
	}

	userService := services.NewUserService(deps.DB, logger)
	authService := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpiresIn, logger)
	productService := services.NewProductService(deps.DB, logger)
	orderService := services.NewOrderService(deps.DB, logger)
	checkoutService := services.NewCheckoutService(gateway, productService, orderService, deps.Notifications, cfg.CallbackURL(), logger)
	webhookService := services.NewWebhookService(cfg.PaystackSecretKey, orderService, deps.Notifications, logger)

	authHandler := handlers.NewAuthHandler(userService, authService, logger)
	productHandler := handlers.NewProductHandler(productService, logger)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, webhookService, cfg.FrontendSuccessURL, logger)
	orderHandler := handlers.NewOrderHandler(orderService, logger)
	adminHandler := handlers.NewAdminHandler(orderService, deps.Notifications, logger)
	healthHandler := handlers.NewHealthHandler(deps.DB, cfg.Env, logger)

	requireAuth := middleware.Authentication(authService, userService, logger)
	requireAdmin := middleware.RequireRole(models.RoleAdmin)
	jsonOnly := middleware.RequestValidation()

	r := mux.NewRouter()

	rateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	r.Use(middleware.ErrorHandling(logger))
	r.Use(middleware.PerformanceMonitoring(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())

	limit := rateLimiter.Middleware()

	auth := r.PathPrefix("/auth").Subrouter()
	auth.Use(limit, jsonOnly)
	auth.HandleFunc("/register", authHandler.Register).Methods("POST")
	auth.HandleFunc("/login", authHandler.Login).Methods("POST")
	auth.Handle("/profile", requireAuth(http.HandlerFunc(authHandler.Profile))).Methods("GET")

	products := r.PathPrefix("/products").Subrouter()
	products.Use(limit, jsonOnly)
	products.HandleFunc("", productHandler.List).Methods("GET")
	products.HandleFunc("/{id}", productHandler.Get).Methods("GET")
	products.Handle("", requireAuth(requireAdmin(http.HandlerFunc(productHandler.Create)))).Methods("POST")

	checkout := r.PathPrefix("/checkout").Subrouter()
	checkout.Handle("/pay", limit(requireAuth(jsonOnly(http.HandlerFunc(checkoutHandler.Pay))))).Methods("POST")
	checkout.Handle("/success", limit(http.HandlerFunc(checkoutHandler.Success))).Methods("GET")
	// Paystack deliveries bypass the client rate limit.
	checkout.HandleFunc("/webhook/paystack", checkoutHandler.PaystackWebhook).Methods("POST")

	orders := r.PathPrefix("/orders").Subrouter()
	orders.Use(limit, requireAuth)
	orders.HandleFunc("", orderHandler.MyOrders).Methods("GET")

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(limit, requireAuth, requireAdmin, jsonOnly)
	admin.HandleFunc("/orders", adminHandler.ListOrders).Methods("GET")
	admin.HandleFunc("/orders/{id}", adminHandler.GetOrder).Methods("GET")
	admin.HandleFunc("/orders/{id}/status", adminHandler.UpdateOrderStatus).Methods("PATCH")
	admin.HandleFunc("/stats", adminHandler.Stats).Methods("GET")

	r.Handle("/health", limit(http.HandlerFunc(healthHandler.Check))).Methods("GET")

	// Lets the CORS middleware answer preflight requests.
	r.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}
