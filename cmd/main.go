package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/gin-food-api/docs" // Register swagger docs
	"github.com/franciscosanchezn/gin-food-api/internal/assistant"
	"github.com/franciscosanchezn/gin-food-api/internal/auth"
	"github.com/franciscosanchezn/gin-food-api/internal/cart"
	"github.com/franciscosanchezn/gin-food-api/internal/config"
	"github.com/franciscosanchezn/gin-food-api/internal/controllers"
	"github.com/franciscosanchezn/gin-food-api/internal/database"
	"github.com/franciscosanchezn/gin-food-api/internal/messaging"
	"github.com/franciscosanchezn/gin-food-api/internal/middleware"
	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/pricing"
	"github.com/franciscosanchezn/gin-food-api/internal/receipts"
	"github.com/franciscosanchezn/gin-food-api/internal/report"
	"github.com/franciscosanchezn/gin-food-api/internal/repository"
	"github.com/franciscosanchezn/gin-food-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// app bundles the wired controllers the router needs
type app struct {
	config        *config.Config
	oauth         *auth.OAuthService
	catalog       controllers.CatalogController
	cart          *controllers.CartController
	orders        *controllers.OrderController
	notifications *controllers.NotificationController
	admin         *controllers.AdminController
	authn         *controllers.AuthController
	clients       *controllers.ClientController
	assistant     *controllers.AssistantController
	closers       []func()
}

// @title Food Ordering API
// @version 1.0
// @description Menu, cart, checkout and order tracking for a food ordering service
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	loadDotenvFile()
	setUpLogger()
	configuration := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := setupDatabase(configuration)
	application := wireApplication(ctx, configuration, db)
	defer application.close()

	router := setupRouter(application)
	server := &http.Server{
		Addr:              fmt.Sprintf("%v:%d", configuration.Host, configuration.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	log.Info("Server stopped")
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger configures the standard logger the same way config.NewLogger does
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(config.LevelFor(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL")))
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase opens the configured database, migrates it and seeds the
// catalog and accounts when a seed file is present
func setupDatabase(conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(database.DatabaseConfig{
		Driver:   conf.DBDriver,
		URL:      conf.DatabaseURL,
		Host:     conf.DBHost,
		Port:     conf.DBPort,
		User:     conf.DBUser,
		Password: conf.DBPassword,
		Name:     conf.DBName,
		SSLMode:  conf.DBSSLMode,
		Path:     conf.DBPath,
	})
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))

	if _, err := os.Stat(conf.CatalogSeedFile); err != nil {
		log.WithField("file", conf.CatalogSeedFile).Info("No seed file found, skipping seeding")
		return db
	}
	seed, err := database.LoadSeedFile(conf.CatalogSeedFile)
	checkPanicErr(err)

	ctx := context.Background()
	users, err := database.SeedUsers(ctx, db, seed.Users)
	checkPanicErr(err)
	items, err := database.SeedCatalog(ctx, repository.NewGormCatalogRepository(db), seed.Items)
	checkPanicErr(err)
	log.WithFields(log.Fields{"users": users, "items": items}).Info("Database seeded")
	return db
}

// setupNotifier picks the notification transport. Broker transports publish
// to the broker and a consumer fills the mailbox from it.
func setupNotifier(ctx context.Context, conf *config.Config, mailbox services.NotificationService) (services.Notifier, func()) {
	switch conf.NotifyTransport {
	case config.TransportRabbitMQ:
		rmq, err := messaging.NewRabbitMQ(conf.RabbitMQURL, conf.NotifyExchange, conf.NotifyQueue)
		checkPanicErr(err)
		checkPanicErr(rmq.SetupQueues())
		checkPanicErr(rmq.StartConsumer(ctx, mailbox))
		return rmq, rmq.Close
	case config.TransportNATS:
		nc, err := messaging.NewNATS(conf.NATSURL, conf.NATSSubject)
		checkPanicErr(err)
		sub, err := nc.Subscribe(ctx, mailbox)
		checkPanicErr(err)
		return nc, func() {
			if err := sub.Unsubscribe(); err != nil {
				log.WithError(err).Warn("Failed to unsubscribe from NATS")
			}
			nc.Close()
		}
	default:
		return mailbox, func() {}
	}
}

// setupReportGenerator returns nil when no API key is configured, which
// makes the report endpoint answer 503
func setupReportGenerator(conf *config.Config) report.Generator {
	if conf.ReportAPIKey == "" {
		log.Warn("REPORT_API_KEY not set, logistics report disabled")
		return nil
	}
	var opts []report.OpenAIOption
	if conf.ReportBaseURL != "" {
		opts = append(opts, report.WithBaseURL(conf.ReportBaseURL))
	}
	return report.NewOpenAIGenerator(conf.ReportAPIKey, conf.ReportModel, opts...)
}

// setupAssistant shares the report model settings. It returns nil without an
// API key, which makes the help chat answer 503.
func setupAssistant(conf *config.Config) assistant.Assistant {
	if conf.ReportAPIKey == "" {
		log.Warn("REPORT_API_KEY not set, help chat disabled")
		return nil
	}
	return assistant.NewOpenAIAssistant(conf.ReportAPIKey, conf.ReportModel, assistant.WithBaseURL(conf.ReportBaseURL))
}

// wireApplication builds repositories, services and controllers
func wireApplication(ctx context.Context, conf *config.Config, db *gorm.DB) *app {
	engine := pricing.NewEngine(conf.ExtraModifierSurcharge)
	catalogRepo := repository.NewGormCatalogRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)

	mailbox := services.NewNotificationService(repository.NewGormMailboxRepository(db))
	notifier, closeNotifier := setupNotifier(ctx, conf, mailbox)

	catalogService := services.NewCatalogService(catalogRepo, engine)
	orderService := services.NewOrderService(orderRepo, catalogRepo, engine, notifier,
		services.WithDeliveryFee(conf.DeliveryFee),
		services.WithTransportName(conf.NotifyTransport),
	)
	userService := services.NewUserService(db, notifier)
	clientService := services.NewClientService(db)
	checkoutService := services.NewCheckoutService(orderService, userService)
	reportService := services.NewReportService(orderRepo, setupReportGenerator(conf))

	store, err := receipts.NewStore(conf.ReceiptDir)
	checkPanicErr(err)
	sessions := cart.NewSessions(engine)

	return &app{
		config:        conf,
		oauth:         auth.NewOAuthService(db, conf.JWTSecret),
		catalog:       controllers.NewCatalogController(catalogService),
		cart:          controllers.NewCartController(sessions, catalogService),
		orders:        controllers.NewOrderController(orderService, checkoutService, sessions, store),
		notifications: controllers.NewNotificationController(mailbox),
		admin:         controllers.NewAdminController(userService, reportService),
		authn:         controllers.NewAuthController(userService, clientService, conf.JWTSecret),
		clients:       controllers.NewClientController(clientService),
		assistant:     controllers.NewAssistantController(services.NewAssistantService(setupAssistant(conf))),
		closers:       []func(){closeNotifier},
	}
}

func (a *app) close() {
	for _, closeFn := range a.closers {
		closeFn()
	}
}

// setupRouter initializes the Gin router and sets up the routes
// It returns the configured router
func setupRouter(a *app) *gin.Engine {
	if a.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.PrometheusMiddleware(), middleware.RequestLogger())

	setupRoutes(router, a)

	return router
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine, a *app) {
	router.GET("/health", healthCheckHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Development tokens are never issued in production
	if a.config.Environment != "production" {
		router.GET("/test-token", a.authn.TestToken)
	}

	jwtAuth := middleware.OAuth2Auth([]byte(a.config.JWTSecret))

	oauthGroup := router.Group("/oauth")
	{
		oauthGroup.POST("/token", a.oauth.HandleToken)
		oauthGroup.GET("/authorize", jwtAuth, a.oauth.HandleAuthorize)
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/register", a.authn.Register)
		v1.POST("/ai-help/chat", a.assistant.Chat)

		publicApi := v1.Group("/public")
		{
			publicApi.GET("/menu", a.catalog.ListItems)
			publicApi.GET("/menu/:id", a.catalog.GetItem)
			publicApi.POST("/menu/:id/price", a.catalog.PriceItem)
		}

		protectedApi := v1.Group("/protected")
		protectedApi.Use(jwtAuth)
		{
			protectedApi.GET("/me", a.authn.Me)

			protectedApi.GET("/cart", a.cart.GetCart)
			protectedApi.POST("/cart", a.cart.AddLine)
			protectedApi.DELETE("/cart", a.cart.ClearCart)
			protectedApi.PUT("/cart/lines/:fingerprint", a.cart.SetQuantity)
			protectedApi.DELETE("/cart/lines/:fingerprint", a.cart.RemoveLine)

			protectedApi.POST("/checkout", a.orders.Checkout)
			protectedApi.GET("/orders", a.orders.ListMyOrders)
			protectedApi.GET("/orders/:id", a.orders.GetOrder)
			protectedApi.POST("/orders/:id/review", a.orders.ReviewOrder)

			protectedApi.GET("/notifications", a.notifications.Mailbox)
			protectedApi.POST("/notifications/:id/read", a.notifications.MarkRead)
			protectedApi.DELETE("/notifications", a.notifications.ClearAll)

			protectedApi.GET("/clients", a.clients.ListClients)
			protectedApi.POST("/clients", a.clients.CreateClient)
			protectedApi.DELETE("/clients/:id", a.clients.DeleteClient)

			adminApi := protectedApi.Group("/admin")
			adminApi.Use(middleware.RequireRole(models.RoleAdmin))
			{
				adminApi.POST("/menu", a.catalog.CreateItem)
				adminApi.PUT("/menu/:id", a.catalog.UpdateItem)
				adminApi.DELETE("/menu/:id", a.catalog.DeleteItem)

				adminApi.GET("/orders", a.orders.ListOrders)
				adminApi.PUT("/orders/:id/status", a.orders.SetStatus)
				adminApi.POST("/orders/:id/feedback", a.orders.SetFeedback)
				adminApi.GET("/orders/:id/receipt", a.orders.Receipt)
				adminApi.GET("/stats", a.orders.Stats)
				adminApi.POST("/report", a.admin.Report)

				adminApi.GET("/users", a.admin.ListUsers)
				adminApi.PUT("/users/:id/status", a.admin.SetUserStatus)
			}
		}
	}
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "gin-food-api",
	})
}
