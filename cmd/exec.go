package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"helpdesk-system/config"
	"helpdesk-system/handlers"
	"helpdesk-system/models"
	"helpdesk-system/monitoring"
	"helpdesk-system/security"
	"helpdesk-system/services"
	"helpdesk-system/utils"

	_ "helpdesk-system/migrations"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	// Initialize PubNub
	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" && cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey

		pn = pubnub.NewPubNub(pnConfig)
	} else {
		log.Println("PubNub keys not configured, realtime push disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor := monitoring.NewMonitor(ctx, redisClient)

	// Initialize services
	bus := services.NewEventBus(256)
	ticketService := services.NewTicketService(app, bus, monitor)
	notificationService := services.NewNotificationService(app, redisClient, monitor, cfg)
	userService := services.NewUserService(app)
	reportService := services.NewReportService(app)
	kbService := services.NewKnowledgeBaseService(app)

	// The notifier runs off the event bus so ticket writes never wait on
	// notification fan-out.
	notifier := services.NewNotifier(app, redisClient, pn, monitor, cfg)
	bus.Subscribe(notifier)
	go bus.Run(ctx)

	// Initialize handlers
	ticketHandler := handlers.NewTicketHandler(ticketService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	authHandler := handlers.NewAuthHandler(app, userService, cfg)
	adminHandler := handlers.NewAdminHandler(userService, reportService)
	kbHandler := handlers.NewKnowledgeBaseHandler(kbService)

	rateLimiter := security.NewRateLimiter(redisClient, cfg.RateLimitPerMinute)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// New accounts start Active with no role; they pick one on first login.
	app.OnRecordCreate("users").BindFunc(func(e *core.RecordEvent) error {
		if e.Record.GetString("status") == "" {
			e.Record.Set("status", models.UserActive)
		}
		return e.Next()
	})

	// Setup graceful shutdown
	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// Public surface
		se.Router.GET("/api/helpdesk/kb", kbHandler.List)
		se.Router.GET("/api/helpdesk/kb/{slug}", kbHandler.Get)
		se.Router.POST("/api/helpdesk/admin-signup", authHandler.AdminSignUp).Bind(rateLimiter.Middleware())

		// Health check
		se.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			if _, err := e.App.FindCollectionByNameOrId("tickets"); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		if cfg.EnableMetrics {
			se.Router.GET("/metrics", apis.WrapStdHandler(promhttp.Handler()))
		}

		// Authenticated surface
		api := se.Router.Group("/api/helpdesk")
		api.Bind(
			apis.RequireAuth(),
			handlers.SessionMiddleware(),
			rateLimiter.Middleware(),
			rateLimiter.AntiBotMiddleware(),
		)

		// Session
		api.GET("/session", authHandler.Session)
		api.POST("/session/role", authHandler.SelectRole)

		// Ticket endpoints
		api.POST("/tickets", ticketHandler.Create)
		api.GET("/tickets", ticketHandler.List)
		api.GET("/tickets/{ticketId}", ticketHandler.Get)
		api.PATCH("/tickets/{ticketId}/status", ticketHandler.UpdateStatus)
		api.POST("/tickets/{ticketId}/assign", ticketHandler.Assign)
		api.POST("/tickets/{ticketId}/comments", ticketHandler.AddComment)
		api.GET("/tickets/{ticketId}/comments", ticketHandler.ListComments)
		api.PUT("/tickets/{ticketId}/feedback", ticketHandler.SetFeedback)
		api.GET("/tickets/{ticketId}/feedback", ticketHandler.GetFeedback)
		api.GET("/tickets/{ticketId}/history", ticketHandler.History)

		// Notification endpoints
		api.GET("/notifications", notificationHandler.List)
		api.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		api.POST("/notifications/{notificationId}/read", notificationHandler.MarkRead)
		api.POST("/notifications/read-all", notificationHandler.MarkAllRead)

		// Admin endpoints
		admin := api.Group("/admin")
		admin.Bind(handlers.RequireRole(models.RoleAdmin))
		admin.GET("/users", adminHandler.ListUsers)
		admin.PATCH("/users/{userId}/role", adminHandler.UpdateUserRole)
		admin.PATCH("/users/{userId}/status", adminHandler.SetUserStatus)
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.POST("/tickets/bulk-assign", ticketHandler.BulkAssign)

		log.Println("Server routes registered")

		return se.Next()
	})

	// Start server
	return app.Start()
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
