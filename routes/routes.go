package routes

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"vendas-backend/config"
	"vendas-backend/controllers"
	"vendas-backend/services"
	"vendas-backend/utils"
)

// Dependencies are the collaborators the handlers need beyond config.DB.
type Dependencies struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	SlowRequest    time.Duration
	Tokens         services.TokenStore
	Storage        services.FileStorage
	// TracingService enables otelgin spans when set.
	TracingService string
}

func SetupRouter(deps Dependencies) *gin.Engine {
	utils.RegisterValidators()

	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())

	if deps.TracingService != "" {
		r.Use(config.TracingMiddleware(deps.TracingService))
	}

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(config.PerformanceLogger(deps.Logger, deps.SlowRequest))

	r.GET("/health", controllers.Health)
	r.GET("/metrics", config.MetricsHandler())

	authController := controllers.AuthController{Tokens: deps.Tokens}
	auth := r.Group("/auth")
	{
		auth.GET("/test", controllers.AuthTest)
		auth.POST("/test", controllers.AuthTest)
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.Refresh)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
		auth.POST("/logout", authController.Logout)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		clients := api.Group("/clients")
		{
			clients.GET("", controllers.GetClients)
			clients.POST("", controllers.CreateClient)
			clients.GET("/:id", controllers.GetClient)
			clients.PUT("/:id", controllers.UpdateClient)
			clients.PATCH("/:id", controllers.UpdateClient)
			clients.DELETE("/:id", controllers.DeleteClient)
		}

		contacts := api.Group("/client-contacts")
		{
			contacts.GET("", controllers.GetClientContacts)
			contacts.POST("", controllers.CreateClientContact)
			contacts.GET("/:id", controllers.GetClientContact)
			contacts.PUT("/:id", controllers.UpdateClientContact)
			contacts.PATCH("/:id", controllers.UpdateClientContact)
			contacts.DELETE("/:id", controllers.DeleteClientContact)
		}

		reportController := controllers.ReportController{}
		products := api.Group("/products")
		{
			products.GET("", controllers.GetProducts)
			products.POST("", controllers.CreateProduct)
			products.GET("/statistics", reportController.GetProductStatistics)
			products.GET("/:id", controllers.GetProduct)
			products.PUT("/:id", controllers.UpdateProduct)
			products.PATCH("/:id", controllers.UpdateProduct)
			products.DELETE("/:id", controllers.DeleteProduct)
		}

		documentController := controllers.DocumentController{Storage: deps.Storage}
		documents := api.Group("/documents")
		{
			documents.GET("", controllers.GetDocuments)
			documents.POST("", controllers.CreateDocument)
			documents.GET("/:id", controllers.GetDocument)
			documents.PUT("/:id", controllers.UpdateDocument)
			documents.PATCH("/:id", controllers.UpdateDocument)
			documents.DELETE("/:id", controllers.DeleteDocument)
			documents.POST("/:id/upload", documentController.UploadDocument)
		}

		videos := api.Group("/videos")
		{
			videos.GET("", controllers.GetVideos)
			videos.POST("", controllers.CreateVideo)
			videos.GET("/:id", controllers.GetVideo)
			videos.PUT("/:id", controllers.UpdateVideo)
			videos.PATCH("/:id", controllers.UpdateVideo)
			videos.DELETE("/:id", controllers.DeleteVideo)
		}

		quotes := api.Group("/quotes")
		{
			quotes.GET("", controllers.GetQuotes)
			quotes.POST("", controllers.CreateQuote)
			quotes.GET("/:id", controllers.GetQuote)
			quotes.PUT("/:id", controllers.UpdateQuote)
			quotes.PATCH("/:id", controllers.UpdateQuote)
			quotes.DELETE("/:id", controllers.DeleteQuote)
		}

		items := api.Group("/quote-items")
		{
			items.GET("", controllers.GetQuoteItems)
			items.POST("", controllers.CreateQuoteItem)
			items.GET("/:id", controllers.GetQuoteItem)
			items.PUT("/:id", controllers.UpdateQuoteItem)
			items.PATCH("/:id", controllers.UpdateQuoteItem)
			items.DELETE("/:id", controllers.DeleteQuoteItem)
		}

		events := api.Group("/events")
		{
			events.GET("", controllers.GetEvents)
			events.POST("", controllers.CreateEvent)
			events.GET("/:id", controllers.GetEvent)
			events.PUT("/:id", controllers.UpdateEvent)
			events.PATCH("/:id", controllers.UpdateEvent)
			events.DELETE("/:id", controllers.DeleteEvent)
		}

		reminders := api.Group("/reminders")
		{
			reminders.GET("", controllers.GetReminders)
			reminders.POST("", controllers.CreateReminder)
			reminders.GET("/:id", controllers.GetReminder)
			reminders.PUT("/:id", controllers.UpdateReminder)
			reminders.PATCH("/:id", controllers.UpdateReminder)
			reminders.DELETE("/:id", controllers.DeleteReminder)
		}

		users := api.Group("/users")
		{
			users.GET("", controllers.GetUsers)
			users.GET("/:id", controllers.GetUser)
			users.PUT("/:id", controllers.UpdateUser)
			users.PATCH("/:id", controllers.UpdateUser)
			users.DELETE("/:id", controllers.DeleteUser)
		}

		api.GET("/dashboard", controllers.GetDashboardOverview)
	}

	return r
}
