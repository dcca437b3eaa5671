package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/renelwllms/erepair1-sub001/config"
	"github.com/renelwllms/erepair1-sub001/controllers"
	"github.com/renelwllms/erepair1-sub001/utils"
)

type Handlers struct {
	Auth      *controllers.AuthController
	Customers *controllers.CustomerController
	Jobs      *controllers.JobController
	Quotes    *controllers.QuoteController
	Invoices  *controllers.InvoiceController
	Settings  *controllers.SettingsController
	Reports   *controllers.ReportController
}

type Options struct {
	AllowedOrigins []string
	JWTSecret      string
	Log            *slog.Logger
}

func SetupRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(config.PerformanceLogger(opts.Log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	requireAuth := utils.AuthMiddleware(opts.JWTSecret)

	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.GET("/me", requireAuth, h.Auth.Me)
	}

	// Reachable from the links in customer emails.
	public := r.Group("/api")
	{
		public.GET("/track/:jobNumber", h.Jobs.Track)
		public.GET("/public/quotes/:id", h.Quotes.View)
		public.POST("/quotes/:id/accept", h.Quotes.Accept)
		public.POST("/quotes/:id/reject", h.Quotes.Reject)
	}

	api := r.Group("/api")
	api.Use(requireAuth)
	{
		api.POST("/users", h.Auth.Register)

		customers := api.Group("/customers")
		{
			customers.POST("", h.Customers.Create)
			customers.GET("", h.Customers.List)
			customers.GET("/:id", h.Customers.Get)
			customers.PUT("/:id", h.Customers.Update)
			customers.DELETE("/:id", h.Customers.Delete)
		}

		jobs := api.Group("/jobs")
		{
			jobs.POST("", h.Jobs.Create)
			jobs.GET("", h.Jobs.List)
			jobs.GET("/:id", h.Jobs.Get)
			jobs.PUT("/:id/status", h.Jobs.UpdateStatus)
			jobs.PUT("/:id/assign", h.Jobs.Assign)
			jobs.GET("/:id/history", h.Jobs.History)
			jobs.POST("/:id/attachments", h.Jobs.UploadAttachment)
			jobs.GET("/:id/attachments", h.Jobs.ListAttachments)
		}

		quotes := api.Group("/quotes")
		{
			quotes.POST("", h.Quotes.Create)
			quotes.GET("", h.Quotes.List)
			quotes.GET("/:id", h.Quotes.Get)
			quotes.POST("/:id/send", h.Quotes.Send)
			quotes.POST("/:id/convert-to-invoice", h.Quotes.ConvertToInvoice)
		}

		invoices := api.Group("/invoices")
		{
			invoices.GET("", h.Invoices.List)
			invoices.GET("/:id", h.Invoices.Get)
			invoices.POST("/:id/payments", h.Invoices.RecordPayment)
		}

		api.GET("/dashboard", h.Reports.Dashboard)
		api.GET("/reports", h.Reports.Analytics)
		api.GET("/email-logs", h.Reports.EmailLogs)

		api.GET("/settings", h.Settings.Get)
		api.PUT("/settings", h.Settings.Update)
	}

	return r
}
