package http

import (
	"database/sql"
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/prashanttechie/portfolio-project/internal/auth"
	"github.com/prashanttechie/portfolio-project/internal/http/handlers"
	"github.com/prashanttechie/portfolio-project/internal/http/handlers/admin"
	"github.com/prashanttechie/portfolio-project/internal/http/middleware"
	"github.com/prashanttechie/portfolio-project/internal/http/validation"
	"github.com/prashanttechie/portfolio-project/internal/modules/courses"
	"github.com/prashanttechie/portfolio-project/internal/modules/enrollments"
	"github.com/prashanttechie/portfolio-project/internal/modules/payments"
	"github.com/prashanttechie/portfolio-project/internal/storage"
)

type Deps struct {
	Logger   *slog.Logger
	DB       *gorm.DB
	SQLDB    *sql.DB
	Gateway  payments.Gateway
	Currency string
	Notifier payments.Notifier
	Archive  storage.Storage
	Tokens   *auth.Tokens
}

func NewRouter(d Deps) *gin.Engine {
	validation.InstallGin()
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.ErrorHandler(d.Logger))

	orderSvc := payments.NewOrderService(d.DB, d.Gateway, d.Currency, d.Logger)
	verifySvc := payments.NewVerifyService(d.DB, d.Gateway, d.Currency, d.Notifier, d.Logger)
	webhookSvc := payments.NewWebhookService(d.DB, d.Notifier, d.Archive, d.Logger)

	payH := handlers.NewPaymentsHandler(orderSvc, verifySvc)
	webhookH := handlers.NewWebhookHandler(d.Logger, d.Gateway, webhookSvc)
	courseH := handlers.NewCoursesHandler(courses.NewService(courses.NewRepo(d.DB)))
	enrollH := handlers.NewEnrollmentsHandler(enrollments.NewRepo(d.DB))
	ledgerH := admin.NewPaymentsHandler(payments.NewLedger(d.DB))
	healthH := handlers.NewHealthHandler(d.SQLDB)

	r.GET("/healthz", healthH.Check)
	r.GET("/metrics", middleware.PrometheusHandler())

	api := r.Group("/api")
	{
		api.POST("/payments/create-order", payH.CreateOrder)
		api.POST("/payments/verify", payH.VerifyPayment)
		api.POST("/payments/webhook", webhookH.Handle)

		api.GET("/courses", courseH.List)
		api.GET("/enrollments/:id/status", enrollH.Status)
	}

	adminAPI := api.Group("")
	adminAPI.Use(middleware.RequireAdmin(d.Tokens))
	{
		adminAPI.GET("/payments", ledgerH.List)
		adminAPI.POST("/courses", courseH.Create)
	}

	return r
}
