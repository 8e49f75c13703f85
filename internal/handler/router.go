package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/sfms-app/sfms-api/api/swagger"
	"github.com/sfms-app/sfms-api/internal/middleware"
	"github.com/sfms-app/sfms-api/internal/service"
	"github.com/sfms-app/sfms-api/internal/session"
	"github.com/sfms-app/sfms-api/pkg/config"
	"github.com/sfms-app/sfms-api/pkg/logger"
	corsMiddleware "github.com/sfms-app/sfms-api/pkg/middleware/cors"
	"github.com/sfms-app/sfms-api/pkg/middleware/requestid"
)

// Router wires every handler behind its role gate.
type Router struct {
	cfg     *config.Config
	store   session.Store
	metrics *service.MetricsService
	auth    *AuthHandler
	admin   *AdminHandler
	staff   *StaffHandler
	student *StudentHandler
	health  *HealthHandler
	logger  *zap.Logger
}

// NewRouter constructs a Router instance.
func NewRouter(cfg *config.Config, store session.Store, metrics *service.MetricsService, auth *AuthHandler, admin *AdminHandler, staff *StaffHandler, student *StudentHandler, health *HealthHandler, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		cfg:     cfg,
		store:   store,
		metrics: metrics,
		auth:    auth,
		admin:   admin,
		staff:   staff,
		student: student,
		health:  health,
		logger:  logger,
	}
}

// Setup registers middlewares and routes on a fresh gin engine.
func (r *Router) Setup() *gin.Engine {
	if r.cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(r.logger))
	engine.Use(requestid.Middleware())
	engine.Use(corsMiddleware.New(r.cfg.CORS.AllowedOrigins))
	engine.Use(middleware.Metrics(r.metrics))

	cookie := r.cfg.Session.CookieName

	engine.GET("/", r.auth.Entry)
	engine.POST("/login", r.auth.Login)
	engine.GET("/logout", r.auth.Logout)
	engine.GET("/api/users/:role", r.auth.UsersByRole)

	engine.GET("/health", r.health.Health)
	engine.GET("/ready", r.health.Ready)
	engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	if r.cfg.Env != config.EnvProduction {
		engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	admin := engine.Group("/admin", middleware.RequireAdmin(r.store, cookie))
	{
		admin.GET("/dashboard", r.admin.Dashboard)

		admin.GET("/staff", r.admin.ListStaff)
		admin.POST("/staff", r.admin.CreateStaff)
		admin.GET("/staff/:id", r.admin.GetStaff)
		admin.POST("/staff/:id", r.admin.UpdateStaff)
		admin.POST("/staff/:id/toggle", r.admin.ToggleStaff)

		admin.GET("/students", r.admin.ListStudents)
		admin.POST("/students", r.admin.CreateStudent)
		admin.GET("/students/:id", r.admin.GetStudent)
		admin.POST("/students/:id", r.admin.UpdateStudent)
		admin.POST("/students/:id/toggle", r.admin.ToggleStudent)

		admin.GET("/assignments", r.admin.Assignments)
		admin.POST("/assignments", r.admin.Assign)
		admin.POST("/assignments/:id/delete", r.admin.RemoveAssignment)

		admin.GET("/feedback", r.admin.FeedbackOverview)
		admin.GET("/feedback/export", r.admin.ExportFeedback)
		admin.GET("/feedback/:id", r.admin.FeedbackDetail)
	}

	staff := engine.Group("/staff", middleware.RequireStaff(r.store, cookie))
	{
		staff.GET("/dashboard", r.staff.Dashboard)
		staff.GET("/students", r.staff.Students)
		staff.GET("/feedback", r.staff.Feedback)
		staff.GET("/feedback/:id", r.staff.FeedbackDetail)
		staff.POST("/feedback/:id/reply", r.staff.Reply)
		staff.POST("/replies/:id/delete", r.staff.DeleteReply)
	}

	student := engine.Group("/student", middleware.RequireStudent(r.store, cookie))
	{
		student.GET("/dashboard", r.student.Dashboard)
		student.GET("/submit", r.student.SubmitForm)
		student.POST("/submit", r.student.Submit)
		student.GET("/feedback", r.student.Feedback)
		student.GET("/feedback/:id", r.student.FeedbackDetail)
	}

	return engine
}
