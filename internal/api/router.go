package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/akademi/edutrack/internal/app"
	iauth "github.com/akademi/edutrack/internal/auth"
	"github.com/akademi/edutrack/internal/authz"
	"github.com/akademi/edutrack/internal/handlers"
	"github.com/akademi/edutrack/internal/middleware"
	"github.com/akademi/edutrack/internal/services"
)

// Services bundles the log stores the router shares with the rest of the
// application. The activity store doubles as the audit sink for denied
// permission checks.
type Services struct {
	Activity    *services.ActivityLogService
	Performance *services.PerformanceLogService
	API         *services.ApiLogService
	Errors      *services.ErrorLogService
	Frontend    *services.FrontendLogService
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
// Every entity group sits behind a module/action permission guard evaluated
// against the resolved principal.
func NewRouter(db *gorm.DB, tokens *iauth.TokenService, cfg *app.Config, svcs Services) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if svcs.Activity == nil {
		return nil, fmt.Errorf("activity log service must be provided")
	}

	resolver, err := iauth.NewPrincipalResolver(db, tokens)
	if err != nil {
		return nil, err
	}
	engine, err := authz.NewEngine(db)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	var errorSink middleware.ErrorLogSink
	if svcs.Errors != nil {
		errorSink = svcs.Errors
	}
	r.Use(middleware.Recovery(errorSink))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	if cfg.Logs.CaptureAPI && svcs.API != nil {
		r.Use(middleware.RequestLog(svcs.API))
	}

	r.NoRoute(middleware.NotFoundHandler)

	// Health endpoint (public)
	r.GET("/health", handlers.Health(db))

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authSvc, err := services.NewAuthService(db, tokens, svcs.Activity)
	if err != nil {
		return nil, err
	}
	authHandler := handlers.NewAuthHandler(authSvc)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes
	api := r.Group("/api")
	api.Use(middleware.Auth(resolver))

	api.GET("/auth/me", authHandler.Me)

	guard := func(module, action string) gin.HandlerFunc {
		return middleware.RequirePermission(engine, svcs.Activity, module, action)
	}

	// Educations
	educationSvc, err := services.NewEducationService(db, engine, svcs.Activity, svcs.Performance)
	if err != nil {
		return nil, err
	}
	educationHandler := handlers.NewEducationHandler(educationSvc)
	educations := api.Group("/educations")
	{
		educations.GET("", guard("education", "view"), educationHandler.List)
		educations.GET("/:id", guard("education", "view"), educationHandler.Get)
		educations.POST("", guard("education", "create"), educationHandler.Create)
		educations.PUT("/:id", guard("education", "update"), educationHandler.Update)
		educations.DELETE("/:id", guard("education", "delete"), educationHandler.Delete)
	}

	// Trainers
	trainerSvc, err := services.NewTrainerService(db, engine, svcs.Activity)
	if err != nil {
		return nil, err
	}
	trainerHandler := handlers.NewTrainerHandler(trainerSvc)
	trainers := api.Group("/trainers")
	{
		trainers.GET("", guard("trainer", "view"), trainerHandler.List)
		trainers.GET("/:id", guard("trainer", "view"), trainerHandler.Get)
		trainers.POST("", guard("trainer", "create"), trainerHandler.Create)
		trainers.PUT("/:id", guard("trainer", "update"), trainerHandler.Update)
		trainers.DELETE("/:id", guard("trainer", "delete"), trainerHandler.Delete)
	}

	// Projects
	projectSvc, err := services.NewProjectService(db, engine, svcs.Activity, svcs.Performance)
	if err != nil {
		return nil, err
	}
	projectHandler := handlers.NewProjectHandler(projectSvc)
	projects := api.Group("/projects")
	{
		projects.GET("", guard("project", "view"), projectHandler.List)
		projects.GET("/:id", guard("project", "view"), projectHandler.Get)
		projects.POST("", guard("project", "create"), projectHandler.Create)
		projects.PUT("/:id", guard("project", "update"), projectHandler.Update)
		projects.DELETE("/:id", guard("project", "delete"), projectHandler.Delete)
	}

	// Stakeholders
	stakeholderSvc, err := services.NewStakeholderService(db, engine, svcs.Activity)
	if err != nil {
		return nil, err
	}
	stakeholderHandler := handlers.NewStakeholderHandler(stakeholderSvc)
	stakeholders := api.Group("/stakeholders")
	{
		stakeholders.GET("", guard("stakeholder", "view"), stakeholderHandler.List)
		stakeholders.GET("/:id", guard("stakeholder", "view"), stakeholderHandler.Get)
		stakeholders.POST("", guard("stakeholder", "create"), stakeholderHandler.Create)
		stakeholders.PUT("/:id", guard("stakeholder", "update"), stakeholderHandler.Update)
		stakeholders.DELETE("/:id", guard("stakeholder", "delete"), stakeholderHandler.Delete)
	}

	// Payments
	paymentSvc, err := services.NewPaymentService(db, engine, svcs.Activity, svcs.Performance)
	if err != nil {
		return nil, err
	}
	paymentHandler := handlers.NewPaymentHandler(paymentSvc)
	payments := api.Group("/payments")
	{
		payments.GET("", guard("payment", "view"), paymentHandler.List)
		payments.GET("/:id", guard("payment", "view"), paymentHandler.Get)
		payments.GET("/education/:id/total", guard("payment", "view"), paymentHandler.TotalForEducation)
		payments.POST("", guard("payment", "create"), paymentHandler.Create)
		payments.PUT("/:id", guard("payment", "update"), paymentHandler.Update)
		payments.POST("/:id/pay", guard("payment", "update"), paymentHandler.MarkPaid)
		payments.DELETE("/:id", guard("payment", "delete"), paymentHandler.Delete)
	}

	// Categories and statuses
	categorySvc, err := services.NewCategoryService(db, engine, svcs.Activity)
	if err != nil {
		return nil, err
	}
	categoryHandler := handlers.NewCategoryHandler(categorySvc)
	categories := api.Group("/categories")
	{
		categories.GET("", guard("category", "view"), categoryHandler.List)
		categories.POST("", guard("category", "create"), categoryHandler.Create)
		categories.PUT("/:id", guard("category", "update"), categoryHandler.Update)
		categories.DELETE("/:id", guard("category", "delete"), categoryHandler.Delete)
	}

	statusSvc, err := services.NewStatusService(db, engine, svcs.Activity)
	if err != nil {
		return nil, err
	}
	statusHandler := handlers.NewStatusHandler(statusSvc)
	statuses := api.Group("/statuses")
	{
		statuses.GET("", guard("status", "view"), statusHandler.List)
		statuses.POST("", guard("status", "create"), statusHandler.Create)
		statuses.PUT("/:id", guard("status", "update"), statusHandler.Update)
		statuses.DELETE("/:id", guard("status", "delete"), statusHandler.Delete)
	}

	// Activities
	activitySvc, err := services.NewActivityService(db, engine, svcs.Activity)
	if err != nil {
		return nil, err
	}
	activityHandler := handlers.NewActivityHandler(activitySvc)
	activities := api.Group("/activities")
	{
		activities.GET("", guard("activity", "view"), activityHandler.List)
		activities.GET("/:id", guard("activity", "view"), activityHandler.Get)
		activities.POST("", guard("activity", "create"), activityHandler.Create)
		activities.PUT("/:id", guard("activity", "update"), activityHandler.Update)
		activities.DELETE("/:id", guard("activity", "delete"), activityHandler.Delete)
	}

	// Responsibles
	responsibleSvc, err := services.NewResponsibleService(db, engine, svcs.Activity)
	if err != nil {
		return nil, err
	}
	responsibleHandler := handlers.NewResponsibleHandler(responsibleSvc)
	responsibles := api.Group("/responsibles")
	{
		responsibles.GET("", guard("responsible", "view"), responsibleHandler.List)
		responsibles.GET("/:id", guard("responsible", "view"), responsibleHandler.Get)
		responsibles.POST("", guard("responsible", "create"), responsibleHandler.Create)
		responsibles.PUT("/:id", guard("responsible", "update"), responsibleHandler.Update)
		responsibles.PUT("/:id/role", guard("responsible", "update"), responsibleHandler.AssignRole)
		responsibles.DELETE("/:id", guard("responsible", "delete"), responsibleHandler.Delete)
	}

	// Users
	userSvc, err := services.NewUserService(db, engine, svcs.Activity)
	if err != nil {
		return nil, err
	}
	userHandler := handlers.NewUserHandler(userSvc)
	users := api.Group("/users")
	{
		users.GET("", guard("users", "view"), userHandler.List)
		users.GET("/:id", guard("users", "view"), userHandler.Get)
		users.PUT("/:id", guard("users", "update"), userHandler.Update)
		users.PUT("/:id/password", guard("users", "update"), userHandler.ResetPassword)
		users.DELETE("/:id", guard("users", "delete"), userHandler.Delete)
	}

	// Roles and permissions
	roleSvc, err := services.NewRoleService(db, engine, svcs.Activity)
	if err != nil {
		return nil, err
	}
	permissionSvc, err := services.NewPermissionService(db, engine, svcs.Activity)
	if err != nil {
		return nil, err
	}
	roleHandler := handlers.NewRoleHandler(roleSvc, permissionSvc)
	roles := api.Group("/roles")
	{
		roles.GET("", guard("roles", "view"), roleHandler.List)
		roles.GET("/:id", guard("roles", "view"), roleHandler.Get)
		roles.POST("", guard("roles", "create"), roleHandler.Create)
		roles.PUT("/:id", guard("roles", "update"), roleHandler.Update)
		roles.POST("/:id/permissions", guard("roles", "update"), roleHandler.Grant)
		roles.DELETE("/:id/permissions", guard("roles", "update"), roleHandler.Revoke)
		roles.DELETE("/:id", guard("roles", "delete"), roleHandler.Delete)
	}
	permissions := api.Group("/permissions")
	{
		permissions.GET("", guard("permissions", "view"), roleHandler.ListPermissions)
		permissions.POST("", guard("permissions", "create"), roleHandler.CreatePermission)
		permissions.DELETE("/:id", guard("permissions", "delete"), roleHandler.DeletePermission)
	}

	// Operational logs
	logHandler := handlers.NewLogHandler(svcs.Activity, svcs.Performance, svcs.API, svcs.Errors, svcs.Frontend)
	logs := api.Group("/logs")
	{
		logs.GET("/activity", guard("logs", "view"), logHandler.ListActivity)
		logs.POST("/activity/cleanup", guard("logs", "delete"), logHandler.CleanupActivity)
		logs.GET("/performance", guard("logs", "view"), logHandler.ListPerformance)
		logs.GET("/api", guard("logs", "view"), logHandler.ListAPI)
		logs.GET("/errors", guard("logs", "view"), logHandler.ListErrors)
		logs.GET("/frontend", guard("logs", "view"), logHandler.ListFrontend)
		// Ingest is open to any authenticated client so the UI can report
		// without a permission row.
		logs.POST("/frontend", logHandler.CreateFrontend)
	}

	return r, nil
}
