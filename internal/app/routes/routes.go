package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/abiturient/internal/app/controllers"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/middleware"
	"github.com/yigit/abiturient/internal/pkg/websocket"
)

// ResourceRegistrar mounts one admin CRUD resource.
type ResourceRegistrar interface {
	Register(rg *gin.RouterGroup)
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	analyticsController *controllers.AnalyticsController,
	catalogController *controllers.CatalogController,
	dashboardController *controllers.DashboardController,
	assistantController *controllers.AssistantController,
	wsHandler *websocket.Handler,
	adminResources []ResourceRegistrar,
	authMiddleware *middleware.AuthMiddleware,
) {
	api := router.Group("/api")

	// --- Public auth routes ---
	auth := api.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.GET("/session", authMiddleware.Optional(), authController.Session)
		auth.POST("/logout", authMiddleware.Authenticate(), authController.Logout)
	}

	// --- Public catalog ---
	institutions := api.Group("/institutions")
	{
		institutions.GET("", catalogController.ListInstitutions)
		institutions.GET("/:id", catalogController.GetInstitution)
	}

	// --- Admin ---
	admin := api.Group("/admin", authMiddleware.Authenticate(), authMiddleware.RequireRole(models.RoleAdmin))
	{
		for _, r := range adminResources {
			r.Register(admin)
		}
		admin.GET("/analytics", analyticsController.GetAnalytics)
	}

	// --- Student ---
	student := api.Group("/student", authMiddleware.Authenticate(), authMiddleware.RequireRole(models.RoleStudent))
	{
		student.GET("/dashboard", dashboardController.StudentDashboard)
		student.GET("/saved-institutions", dashboardController.ListSavedInstitutions)
		student.POST("/saved-institutions/:id", dashboardController.SaveInstitution)
		student.DELETE("/saved-institutions/:id", dashboardController.RemoveSavedInstitution)
	}

	// --- Parent ---
	parent := api.Group("/parent", authMiddleware.Authenticate(), authMiddleware.RequireRole(models.RoleParent))
	{
		parent.GET("/dashboard", dashboardController.ParentDashboard)
	}

	// --- Assistant (any signed-in user) ---
	assistant := api.Group("/assistant", authMiddleware.Authenticate())
	{
		assistant.GET("/greeting", assistantController.Greeting)
		assistant.POST("/chat", assistantController.Chat)
		assistant.GET("/ws", wsHandler.HandleConnection)
	}
}
