package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/edunexia/portal-api/internal/middleware"
	"github.com/edunexia/portal-api/internal/models"
)

// Handlers aggregates every HTTP handler for route registration.
type Handlers struct {
	Auth                 *AuthHandler
	User                 *UserHandler
	Course               *CourseHandler
	Enrollment           *EnrollmentHandler
	Contract             *ContractHandler
	SimplifiedEnrollment *SimplifiedEnrollmentHandler
	Webhook              *WebhookHandler
}

// RegisterRoutes mounts the API surface under the given prefix. Staff-only
// routes sit behind JWT plus role checks; checkout and the payment webhook
// stay public.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, auth gin.HandlerFunc) {
	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)
	api.POST("/webhook/asaas", h.Webhook.Asaas)
	api.POST("/simplified-enrollments", h.SimplifiedEnrollment.Checkout)
	api.GET("/courses", h.Course.List)
	api.GET("/courses/:id", h.Course.Get)

	protected := api.Group("")
	protected.Use(auth)

	protected.GET("/auth/me", h.Auth.Me)
	protected.POST("/auth/change-password", h.Auth.ChangePassword)

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleManager)
	admin := middleware.RequireRoles(models.RoleAdmin)

	users := protected.Group("/users")
	users.GET("", staff, h.User.List)
	users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), string(models.RoleManager), "SELF"), h.User.Get)
	users.POST("", admin, h.User.Create)
	users.PUT("/:id", admin, h.User.Update)
	users.DELETE("/:id", admin, h.User.Deactivate)

	enrollments := protected.Group("/enrollments")
	enrollments.GET("", staff, h.Enrollment.List)
	enrollments.GET("/:id", staff, h.Enrollment.Get)

	contracts := protected.Group("/contracts")
	contracts.GET("", staff, h.Contract.List)
	contracts.GET("/:id", staff, h.Contract.Get)
	contracts.GET("/:id/pdf", staff, h.Contract.Download)

	simplified := protected.Group("/simplified-enrollments")
	simplified.GET("", staff, h.SimplifiedEnrollment.List)
	simplified.GET("/:id", staff, h.SimplifiedEnrollment.Get)
	simplified.DELETE("/:id", staff, h.SimplifiedEnrollment.Cancel)
	simplified.GET("/:id/logs", staff, h.SimplifiedEnrollment.Logs)
	simplified.POST("/:id/sync", staff, h.SimplifiedEnrollment.Sync)
	simplified.POST("/:id/fix-student-account", staff, h.SimplifiedEnrollment.FixStudentAccount)
	simplified.POST("/process-pending", staff, h.SimplifiedEnrollment.ProcessPending)
	simplified.POST("/recover-incomplete", staff, h.SimplifiedEnrollment.RecoverIncomplete)
}
