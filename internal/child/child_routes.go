package child

import (
	"github.com/Justoo1/daycare-management-system-sub000/internal/middleware"
	"github.com/Justoo1/daycare-management-system-sub000/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	children := r.Group("/children")
	children.Use(middleware.AuthMiddleware())
	{
		children.GET("", middleware.RBACAuthorize(rbacService, "child", "read"), h.GetAll)
		children.GET("/:id", middleware.RBACAuthorize(rbacService, "child", "read"), h.GetByID)
		children.POST("", middleware.RBACAuthorize(rbacService, "child", "create"), h.Create)
		children.PUT("/:id", middleware.RBACAuthorize(rbacService, "child", "update"), h.Update)
		children.DELETE("/:id", middleware.RBACAuthorize(rbacService, "child", "delete"), h.Delete)
		children.POST("/:id/guardians", middleware.RBACAuthorize(rbacService, "child", "update"), h.AddGuardian)
		children.PUT("/:id/guardians/:guardianId", middleware.RBACAuthorize(rbacService, "child", "update"), h.UpdateGuardian)
		children.DELETE("/:id/guardians/:guardianId", middleware.RBACAuthorize(rbacService, "child", "update"), h.RemoveGuardian)
	}
}
