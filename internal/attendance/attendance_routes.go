package attendance

import (
	"github.com/Justoo1/daycare-management-system-sub000/internal/middleware"
	"github.com/Justoo1/daycare-management-system-sub000/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	attendances := r.Group("/attendances")
	attendances.Use(middleware.AuthMiddleware())
	{
		attendances.GET("", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetAllByDate)
		attendances.GET("/:id", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetByID)
		attendances.POST("/check-in", middleware.RBACAuthorize(rbacService, "attendance", "create"), h.CheckIn)
	}
}
