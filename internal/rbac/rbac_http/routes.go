package rbac_http

import (
	"github.com/Justoo1/daycare-management-system-sub000/internal/middleware"
	"github.com/Justoo1/daycare-management-system-sub000/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *rbac.Handler) {
	group := r.Group("/rbac")
	group.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware("ADMIN"))
	{
		group.POST("/enforce", handler.Enforce)
	}
}
