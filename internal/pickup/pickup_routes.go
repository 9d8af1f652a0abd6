package pickup

import (
	"github.com/Justoo1/daycare-management-system-sub000/internal/middleware"
	"github.com/Justoo1/daycare-management-system-sub000/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service, rdb *redis.Client) {
	pickups := r.Group("/pickup")
	pickups.Use(middleware.AuthMiddleware())
	{
		pickups.POST("/checkout", middleware.RBACAuthorize(rbacService, "pickup", "create"), middleware.ExtractUserID(), middleware.Idempotency(rdb), h.CheckOutDirect)
		pickups.POST("/verifications", middleware.RBACAuthorize(rbacService, "pickup", "create"), middleware.ExtractUserID(), middleware.Idempotency(rdb), h.InitiateSecureCheckout)
		pickups.POST("/verifications/:id/verify", middleware.RBACAuthorize(rbacService, "pickup", "update"), middleware.RateLimitByIP(1, 5), h.VerifyCheckoutCode)
		pickups.POST("/verifications/:id/resend", middleware.RBACAuthorize(rbacService, "pickup", "update"), middleware.RateLimitByIP(0.2, 3), h.ResendCode)
		pickups.DELETE("/verifications/:id", middleware.RBACAuthorize(rbacService, "pickup", "delete"), h.CancelPendingCheckout)
	}
}
