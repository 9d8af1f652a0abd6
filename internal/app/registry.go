package app

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/Justoo1/daycare-management-system-sub000/internal/attendance"
	"github.com/Justoo1/daycare-management-system-sub000/internal/auth"
	"github.com/Justoo1/daycare-management-system-sub000/internal/child"
	"github.com/Justoo1/daycare-management-system-sub000/internal/messaging/kafka"
	"github.com/Justoo1/daycare-management-system-sub000/internal/notification"
	"github.com/Justoo1/daycare-management-system-sub000/internal/pickup"
	"github.com/Justoo1/daycare-management-system-sub000/internal/rbac"
	"github.com/Justoo1/daycare-management-system-sub000/internal/rbac/infra"
	"github.com/Justoo1/daycare-management-system-sub000/internal/rbac/rbac_http"
	"github.com/Justoo1/daycare-management-system-sub000/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	childRepo := child.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	pickupRepo := pickup.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	counterRepo := counter.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Notification Gateway ---
	smsGateway := notification.NewSMSGateway(notification.SMSConfig{
		APIURL:   os.Getenv("SMS_API_URL"),
		APIKey:   os.Getenv("SMS_API_KEY"),
		SenderID: os.Getenv("SMS_SENDER_ID"),
		Timeout:  10 * time.Second,
	})

	// --- Services ---
	authService := auth.NewService(authRepo, rbacService)
	childService := child.NewService(db, childRepo, counterRepo)
	attendanceService := attendance.NewService(db, attendanceRepo)
	pickupService := pickup.NewService(
		db,
		pickup.Config{},
		pickupRepo,
		attendanceRepo,
		childRepo,
		smsGateway,
		outboxRepo,
	)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	childHandler := child.NewHandler(childService)
	attendanceHandler := attendance.NewHandler(attendanceService)
	pickupHandler := pickup.NewHandler(pickupService)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		child.RegisterRoutes(api, childHandler, rbacService)
		attendance.RegisterRoutes(api, attendanceHandler, rbacService)
		pickup.RegisterRoutes(api, pickupHandler, rbacService, rdb)
		rbac_http.RegisterRoutes(api, rbacHandler)
	}

	return nil
}
