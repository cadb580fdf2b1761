package app

import (
	"context"

	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/attendance"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/breakwindow"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/broadcast"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/messaging/kafka"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/middleware"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/rbac"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/scheduler"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func registerModules(
	ctx context.Context,
	router *gin.Engine,
	ds *connection.DataSource,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	attendanceRepo := attendance.NewRepository(ds)
	breakWindowRepo := breakwindow.NewRepository(ds)
	broadcastRepo := broadcast.NewRepository(ds)
	outboxRepo := kafka.NewOutboxRepository(ds)

	// --- RBAC Core ---
	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer)

	// --- Services ---
	breakWindowService := breakwindow.NewService(breakWindowRepo)
	attendanceService := attendance.NewServiceWithOutbox(attendanceRepo, breakWindowService, outboxRepo)
	broadcastService := broadcast.NewService(broadcastRepo)

	// First boot only: stock break windows.
	if err := breakWindowService.SeedDefaults(ctx); err != nil {
		return err
	}

	// --- Handlers ---
	attendanceHandler := attendance.NewHandlerWithRedis(attendanceService, rdb)
	breakWindowHandler := breakwindow.NewHandler(breakWindowService)
	broadcastHandler := broadcast.NewHandler(broadcastService)

	// --- Global middleware ---
	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimitByIP(20, 40))

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		attendance.RegisterRoutes(api, attendanceHandler, rbacService, rdb)
		breakwindow.RegisterRoutes(api, breakWindowHandler, rbacService)
		broadcast.RegisterRoutes(api, broadcastHandler, rbacService)
	}

	// --- Maintenance loops ---
	sched := scheduler.New(attendanceService, broadcastService, scheduler.SystemClock{}, zap.L())
	sched.Start(ctx)

	return nil
}
