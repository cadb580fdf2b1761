package app

import (
	"context"
	"os"

	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BuildApp(ctx context.Context, router *gin.Engine) error {
	logger := zap.L().Named("app")

	// The data source opens lazily; an empty DSN boots the API with
	// persistence-backed operations disabled rather than crashing.
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Warn("DATABASE_URL not set, storage-backed operations are disabled")
	}
	ds := connection.NewDataSource(dsn, zap.L())

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	logger.Info("redis connection established")

	return registerModules(ctx, router, ds, redisClient)
}
