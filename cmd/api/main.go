package main

import (
	"context"
	"os"
	"time"

	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/app"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/bootstrap"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()
	r := gin.Default()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// build dependency + routes + maintenance loops
	if err := app.BuildApp(ctx, r); err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}

	auditLogger := bootstrap.NewStdoutAuditLogger()
	err = bootstrap.Serve(
		r,
		bootstrap.ServerConfig{
			Port:         os.Getenv("PORT"),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		auditLogger,
		cancel,
	)
	if err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
