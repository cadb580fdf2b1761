package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/messaging/kafka"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/messaging/kafka/producer"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker drains the outbox into Kafka until interrupted.
func RunWorker() error {
	logger := zap.L().Named("app.worker")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	ds := connection.NewDataSource(dsn, zap.L())

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(kafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(ds)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		3*time.Second,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}
