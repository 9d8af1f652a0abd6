package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Justoo1/daycare-management-system-sub000/internal/events"
	"github.com/Justoo1/daycare-management-system-sub000/internal/messaging/kafka/consumer"
	"github.com/Justoo1/daycare-management-system-sub000/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	smsGateway := notification.NewSMSGateway(notification.SMSConfig{
		APIURL:   os.Getenv("SMS_API_URL"),
		APIKey:   os.Getenv("SMS_API_KEY"),
		SenderID: os.Getenv("SMS_SENDER_ID"),
		Timeout:  10 * time.Second,
	})

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.CheckoutCompletedTopic,
		GroupID:        "daycare-checkout-notice",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeCheckoutCompleted(ctx, reader, smsGateway, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
