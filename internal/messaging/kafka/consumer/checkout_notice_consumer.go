package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Justoo1/daycare-management-system-sub000/internal/events"
	"github.com/Justoo1/daycare-management-system-sub000/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeCheckoutCompleted texts the guardian that their child has left the
// facility. Delivery failures here never touch the attendance record; the
// message is simply not committed and redelivered later.
func ConsumeCheckoutCompleted(
	ctx context.Context,
	reader *kafkago.Reader,
	gateway notification.Gateway,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.checkout_notice")
	log.Info("checkout notice consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("checkout notice consumer stopped")
				return
			}
			log.Error("fetch checkout notice message failed", zap.Error(err))
			continue
		}

		var event events.CheckoutCompletedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode checkout completed event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if event.GuardianPhone == "" {
			// Free-text authorization carries no phone number.
			log.Info("no guardian phone on checkout event, skipping notice",
				zap.String("attendance_id", event.AttendanceID),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		message := fmt.Sprintf(
			"%s was picked up by %s at %s.",
			event.ChildName,
			event.PickupName,
			event.CheckedOutAt.Format("15:04"),
		)
		if err := gateway.SendText(ctx, event.GuardianPhone, message); err != nil {
			log.Error("send checkout notice failed",
				zap.String("attendance_id", event.AttendanceID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit checkout notice message failed", zap.Error(err))
			continue
		}

		log.Info("checkout notice sent",
			zap.String("attendance_id", event.AttendanceID),
			zap.String("child_id", event.ChildID),
		)
	}
}
