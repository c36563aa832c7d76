package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fieldmed/supplyline/internal/config"
	"github.com/fieldmed/supplyline/internal/messaging"
	ordersvc "github.com/fieldmed/supplyline/internal/service/order"
	"github.com/fieldmed/supplyline/internal/worker"
)

var workerTracer = otel.Tracer("github.com/fieldmed/supplyline/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewOrderReceivedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderReceivedHandler consumes accepted-order events. It stands in for
// the supply-desk notification hook; today it records the intake.
func NewOrderReceivedHandler(logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.received", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event ordersvc.OrderReceivedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order received", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}
		logger.Info("order received event processed",
			zap.Int64("id", event.ID),
			zap.String("pcv_id", event.PCVID),
			zap.String("shortcode", event.Shortcode),
			zap.Int("quantity", event.Quantity),
			zap.String("country", event.Country),
		)

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
