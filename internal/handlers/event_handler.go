package handlers

import (
	"encoding/json"
	"fmt"

	"catalog/internal/models"
	"catalog/pkg/rabbitmq"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// NewProductAuditHandler returns a consumer callback that writes every product event to the audit log.
// Messages that cannot be decoded are discarded.
func NewProductAuditHandler(logger *zap.Logger) func(msg amqp.Delivery) error {
	auditLog := logger.Named("audit")
	return func(msg amqp.Delivery) error {
		var event models.ProductEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return fmt.Errorf("%w: malformed product event: %v", rabbitmq.ErrDiscard, err)
		}
		if event.Type == "" {
			return fmt.Errorf("%w: product event %s has no type", rabbitmq.ErrDiscard, event.ID)
		}

		auditLog.Info("product event",
			zap.String("event_id", event.ID),
			zap.String("type", event.Type),
			zap.String("routing_key", msg.RoutingKey),
			zap.Int("product_id", event.ProductID),
			zap.Time("occurred_at", event.OccurredAt),
		)
		return nil
	}
}
