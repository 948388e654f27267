package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shopstack/backend/internal/domain/catalog"
	"github.com/shopstack/backend/internal/domain/shared"
)

// StockBelowThresholdHandler listens for stock decrements and raises an alert
// when a product drops under its low-stock threshold
type StockBelowThresholdHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// StockAlertNotifier is the interface for sending stock alerts.
// Implementations can support different channels (in-app, email, SMS, etc.)
type StockAlertNotifier interface {
	// SendAlert sends a stock alert notification
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert represents a low-stock alert
type StockAlert struct {
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	CurrentQuantity int64  `json:"current_quantity"`
	AlertType       string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// NewStockBelowThresholdHandler creates a new handler for stock decrement events
func NewStockBelowThresholdHandler(logger *zap.Logger) *StockBelowThresholdHandler {
	return &StockBelowThresholdHandler{
		logger: logger,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *StockBelowThresholdHandler) WithNotifier(notifier StockAlertNotifier) *StockBelowThresholdHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *StockBelowThresholdHandler) EventTypes() []string {
	return []string{catalog.EventTypeStockDecreased}
}

// Handle processes a StockDecreasedEvent, alerting when the product is at or
// under its threshold
func (h *StockBelowThresholdHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	decreased, ok := event.(*catalog.StockDecreasedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", catalog.EventTypeStockDecreased),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeStockDecreased, event.EventType())
	}

	if !decreased.BelowThreshold {
		return nil
	}

	alertType := "low_stock"
	if decreased.NewQuantity == 0 {
		alertType = "out_of_stock"
	}

	h.logger.Warn("stock below threshold detected",
		zap.String("product_id", decreased.ProductID.String()),
		zap.String("product_name", decreased.ProductName),
		zap.Int64("removed", decreased.Removed),
		zap.Int64("new_quantity", decreased.NewQuantity),
		zap.String("alert_type", alertType),
	)

	if h.notifier != nil {
		alert := StockAlert{
			ProductID:       decreased.ProductID.String(),
			ProductName:     decreased.ProductName,
			CurrentQuantity: decreased.NewQuantity,
			AlertType:       alertType,
		}
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			// Notification failure shouldn't fail the event handling.
			h.logger.Error("failed to send stock alert notification",
				zap.String("product_id", alert.ProductID),
				zap.Error(err),
			)
		}
	}

	return nil
}

var _ shared.EventHandler = (*StockBelowThresholdHandler)(nil)

// LoggingStockAlertNotifier is a simple notifier that logs alerts.
// This is useful for development and testing.
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{
		logger: logger,
	}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("product_id", alert.ProductID),
		zap.String("product_name", alert.ProductName),
		zap.Int64("current_qty", alert.CurrentQuantity),
	)
	return nil
}

var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
