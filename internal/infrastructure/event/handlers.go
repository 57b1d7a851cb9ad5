package event

import (
	"context"
	"fmt"

	"github.com/agricred/intake/internal/domain/intake"
	"github.com/agricred/intake/internal/domain/shared"
	"github.com/agricred/intake/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// SubmissionLogHandler writes an audit line for every submitted session
type SubmissionLogHandler struct {
	logger *zap.Logger
}

// NewSubmissionLogHandler creates a SubmissionLogHandler
func NewSubmissionLogHandler(log *zap.Logger) *SubmissionLogHandler {
	return &SubmissionLogHandler{logger: log.Named("submissions")}
}

// EventTypes implements shared.EventHandler
func (h *SubmissionLogHandler) EventTypes() []string {
	return []string{intake.EventTypeSessionSubmitted}
}

// Handle implements shared.EventHandler
func (h *SubmissionLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	submitted, ok := event.(*intake.SessionSubmittedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, event.EventType())
	}

	logger.WithTraceContext(ctx, h.logger).Info("intake session submitted",
		zap.String("session_id", submitted.AggregateID().String()),
		zap.String("submitted_by", submitted.SubmittedBy),
		zap.Time("submitted_at", submitted.SubmittedAt),
		zap.String("total_asset_value", submitted.TotalAssetValue.StringFixed(2)),
	)
	return nil
}

var _ shared.EventHandler = (*SubmissionLogHandler)(nil)
