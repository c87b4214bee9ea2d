package handlers

import (
	"context"

	"github.com/hibiken/asynq"

	"library-backend/internal/domains/borrow"
	"library-backend/pkg/logger"
)

type OverdueReportHandler struct {
	service borrow.Service
}

func NewOverdueReportHandler(service borrow.Service) *OverdueReportHandler {
	return &OverdueReportHandler{service: service}
}

// ProcessTask regenerates the overdue report; asynq retries on error.
func (h *OverdueReportHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	report, err := h.service.OverdueReport(ctx)
	if err != nil {
		logger.Error("overdue report task failed", err)
		return err
	}

	logger.Info("overdue report generated", map[string]interface{}{
		"bytes": len(report),
	})
	return nil
}
