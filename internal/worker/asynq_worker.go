package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sveneberth/viur-shop/internal/logger"
	"github.com/sveneberth/viur-shop/internal/provider"
	"github.com/sveneberth/viur-shop/internal/queue"
	"github.com/sveneberth/viur-shop/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskDiscountGenerateCodes, c.handleGenerateCodes)
	mux.HandleFunc(queue.TaskDiscountRefreshAutomatic, c.handleRefreshAutomatic)
}

func (c *Consumer) handleGenerateCodes(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_generate_codes_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.GenerateCodesPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_generate_codes_unmarshal_failed", "error", err)
		return err
	}
	if payload.ConditionID == 0 {
		logger.Debugw("worker_generate_codes_skip_invalid_payload", "condition_id", payload.ConditionID)
		return nil
	}
	if c.DiscountService == nil {
		logger.Warnw("worker_generate_codes_skip_service_nil", "condition_id", payload.ConditionID)
		return nil
	}
	created, err := c.DiscountService.GenerateIndividualCodes(payload.ConditionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			logger.Debugw("worker_generate_codes_skip_condition_not_found", "condition_id", payload.ConditionID)
			return nil
		case errors.Is(err, service.ErrInvalidArgument):
			logger.Debugw("worker_generate_codes_skip_not_individual", "condition_id", payload.ConditionID)
			return nil
		default:
			logger.Warnw("worker_generate_codes_failed", "condition_id", payload.ConditionID, "error", err)
			return err
		}
	}
	logger.Infow("worker_generate_codes_done", "condition_id", payload.ConditionID, "created", created)
	return nil
}

func (c *Consumer) handleRefreshAutomatic(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_refresh_automatic_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.RefreshAutomaticPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			logger.Warnw("worker_refresh_automatic_unmarshal_failed", "error", err)
			return err
		}
	}
	return c.refreshAutomatic(ctx, payload.Reason)
}

func (c *Consumer) refreshAutomatic(ctx context.Context, reason string) error {
	if c.DiscountEvaluator == nil {
		logger.Warnw("worker_refresh_automatic_skip_evaluator_nil", "reason", reason)
		return nil
	}
	rs := c.NewRequestState("", "", "", 0)
	discounts, err := c.DiscountEvaluator.RefreshAutomaticallyDiscounts(ctx, rs)
	c.ShopMetrics.ObserveAutomaticRefresh(err)
	if err != nil {
		logger.Warnw("worker_refresh_automatic_failed", "reason", reason, "error", err)
		return err
	}
	logger.Infow("worker_refresh_automatic_done",
		"reason", reason,
		"count", len(discounts),
		"expires_at", c.DiscountEvaluator.AutomaticCache().ExpiresAt(),
	)
	return nil
}
