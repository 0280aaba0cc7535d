package queue

import (
	"encoding/json"

	"github.com/sveneberth/viur-shop/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskDiscountGenerateCodes 生成个人优惠码任务
	TaskDiscountGenerateCodes = constants.TaskDiscountGenerateCodes
	// TaskDiscountRefreshAutomatic 刷新自动优惠缓存任务
	TaskDiscountRefreshAutomatic = constants.TaskDiscountRefreshAutomatic
)

// GenerateCodesPayload 生成个人码任务载荷
type GenerateCodesPayload struct {
	ConditionID uint `json:"condition_id"`
}

// RefreshAutomaticPayload 刷新自动优惠任务载荷
type RefreshAutomaticPayload struct {
	Reason string `json:"reason"`
}

// NewGenerateCodesTask 创建生成个人码任务
func NewGenerateCodesTask(payload GenerateCodesPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDiscountGenerateCodes, body), nil
}

// NewRefreshAutomaticTask 创建刷新自动优惠任务
func NewRefreshAutomaticTask(payload RefreshAutomaticPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDiscountRefreshAutomatic, body), nil
}
