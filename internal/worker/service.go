package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sveneberth/viur-shop/internal/config"
	"github.com/sveneberth/viur-shop/internal/logger"
	"github.com/sveneberth/viur-shop/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	minWarmupInterval = time.Minute
	warmupReason      = "warmup"
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.DiscountEvaluator != nil {
		go s.runAutomaticWarmupLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// WarmupService 未启用队列时在进程内刷新自动优惠缓存
type WarmupService struct {
	consumer *Consumer
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewWarmupService 创建进程内预热服务
func NewWarmupService(consumer *Consumer) *WarmupService {
	return &WarmupService{
		consumer: consumer,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Name 服务名称
func (w *WarmupService) Name() string {
	return "automatic_warmup"
}

// Start 阻塞运行预热循环直到 ctx 结束或 Stop
func (w *WarmupService) Start(ctx context.Context) error {
	if w == nil || w.consumer == nil || w.consumer.DiscountEvaluator == nil {
		return errors.New("warmup consumer not initialized")
	}
	defer close(w.done)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.stop:
			cancel()
		case <-ctx.Done():
		}
	}()
	(&Service{consumer: w.consumer}).runAutomaticWarmupLoop(ctx)
	return nil
}

// Stop 停止预热循环
func (w *WarmupService) Stop(ctx context.Context) error {
	if w == nil {
		return nil
	}
	w.stopOnce.Do(func() { close(w.stop) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runAutomaticWarmupLoop 在自动优惠缓存过期前推送刷新任务
func (s *Service) runAutomaticWarmupLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.DiscountEvaluator == nil {
		return
	}
	ttl := s.consumer.Config.Discount.AutomaticCacheTTL()
	interval, lead := warmupSchedule(ttl)
	runOnce := func() {
		expiresAt := s.consumer.DiscountEvaluator.AutomaticCache().ExpiresAt()
		if !shouldWarmup(time.Now(), expiresAt, lead) {
			return
		}
		if s.consumer.QueueClient.Enabled() {
			if err := s.consumer.QueueClient.EnqueueRefreshAutomatic(queue.RefreshAutomaticPayload{Reason: warmupReason}, 0); err != nil {
				logger.Warnw("worker_automatic_warmup_enqueue_failed", "error", err)
			}
			return
		}
		_ = s.consumer.refreshAutomatic(ctx, warmupReason)
	}
	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

// warmupSchedule 轮询间隔取 TTL 的四分之一，提前量取 TTL 的十分之一
func warmupSchedule(ttl time.Duration) (interval, lead time.Duration) {
	interval = ttl / 4
	if interval < minWarmupInterval {
		interval = minWarmupInterval
	}
	lead = ttl / 10
	if lead < interval {
		lead = interval
	}
	return interval, lead
}

func shouldWarmup(now, expiresAt time.Time, lead time.Duration) bool {
	if expiresAt.IsZero() {
		return true
	}
	return !now.Add(lead).Before(expiresAt)
}
