package app

import (
	"errors"
	"fmt"

	"github.com/sveneberth/viur-shop/internal/config"
	"github.com/sveneberth/viur-shop/internal/logger"
	"github.com/sveneberth/viur-shop/internal/provider"
	"github.com/sveneberth/viur-shop/internal/router"
	"github.com/sveneberth/viur-shop/internal/worker"
)

// ErrUnknownMode 启动模式不合法
var ErrUnknownMode = errors.New("unknown run mode")

// BuildRunner 按启动模式装配 HTTP 与队列服务
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if !isKnownMode(mode) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}

	container := provider.NewContainer(cfg)
	return buildRunnerWithContainer(cfg, container, mode)
}

func buildRunnerWithContainer(cfg *config.Config, container *provider.Container, mode string) (*Runner, error) {
	var services []Service

	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(listenAddr(cfg), engine))
	}

	consumer := worker.NewConsumer(container)
	switch {
	case mode == ModeWorker:
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	case mode == ModeAll && cfg.Queue.Enabled:
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	case mode == ModeAll:
		// 未启用队列时在进程内维持自动优惠缓存
		logger.Infow("app_queue_disabled_inline_warmup")
		services = append(services, worker.NewWarmupService(consumer))
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}
	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start",
		"addr", listenAddr(opts.Config),
		"mode", opts.Mode,
		"queue_enabled", opts.Config.Queue.Enabled,
		"redis_enabled", opts.Config.Redis.Enabled,
	)
	return RunWithOptions(runner, opts)
}

func listenAddr(cfg *config.Config) string {
	return cfg.Server.Host + ":" + cfg.Server.Port
}

func isKnownMode(mode string) bool {
	switch mode {
	case ModeAll, ModeAPI, ModeWorker:
		return true
	}
	return false
}
