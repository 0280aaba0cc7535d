package app

import (
	"os"
	"strings"
	"time"

	"github.com/sveneberth/viur-shop/internal/config"
	"github.com/sveneberth/viur-shop/internal/logger"

	"go.uber.org/zap"
)

// 启动模式
const (
	ModeAll    = "all"    // HTTP + 队列消费
	ModeAPI    = "api"    // 仅 HTTP
	ModeWorker = "worker" // 仅队列消费
)

const defaultShutdownTimeout = 10 * time.Second

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// normalizeOptions 补齐默认参数
func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	opts.Mode = strings.ToLower(strings.TrimSpace(opts.Mode))
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	return opts
}
