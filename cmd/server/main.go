package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/sveneberth/viur-shop/internal/app"
	"github.com/sveneberth/viur-shop/internal/config"
	"github.com/sveneberth/viur-shop/internal/i18n"
	"github.com/sveneberth/viur-shop/internal/logger"
	"github.com/sveneberth/viur-shop/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ansiReset     = "\033[0m"
	ansiBold      = "\033[1m"
	ansiDim       = "\033[2m"
	ansiGreen     = "\033[32m"
	ansiYellow    = "\033[33m"
	ansiCyan      = "\033[36m"
	ansiBrightMag = "\033[95m"
)

func main() {
	// 解析命令行参数
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	// 加载配置
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := zap.NewStdLog(logger.Z())
	printStartupBanner(cfg, mode)

	// 店铺默认语言同时作为错误信息的兜底语言
	i18n.SetDefaultLocale(cfg.Shop.Language)

	if cfg.Server.Mode == "release" {
		if isWeakSecret(cfg.JWT.SecretKey) {
			stdLog.Fatalf("JWT secret 过弱或仍为默认值，请在生产环境中配置强随机密钥")
		}
	} else if isWeakSecret(cfg.JWT.SecretKey) {
		stdLog.Printf("警告: JWT secret 过弱或仍为默认值，建议在生产环境中更换")
	}

	// 初始化数据库
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}

	// 自动迁移数据库表
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	// 初始化默认管理员账号（worker 模式不需要）
	defaultAdminUser := os.Getenv("SHOP_DEFAULT_ADMIN_USERNAME")
	defaultAdminPass := os.Getenv("SHOP_DEFAULT_ADMIN_PASSWORD")
	if mode == app.ModeWorker {
		stdLog.Printf("worker 模式，跳过默认管理员初始化")
	} else if cfg.Server.Mode == "release" && defaultAdminPass == "" {
		stdLog.Printf("警告: 未设置 SHOP_DEFAULT_ADMIN_PASSWORD，已跳过默认管理员初始化")
	} else if err := models.InitDefaultAdmin(defaultAdminUser, defaultAdminPass); err != nil {
		stdLog.Printf("警告: 初始化默认管理员失败: %v", err)
	}

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func printStartupBanner(cfg *config.Config, mode string) {
	fmt.Println(ansiBrightMag + "╔══════════════════════════════════════════════════════════╗" + ansiReset)
	fmt.Println(ansiBrightMag + "║                  viur-shop API 启动中                    ║" + ansiReset)
	fmt.Println(ansiBrightMag + "╚══════════════════════════════════════════════════════════╝" + ansiReset)
	fmt.Println(ansiCyan + "       _                       __             " + ansiReset)
	fmt.Println(ansiCyan + " _  __(_)_ ______  ____ ___ / /  ___  ___    " + ansiReset)
	fmt.Println(ansiCyan + "| |/ / / // / __/ /___/(_-</ _ \\/ _ \\/ _ \\   " + ansiReset)
	fmt.Println(ansiCyan + "|___/_/\\_,_/_/       /___/_//_/\\___/ .__/   " + ansiReset)
	fmt.Println(ansiCyan + "                                  /_/        " + ansiReset)
	fmt.Println(ansiGreen + ansiBold + "Runtime" + ansiReset)
	fmt.Printf(ansiYellow+"• Mode:     %s (%s)\n"+ansiReset, mode, cfg.Server.Mode)
	fmt.Printf(ansiYellow+"• Listen:   %s:%s\n"+ansiReset, cfg.Server.Host, cfg.Server.Port)
	fmt.Printf(ansiYellow+"• Database: %s\n"+ansiReset, cfg.Database.Driver)
	fmt.Printf(ansiYellow+"• Shop:     %s / %s\n"+ansiReset, cfg.Shop.Language, cfg.Shop.Country)
	fmt.Printf(ansiYellow+"• Queue:    %t  Redis: %t\n"+ansiReset, cfg.Queue.Enabled, cfg.Redis.Enabled)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	if strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key") {
		return true
	}
	return false
}
