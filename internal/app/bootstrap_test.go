package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sveneberth/viur-shop/internal/config"
	"github.com/sveneberth/viur-shop/internal/models"
	"github.com/sveneberth/viur-shop/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

func newTestContainer(t *testing.T) (*config.Config, *provider.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrateWith(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	cfg := &config.Config{
		Server:   config.ServerConfig{Host: "127.0.0.1", Port: "0"},
		Shop:     config.ShopConfig{Language: "de", Country: "DE", SessionHeader: "X-Session-Key"},
		Discount: config.DiscountConfig{AutomaticCacheTTLSeconds: 3600, QueryLimit: 100},
	}
	return cfg, provider.NewContainerWithDB(cfg, db, nil, prometheus.NewRegistry())
}

func serviceNames(r *Runner) []string {
	names := make([]string, 0, len(r.services))
	for _, svc := range r.services {
		names = append(names, svc.Name())
	}
	return names
}

func TestBuildRunnerModes(t *testing.T) {
	cfg, container := newTestContainer(t)

	runner, err := buildRunnerWithContainer(cfg, container, ModeAPI)
	if err != nil {
		t.Fatalf("api mode failed: %v", err)
	}
	if got := strings.Join(serviceNames(runner), ","); got != "http" {
		t.Fatalf("api mode services = %s", got)
	}

	runner, err = buildRunnerWithContainer(cfg, container, ModeAll)
	if err != nil {
		t.Fatalf("all mode failed: %v", err)
	}
	if got := strings.Join(serviceNames(runner), ","); got != "http,automatic_warmup" {
		t.Fatalf("all mode without queue services = %s", got)
	}

	if _, err := buildRunnerWithContainer(cfg, container, ModeWorker); err == nil {
		t.Fatalf("worker mode without queue should fail")
	}
}

func TestBuildRunnerRejectsUnknownMode(t *testing.T) {
	_, err := BuildRunner(&config.Config{}, "cron")
	if !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("want ErrUnknownMode, got %v", err)
	}
	if _, err := BuildRunner(nil, ModeAll); err == nil {
		t.Fatalf("nil config should fail")
	}
}

func TestNormalizeOptions(t *testing.T) {
	opts := normalizeOptions(Options{Mode: "  API "})
	if opts.Mode != ModeAPI {
		t.Fatalf("mode not normalized: %q", opts.Mode)
	}
	if opts.ShutdownTimeout != defaultShutdownTimeout {
		t.Fatalf("unexpected shutdown timeout %v", opts.ShutdownTimeout)
	}
	if opts.Logger == nil {
		t.Fatalf("logger should default")
	}
}

type stubService struct {
	name    string
	startFn func(ctx context.Context) error
	stopped *[]string
}

func (s *stubService) Name() string { return s.name }

func (s *stubService) Start(ctx context.Context) error { return s.startFn(ctx) }

func (s *stubService) Stop(context.Context) error {
	*s.stopped = append(*s.stopped, s.name)
	return nil
}

func TestRunnerStopsServicesInReverseOrder(t *testing.T) {
	var stopped []string
	blocking := func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}
	failing := func(context.Context) error { return errors.New("boom") }

	runner := NewRunner(
		&stubService{name: "http", startFn: blocking, stopped: &stopped},
		nil,
		&stubService{name: "worker", startFn: failing, stopped: &stopped},
	)
	if len(runner.services) != 2 {
		t.Fatalf("nil services should be dropped, got %d", len(runner.services))
	}
	err := runner.Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "worker: boom" {
		t.Fatalf("want worker: boom, got %v", err)
	}
	if strings.Join(stopped, ",") != "worker,http" {
		t.Fatalf("unexpected stop order %v", stopped)
	}
}

func TestRunnerReturnsNilOnCancel(t *testing.T) {
	var stopped []string
	ctx, cancel := context.WithCancel(context.Background())
	runner := NewRunner(&stubService{
		name: "http",
		startFn: func(ctx context.Context) error {
			cancel()
			<-ctx.Done()
			return nil
		},
		stopped: &stopped,
	})
	if err := runner.Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancel should end cleanly, got %v", err)
	}
}
