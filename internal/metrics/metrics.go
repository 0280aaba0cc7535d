package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace 指标前缀
const Namespace = "shop"

// HTTPMetrics HTTP 请求指标
type HTTPMetrics struct {
	ReqTotal *prometheus.CounterVec
	ReqDur   *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewHTTPMetrics 创建并注册 HTTP 指标，reg 为空时使用默认注册器
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &HTTPMetrics{
		ReqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the server.",
		}, []string{"method", "route", "status"}),
		ReqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency distribution in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"method", "route"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "http_in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
	}
	m.ReqTotal = register(reg, m.ReqTotal)
	m.ReqDur = register(reg, m.ReqDur)
	m.InFlight = register(reg, m.InFlight)
	return m
}

// ShopMetrics 购物车与优惠相关指标
// 方法均可在 nil 接收者上调用
type ShopMetrics struct {
	DiscountApply    *prometheus.CounterVec
	DiscountRemove   *prometheus.CounterVec
	CartMutation     *prometheus.CounterVec
	AutomaticRefresh *prometheus.CounterVec
	CodesGenerated   prometheus.Counter
}

// NewShopMetrics 创建并注册业务指标
func NewShopMetrics(reg prometheus.Registerer) *ShopMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &ShopMetrics{
		DiscountApply: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "discount_apply_total",
			Help:      "Discount applications by discount type, application domain and result.",
		}, []string{"type", "domain", "result"}),
		DiscountRemove: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "discount_remove_total",
			Help:      "Discount removals by result.",
		}, []string{"result"}),
		CartMutation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cart_mutation_total",
			Help:      "Cart mutations by operation and result.",
		}, []string{"operation", "result"}),
		AutomaticRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "automatic_discount_refresh_total",
			Help:      "Refreshes of the automatic discount cache by result.",
		}, []string{"result"}),
		CodesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "individual_codes_generated_total",
			Help:      "Number of generated individual discount codes.",
		}),
	}
	m.DiscountApply = register(reg, m.DiscountApply)
	m.DiscountRemove = register(reg, m.DiscountRemove)
	m.CartMutation = register(reg, m.CartMutation)
	m.AutomaticRefresh = register(reg, m.AutomaticRefresh)
	m.CodesGenerated = register(reg, m.CodesGenerated)
	return m
}

// ObserveDiscountApply 记录优惠应用结果
func (m *ShopMetrics) ObserveDiscountApply(discountType, domain string, err error) {
	if m == nil {
		return
	}
	m.DiscountApply.WithLabelValues(discountType, domain, result(err)).Inc()
}

// ObserveDiscountRemove 记录优惠移除结果
func (m *ShopMetrics) ObserveDiscountRemove(err error) {
	if m == nil {
		return
	}
	m.DiscountRemove.WithLabelValues(result(err)).Inc()
}

// ObserveCartMutation 记录购物车变更
func (m *ShopMetrics) ObserveCartMutation(operation string, err error) {
	if m == nil {
		return
	}
	m.CartMutation.WithLabelValues(operation, result(err)).Inc()
}

// ObserveAutomaticRefresh 记录自动优惠缓存刷新
func (m *ShopMetrics) ObserveAutomaticRefresh(err error) {
	if m == nil {
		return
	}
	m.AutomaticRefresh.WithLabelValues(result(err)).Inc()
}

// AddCodesGenerated 累加生成的优惠码数量
func (m *ShopMetrics) AddCodesGenerated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CodesGenerated.Add(float64(n))
}

// DurationMillis 转换为毫秒
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// register 注册采集器，已注册时复用现有实例
func register[T prometheus.Collector](reg prometheus.Registerer, collector T) T {
	if err := reg.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return collector
}
