package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector 业务指标收集器。
// 指标注册到默认registry，进程内只能创建一次；nil收集器上的
// 所有记录方法都是空操作，测试可以直接传nil。
type Collector struct {
	chatRequests     *prometheus.CounterVec
	chatDuration     *prometheus.HistogramVec
	rejectedTotal    *prometheus.CounterVec
	providerRequests *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	tokensUsed       *prometheus.CounterVec
	fallbackTotal    prometheus.Counter
}

// NewCollector 创建并注册指标收集器
func NewCollector() *Collector {
	return &Collector{
		chatRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_requests_total",
				Help: "Total number of chat requests by outcome",
			},
			[]string{"status"},
		),
		chatDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chat_request_duration_seconds",
				Help:    "Duration of chat requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		rejectedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_messages_rejected_total",
				Help: "Total number of messages rejected by the safety validator",
			},
			[]string{"reason"},
		),
		providerRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_provider_requests_total",
				Help: "Total number of completion attempts per provider",
			},
			[]string{"provider", "status"},
		),
		providerDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_provider_request_duration_seconds",
				Help:    "Duration of provider completion attempts",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		tokensUsed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_tokens_used_total",
				Help: "Total provider-reported token usage",
			},
			[]string{"provider"},
		),
		fallbackTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "llm_fallback_responses_total",
				Help: "Total number of canned fallback responses served",
			},
		),
	}
}

// RecordChatRequest 记录一次聊天请求及其结果
func (c *Collector) RecordChatRequest(status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.chatRequests.WithLabelValues(status).Inc()
	c.chatDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordRejection 记录一次安全校验拒绝
func (c *Collector) RecordRejection(reason string) {
	if c == nil {
		return
	}
	c.rejectedTotal.WithLabelValues(reason).Inc()
}

// RecordProviderRequest 记录一次提供方调用
func (c *Collector) RecordProviderRequest(provider, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.providerRequests.WithLabelValues(provider, status).Inc()
	c.providerDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordTokens 记录提供方上报的token用量
func (c *Collector) RecordTokens(provider string, tokens int) {
	if c == nil || tokens <= 0 {
		return
	}
	c.tokensUsed.WithLabelValues(provider).Add(float64(tokens))
}

// RecordFallback 记录一次降级回复
func (c *Collector) RecordFallback() {
	if c == nil {
		return
	}
	c.fallbackTotal.Inc()
}
