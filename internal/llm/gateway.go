package llm

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/techpal/backend-go/internal/config"
	"github.com/techpal/backend-go/internal/metrics"
)

// 每个提供方独立熔断，连续5次失败后熔断60秒
const (
	breakerFailureThreshold = 5
	breakerSuccessThreshold = 3
	breakerOpenTimeout      = 60 * time.Second
)

// Gateway 模型提供方网关。
// 负责提供方选择、单次调用超时、熔断和降级。任何一条路径失败
// 最终都会落到预设回复表，GetResponse对调用方永不返回错误，
// 提供方的错误只记日志，不向外透出。
type Gateway struct {
	providers       map[string]Provider
	order           []string
	defaultProvider string
	breakers        map[string]*CircuitBreaker
	fallback        *FallbackTable
	timeout         time.Duration
	logger          *zap.Logger
	metrics         *metrics.Collector

	genMu sync.RWMutex
	gen   GenerationParams
}

// NewGateway 创建网关，未配置API密钥的提供方保留在列表中但不会被调用
func NewGateway(cfg config.AIConfig, log *zap.Logger, collector *metrics.Collector) *Gateway {
	providers := []Provider{
		NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel),
		NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel),
	}

	g := &Gateway{
		providers:       make(map[string]Provider, len(providers)),
		order:           make([]string, 0, len(providers)),
		defaultProvider: cfg.DefaultProvider,
		breakers:        make(map[string]*CircuitBreaker, len(providers)),
		fallback:        NewFallbackTable(),
		timeout:         time.Duration(cfg.RequestTimeoutSec) * time.Second,
		logger:          log,
		metrics:         collector,
		gen: GenerationParams{
			MaxTokens:        cfg.MaxTokens,
			Temperature:      cfg.Temperature,
			PresencePenalty:  cfg.PresencePenalty,
			FrequencyPenalty: cfg.FrequencyPenalty,
		},
	}

	for _, p := range providers {
		g.providers[p.Name()] = p
		g.order = append(g.order, p.Name())
		g.breakers[p.Name()] = NewCircuitBreaker(p.Name(), breakerFailureThreshold, breakerSuccessThreshold, breakerOpenTimeout)
	}

	if _, ok := g.providers[g.defaultProvider]; !ok {
		log.Warn("Unknown default provider, falling back to openai",
			zap.String("configured", g.defaultProvider))
		g.defaultProvider = ProviderOpenAI
	}

	return g
}

// GetResponse 获取模型回复。
// 先尝试首选提供方，失败或未配置时换另一个，全部不可用时
// 按最后一条用户消息查预设回复表。返回值永远非nil。
func (g *Gateway) GetResponse(ctx context.Context, messages []Message, ageBand, preferred string) *Result {
	req := g.buildRequest(messages)

	for _, name := range g.candidates(preferred) {
		p := g.providers[name]
		if !p.Ready() {
			g.logger.Debug("Skipping unconfigured provider", zap.String("provider", name))
			continue
		}

		result, err := g.attempt(ctx, p, req)
		if err != nil {
			g.logger.Warn("Provider call failed",
				zap.String("provider", name),
				zap.Error(err))
			continue
		}

		return result
	}

	g.metrics.RecordFallback()
	g.logger.Info("All providers unavailable, serving fallback response",
		zap.String("age_band", ageBand))

	return &Result{
		Content:    g.fallback.Lookup(lastUserContent(messages), ageBand),
		TokensUsed: 0,
		Provider:   ProviderFallback,
	}
}

// SetGenerationParams 更新生成参数，配置热更新时由回调调用
func (g *Gateway) SetGenerationParams(gen GenerationParams) {
	g.genMu.Lock()
	g.gen = gen
	g.genMu.Unlock()

	g.logger.Info("Generation params updated",
		zap.Int("max_tokens", gen.MaxTokens),
		zap.Float64("temperature", gen.Temperature))
}

// Stats 返回各提供方的配置状态和熔断器状态，供健康检查接口使用
func (g *Gateway) Stats() map[string]interface{} {
	stats := make(map[string]interface{}, len(g.order))
	for _, name := range g.order {
		stats[name] = map[string]interface{}{
			"configured":      g.providers[name].Ready(),
			"circuit_breaker": g.breakers[name].GetStats(),
		}
	}
	return stats
}

// candidates 解析尝试顺序：首选提供方在前，其余按注册顺序排在后面。
// 未知的首选名按配置的默认提供方处理。
func (g *Gateway) candidates(preferred string) []string {
	if _, ok := g.providers[preferred]; !ok {
		preferred = g.defaultProvider
	}

	out := make([]string, 0, len(g.order))
	out = append(out, preferred)
	for _, name := range g.order {
		if name != preferred {
			out = append(out, name)
		}
	}
	return out
}

func (g *Gateway) attempt(ctx context.Context, p Provider, req *CompletionRequest) (*Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	var result *Result
	err := g.breakers[p.Name()].Call(func() error {
		r, err := p.Complete(attemptCtx, req)
		if err != nil {
			return err
		}
		result = r
		return nil
	})

	if err != nil {
		status := "error"
		if errors.Is(err, ErrCircuitOpen) {
			status = "circuit_open"
		}
		g.metrics.RecordProviderRequest(p.Name(), status, time.Since(start))
		return nil, err
	}

	g.metrics.RecordProviderRequest(p.Name(), "success", time.Since(start))
	g.metrics.RecordTokens(p.Name(), result.TokensUsed)
	return result, nil
}

func (g *Gateway) buildRequest(messages []Message) *CompletionRequest {
	g.genMu.RLock()
	gen := g.gen
	g.genMu.RUnlock()

	return &CompletionRequest{
		Messages:         messages,
		MaxTokens:        gen.MaxTokens,
		Temperature:      gen.Temperature,
		PresencePenalty:  gen.PresencePenalty,
		FrequencyPenalty: gen.FrequencyPenalty,
	}
}

func lastUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
