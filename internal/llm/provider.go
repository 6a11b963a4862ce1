package llm

import "context"

// Provider 补全提供方适配器。
// Ready为false表示启动时未配置凭据，网关会跳过该提供方。
type Provider interface {
	Name() string
	Ready() bool
	Complete(ctx context.Context, req *CompletionRequest) (*Result, error)
}
