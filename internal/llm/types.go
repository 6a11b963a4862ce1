package llm

// 提供方名称，会写入消息记录的llm_provider字段
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderFallback  = "fallback"
)

// Role 消息角色
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message 与提供方无关的对话消息
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest 两个提供方共享的补全请求。
// Messages含系统指令条目，各提供方适配器负责翻译成自家的线上格式，
// 不支持的生成参数由适配器丢弃。
type CompletionRequest struct {
	Messages         []Message
	MaxTokens        int
	Temperature      float64
	PresencePenalty  float64
	FrequencyPenalty float64
}

// Result 补全结果。
// TokensUsed为提供方上报的用量，降级回复恒为0。
type Result struct {
	Content    string
	TokensUsed int
	Provider   string
}

// GenerationParams 生成参数，支持配置热更新
type GenerationParams struct {
	MaxTokens        int
	Temperature      float64
	PresencePenalty  float64
	FrequencyPenalty float64
}
