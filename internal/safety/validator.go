package safety

import (
	"strings"
	"unicode/utf8"
)

// 拒绝原因，会原样透传给调用方
const (
	ReasonEmpty        = "empty"
	ReasonTooLong      = "too long"
	ReasonUnsafe       = "unsafe content"
	ReasonPersonalInfo = "personal information"
)

// maxMessageLength 单条消息最大长度（按字符计）
const maxMessageLength = 1000

// unsafeTerms 不安全内容词表，覆盖暴力、自残、违禁品、成人内容。
// 词法过滤只做子串匹配，不做语义判断，漏判由提供方侧的系统提示词兜底。
var unsafeTerms = []string{
	"kill",
	"death",
	"suicide",
	"drugs",
	"alcohol",
	"sex",
	"porn",
	"hate",
	"racist",
	"terrorist",
	"bomb",
	"gun",
	"weapon",
}

// personalInfoTerms 个人信息词表，儿童不应在对话中提供这些内容
var personalInfoTerms = []string{
	"password",
	"address",
	"phone number",
	"full name",
	"credit card",
}

// Result 校验结果
type Result struct {
	Accepted bool
	Reason   string
}

// Validator 消息安全校验器，在任何持久化和模型调用之前执行
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate 按固定顺序执行校验规则，第一条命中的规则决定结果
func (v *Validator) Validate(message string) Result {
	if strings.TrimSpace(message) == "" {
		return Result{Reason: ReasonEmpty}
	}

	if utf8.RuneCountInString(message) > maxMessageLength {
		return Result{Reason: ReasonTooLong}
	}

	lower := strings.ToLower(message)

	for _, term := range unsafeTerms {
		if strings.Contains(lower, term) {
			return Result{Reason: ReasonUnsafe}
		}
	}

	for _, term := range personalInfoTerms {
		if strings.Contains(lower, term) {
			return Result{Reason: ReasonPersonalInfo}
		}
	}

	return Result{Accepted: true}
}
