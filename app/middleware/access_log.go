package middleware

import (
	"strings"
	"time"

	"github.com/beego/beego/v2/server/web/context"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/techpal/backend-go/internal/logger"
)

const (
	requestIDHeader = "X-Request-Id"

	requestIDKey = "request_id"
	startTimeKey = "request_start"
)

// RequestID 为每个请求分配请求ID，调用方已带ID时透传
func RequestID(ctx *context.Context) {
	requestID := ctx.Input.Header(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	ctx.Input.SetData(requestIDKey, requestID)
	ctx.Input.SetData(startTimeKey, time.Now())
	ctx.Output.Header(requestIDHeader, requestID)
}

// AccessLog 请求完成后输出访问日志，需要注册在FinishRouter阶段
func AccessLog(ctx *context.Context) {
	start, ok := ctx.Input.GetData(startTimeKey).(time.Time)
	if !ok {
		return
	}
	requestID, _ := ctx.Input.GetData(requestIDKey).(string)

	logger.Info("HTTP request",
		zap.String("request_id", requestID),
		zap.String("method", ctx.Input.Method()),
		zap.String("path", ctx.Input.URL()),
		zap.Int("status", ctx.ResponseWriter.Status),
		zap.Duration("duration", time.Since(start)),
		zap.String("ip", clientIP(ctx)))
}

// clientIP 取客户端真实IP，优先代理透传的头
func clientIP(ctx *context.Context) string {
	if forwarded := ctx.Input.Header("X-Forwarded-For"); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx > 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}

	if realIP := ctx.Input.Header("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}

	return ctx.Input.IP()
}
