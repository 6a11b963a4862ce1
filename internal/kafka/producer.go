package kafka

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/techpal/backend-go/internal/config"
)

// UsageEvent 每轮对话产生一条用量事件，供离线分析消费。
// 事件里只带会话令牌的哈希，原始令牌不进事件流。
type UsageEvent struct {
	SessionHash    string    `json:"session_hash"`
	ConversationID uint      `json:"conversation_id"`
	MessageID      uint      `json:"message_id"`
	AgeBand        string    `json:"age_band"`
	Provider       string    `json:"provider"`
	TokensUsed     int       `json:"tokens_used"`
	Timestamp      time.Time `json:"timestamp"`
}

// Producer 用量事件生产者。
// Kafka未启用时producer为nil，Publish退化为空操作，主流程不受影响。
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

// NewProducer 创建生产者，未启用或没有broker时返回禁用的实例
func NewProducer(cfg config.KafkaConfig, log *zap.Logger) (*Producer, error) {
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info("Kafka disabled, usage events will not be published")
		return &Producer{topic: cfg.Topic, logger: log}, nil
	}

	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 5
	saramaCfg.Producer.Timeout = 10 * time.Second

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Info("Kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic))

	return &Producer{
		producer: producer,
		topic:    cfg.Topic,
		logger:   log,
	}, nil
}

// Enabled 生产者是否可用
func (p *Producer) Enabled() bool {
	return p != nil && p.producer != nil
}

// Publish 发送一条用量事件，Kafka未启用时静默跳过
func (p *Producer) Publish(event *UsageEvent) error {
	if !p.Enabled() {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal usage event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		// 同一会话的事件落在同一分区，保持会话内有序
		Key:   sarama.StringEncoder(fmt.Sprintf("%d", event.ConversationID)),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("provider"),
				Value: []byte(event.Provider),
			},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to publish usage event: %w", err)
	}

	p.logger.Debug("Usage event published",
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
		zap.Uint("conversation_id", event.ConversationID))

	return nil
}

// Close 关闭生产者
func (p *Producer) Close() error {
	if p != nil && p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// HashSession 计算会话令牌的短哈希，用量事件用它代替原始令牌
func HashSession(sessionID string) string {
	sum := sha256.Sum256([]byte(sessionID))
	return hex.EncodeToString(sum[:8])
}
