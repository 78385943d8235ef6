package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gameon/pkg/logger"

	"github.com/IBM/sarama"
)

// Consumer drains the notification topic and hands each message to a
// delivery function. The default delivery just logs; push and email
// transports plug in behind Deliverer.
type Consumer interface {
	Start(ctx context.Context) error
	Stop() error
}

// Deliverer delivers one decoded notification to the recipient.
type Deliverer func(ctx context.Context, n *Notification) error

type ConsumerConfig struct {
	Brokers          []string
	GroupID          string
	Topics           []string
	SessionTimeoutMs int
	HeartbeatMs      int
	OffsetOldest     bool
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:          []string{"localhost:9092"},
		GroupID:          "gameon-notification-workers",
		Topics:           []string{"membership-notifications"},
		SessionTimeoutMs: 30000,
		HeartbeatMs:      3000,
		OffsetOldest:     false,
	}
}

type kafkaConsumer struct {
	group   sarama.ConsumerGroup
	config  *ConsumerConfig
	deliver Deliverer
	log     *logger.Logger
	cancel  context.CancelFunc
}

func NewKafkaConsumer(config *ConsumerConfig, deliver Deliverer) (Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second
	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	log := logger.GetDefault()
	if deliver == nil {
		deliver = logDeliverer(log)
	}

	return &kafkaConsumer{
		group:   group,
		config:  config,
		deliver: deliver,
		log:     log,
	}, nil
}

func (c *kafkaConsumer) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	go func() {
		for err := range c.group.Errors() {
			c.log.Error("consumer group error", "error", err)
		}
	}()

	go func() {
		handler := &groupHandler{deliver: c.deliver, log: c.log}
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if err := c.group.Consume(ctx, c.config.Topics, handler); err != nil {
					c.log.Error("error consuming notifications", "error", err)
					time.Sleep(time.Second)
				}
			}
		}
	}()

	c.log.Info("notification consumer started", "topics", c.config.Topics, "group", c.config.GroupID)
	return nil
}

func (c *kafkaConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	if err := c.group.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type groupHandler struct {
	deliver Deliverer
	log     *logger.Logger
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			if err := h.processMessage(session.Context(), message); err != nil {
				h.log.Error("failed to process notification", "error", err,
					"topic", message.Topic, "partition", message.Partition, "offset", message.Offset)
			}
			// Bad messages are committed too: this topic is best-effort and
			// an unparseable payload will not improve with redelivery.
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *groupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var notification Notification
	if err := json.Unmarshal(message.Value, &notification); err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}
	return h.deliver(ctx, &notification)
}

// logDeliverer is the built-in delivery: structured log lines standing in for
// a push/email transport.
func logDeliverer(log *logger.Logger) Deliverer {
	return func(ctx context.Context, n *Notification) error {
		log.InfoWithContext(ctx, "notification delivered", map[string]interface{}{
			"notification_id": n.ID.String(),
			"type":            string(n.Type),
			"recipient_id":    n.RecipientID.String(),
			"event_id":        n.EventID.String(),
			"message":         n.Message,
		})
		return nil
	}
}
