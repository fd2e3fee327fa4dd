package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/domain/model"

	"github.com/segmentio/kafka-go"
)

const eventTypeStockNotification = "stock_notification"

// kafka.Writer の必要な部分だけ（テストで差し替える）
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// 送信するJSON
type stockNotificationEvent struct {
	ID        int64     `json:"id"`
	TenantID  int64     `json:"tenant_id"`
	ProductID int64     `json:"product_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// KafkaPublisher は在庫通知を1件ずつトピックへ書く。
// キーはテナント+商品なので、同じ商品の通知は同じパーティションに順番に載る。
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, n model.StockNotification) error {
	payload, err := json.Marshal(stockNotificationEvent{
		ID:        n.ID,
		TenantID:  n.TenantID,
		ProductID: n.ProductID,
		Kind:      string(n.Kind),
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal notification %d: %w", n.ID, err)
	}

	msg := kafka.Message{
		Key:   []byte(messageKey(n)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventTypeStockNotification)},
			{Key: "kind", Value: []byte(n.Kind)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write notification %d: %w", n.ID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func messageKey(n model.StockNotification) string {
	return fmt.Sprintf("%d:%d", n.TenantID, n.ProductID)
}
