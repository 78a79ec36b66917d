package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// LeadNotificationPayload is what the webhook dispatcher hands to the
// notification worker once a makler notification lands on a lead.
type LeadNotificationPayload struct {
	LeadID     string    `json:"lead_id"`
	LeadName   string    `json:"lead_name"`
	UserID     string    `json:"user_id"`
	Action     string    `json:"action"`
	NotifiedAt time.Time `json:"notified_at"`
}

type QueueProducerInterface interface {
	PublishLeadNotification(ctx context.Context, payload LeadNotificationPayload) error
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *RabbitMQProducer) PublishLeadNotification(ctx context.Context, payload LeadNotificationPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // survives broker restarts
		},
	)

	if err != nil {
		return fmt.Errorf("publish to RabbitMQ: %w", err)
	}

	return nil
}
