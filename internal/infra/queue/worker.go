package queue

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// NotificationSender is the downstream of the fan-out, normally the
// SMTP sender addressing the backoffice.
type NotificationSender interface {
	SendMaklerNotification(payload LeadNotificationPayload) error
}

type Worker struct {
	Channel *amqp.Channel
	Mailer  NotificationSender
}

func NewWorker(ch *amqp.Channel, mailer NotificationSender) *Worker {
	return &Worker{
		Channel: ch,
		Mailer:  mailer,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack off, we ack by hand
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("❌ Failed to register RabbitMQ consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			log.Printf("📥 [WORKER] Notification message received")

			var payload LeadNotificationPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [WORKER] Invalid JSON: %s", err)
				// Malformed message. Reject without requeue so it goes to the DLQ.
				d.Nack(false, false)
				continue
			}

			if err := w.processMessage(payload); err != nil {
				log.Printf("❌ [WORKER] Notification failed for lead %s: %s", payload.LeadID, err)
				d.Nack(false, false)
			} else {
				log.Printf("✅ [WORKER] Notification handled for lead %s (%s)", payload.LeadID, payload.LeadName)
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] Worker running, waiting on queue '%s'", queueName)
	<-forever
}

func (w *Worker) processMessage(payload LeadNotificationPayload) error {
	if w.Mailer == nil {
		log.Printf("📭 [WORKER] Mail not configured, dropping notification for lead %s", payload.LeadID)
		return nil
	}
	return w.Mailer.SendMaklerNotification(payload)
}
