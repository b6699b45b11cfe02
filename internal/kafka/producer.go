package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"ms-cinema/internal/models"
)

// Producer streams ticket events to Kafka. Publishing is best-effort from the
// caller's point of view: reservation and lifecycle outcomes never depend on
// a broker round-trip.
type Producer struct {
	Writer *kafka.Writer
	Topics TopicSet
}

type TopicSet struct {
	TicketReserved string
	TicketStatus   string
	SweepCompleted string
}

func NewProducer(brokers []string, topics TopicSet) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer, Topics: topics}
}

type ticketStatusEvent struct {
	TicketNumber string              `json:"ticket_number"`
	Status       models.TicketStatus `json:"status"`
	OccurredAt   time.Time           `json:"occurred_at"`
}

type sweepEvent struct {
	TicketsTouched int       `json:"tickets_touched"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// PublishTicketReserved streams the full ticket view after a successful
// reservation.
func (p *Producer) PublishTicketReserved(view models.TicketView) error {
	value, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return p.publish(p.Topics.TicketReserved, view.TicketID, value)
}

// PublishTicketStatusChanged streams a lifecycle transition.
func (p *Producer) PublishTicketStatusChanged(ticketNumber string, status models.TicketStatus) error {
	value, err := json.Marshal(ticketStatusEvent{
		TicketNumber: ticketNumber,
		Status:       status,
		OccurredAt:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return p.publish(p.Topics.TicketStatus, ticketNumber, value)
}

// PublishSweepCompleted streams the outcome of one sweep pass.
func (p *Producer) PublishSweepCompleted(count int) error {
	value, err := json.Marshal(sweepEvent{
		TicketsTouched: count,
		OccurredAt:     time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return p.publish(p.Topics.SweepCompleted, "sweep", value)
}

func (p *Producer) publish(topic, key string, value []byte) error {
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
