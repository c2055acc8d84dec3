package producers

import (
	"time"

	"github.com/tripcrew/backend/internal/config"
	"github.com/tripcrew/backend/internal/domain"
	"github.com/tripcrew/backend/internal/kafka"
)

// Event types published to the trip events topic.
const (
	EventInviteCreated = "trip.invite_created"
)

type inviteCreatedPayload struct {
	TripID    string `json:"trip_id"`
	Token     string `json:"token"`
	CreatedBy string `json:"created_by"`
	ExpiresAt string `json:"expires_at"`
}

// TripEventsProducer announces collaboration events. Invite links are
// emailed out by a downstream consumer.
type TripEventsProducer struct {
	producer kafka.Producer
	topic    string
}

func NewTripEventsProducer(cfg *config.Config) (*TripEventsProducer, error) {
	producer, err := kafka.NewProducer(cfg.Kafka.KafkaURL)
	if err != nil {
		return nil, err
	}
	return &TripEventsProducer{
		producer: producer,
		topic:    cfg.Kafka.TripEventsTopic,
	}, nil
}

func (p *TripEventsProducer) ProduceInviteCreated(invite *domain.InviteLink) (int64, error) {
	return p.producer.ProduceEvent(p.topic, EventInviteCreated, invite.TripID.String(), inviteCreatedPayload{
		TripID:    invite.TripID.String(),
		Token:     invite.Token.String(),
		CreatedBy: invite.CreatedBy.String(),
		ExpiresAt: invite.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (p *TripEventsProducer) Close() {
	p.producer.Close()
}
