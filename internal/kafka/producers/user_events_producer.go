package producers

import (
	"github.com/tripcrew/backend/internal/config"
	"github.com/tripcrew/backend/internal/domain"
	"github.com/tripcrew/backend/internal/kafka"
)

// Event types published to the user events topic.
const (
	EventUserRegistered = "user.registered"
)

type userRegisteredPayload struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// UserEventsProducer announces account lifecycle events, currently only
// first-login registration. The mail service picks these up to send the
// welcome email.
type UserEventsProducer struct {
	producer kafka.Producer
	topic    string
}

func NewUserEventsProducer(cfg *config.Config) (*UserEventsProducer, error) {
	producer, err := kafka.NewProducer(cfg.Kafka.KafkaURL)
	if err != nil {
		return nil, err
	}
	return &UserEventsProducer{
		producer: producer,
		topic:    cfg.Kafka.UserEventsTopic,
	}, nil
}

func (p *UserEventsProducer) ProduceUserRegistered(user *domain.User) (int64, error) {
	return p.producer.ProduceEvent(p.topic, EventUserRegistered, user.ID.String(), userRegisteredPayload{
		UserID:    user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	})
}

func (p *UserEventsProducer) Close() {
	p.producer.Close()
}
