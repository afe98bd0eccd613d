package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/harentsoaR/medtrack-api/internal/metrics"
)

const defaultNotifyTimeout = 3 * time.Second

// Notifier emits best-effort events. Emit never blocks the caller and never fails.
type Notifier interface {
	Emit(ctx context.Context, subject, message string)
}

// Publisher delivers an encoded event to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// NotificationEvent is the payload published on the notification topic.
type NotificationEvent struct {
	Subject string    `json:"subject"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

type NotificationService struct {
	publisher Publisher
	topic     string
	timeout   time.Duration
	wg        sync.WaitGroup
}

var _ Notifier = (*NotificationService)(nil)

// NewNotificationService publishes to topic through publisher. A nil
// publisher or empty topic logs events locally instead.
func NewNotificationService(publisher Publisher, topic string, timeout time.Duration) *NotificationService {
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	return &NotificationService{publisher: publisher, topic: topic, timeout: timeout}
}

func (s *NotificationService) Emit(ctx context.Context, subject, message string) {
	if s.publisher == nil || s.topic == "" {
		log.Info().Str("subject", subject).Str("message", message).Msg("notification")
		metrics.RecordNotification(metrics.NotificationLogged)
		return
	}

	event := NotificationEvent{Subject: subject, Message: message, SentAt: time.Now().UTC()}
	// the publish outlives the request that triggered it
	base := context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("subject", subject).Msg("notification publish panicked")
				metrics.RecordNotification(metrics.NotificationFailed)
			}
		}()
		s.publish(base, event)
	}()
}

func (s *NotificationService) publish(ctx context.Context, event NotificationEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("subject", event.Subject).Msg("failed to encode notification")
		metrics.RecordNotification(metrics.NotificationFailed)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, s.topic, payload); err != nil {
		log.Warn().Err(err).Str("topic", s.topic).Str("subject", event.Subject).Msg("failed to publish notification")
		metrics.RecordNotification(metrics.NotificationFailed)
		return
	}
	metrics.RecordNotification(metrics.NotificationPublished)
	log.Debug().Str("topic", s.topic).Str("subject", event.Subject).Msg("notification published")
}

// Wait blocks until every in-flight publish has finished.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}
