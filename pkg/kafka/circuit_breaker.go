package kafka

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/HenryGill4/OpCentrix-sub007/pkg/cloudevents"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/logging"
)

// CircuitBreakerProducer wraps Producer with circuit breaker protection so a
// broker outage degrades to fast failures instead of piling up blocked
// publishes.
type CircuitBreakerProducer struct {
	producer *Producer
	breaker  *gobreaker.CircuitBreaker
	logger   *logging.Logger
}

// NewCircuitBreakerProducer creates a circuit breaker protected Kafka producer
func NewCircuitBreakerProducer(producer *Producer, logger *logging.Logger) *CircuitBreakerProducer {
	settings := gobreaker.Settings{
		Name:        "kafka-producer",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Kafka circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &CircuitBreakerProducer{
		producer: producer,
		breaker:  gobreaker.NewCircuitBreaker(settings),
		logger:   logger,
	}
}

// PublishEvent publishes a CloudEvent with circuit breaker protection
func (p *CircuitBreakerProducer) PublishEvent(ctx context.Context, topic string, event *cloudevents.ProductionCloudEvent) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.producer.PublishEvent(ctx, topic, event)
	})
	return err
}

// PublishRaw publishes a raw payload with circuit breaker protection
func (p *CircuitBreakerProducer) PublishRaw(ctx context.Context, topic string, key string, payload []byte) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.producer.PublishRaw(ctx, topic, key, payload)
	})
	return err
}

// Close closes the underlying producer
func (p *CircuitBreakerProducer) Close() error {
	return p.producer.Close()
}
