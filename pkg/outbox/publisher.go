package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/HenryGill4/OpCentrix-sub007/pkg/kafka"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/logging"
)

// Publisher drains the outbox to Kafka in the background. Workflow
// transitions never publish directly; they only write outbox rows inside
// their own transaction.
type Publisher struct {
	repo      Repository
	producer  *kafka.CircuitBreakerProducer
	logger    *logging.Logger
	interval  time.Duration
	batchSize int

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// PublisherConfig holds configuration for the outbox publisher
type PublisherConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// DefaultPublisherConfig returns default configuration
func DefaultPublisherConfig() *PublisherConfig {
	return &PublisherConfig{
		PollInterval: 1 * time.Second,
		BatchSize:    100,
	}
}

// NewPublisher creates a new outbox publisher
func NewPublisher(repo Repository, producer *kafka.CircuitBreakerProducer, logger *logging.Logger, config *PublisherConfig) *Publisher {
	if config == nil {
		config = DefaultPublisherConfig()
	}

	return &Publisher{
		repo:      repo,
		producer:  producer,
		logger:    logger,
		interval:  config.PollInterval,
		batchSize: config.BatchSize,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Start starts the outbox publisher loop
func (p *Publisher) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("publisher already running")
	}
	p.running = true
	p.mu.Unlock()

	p.logger.Info("Starting outbox publisher", "interval", p.interval, "batchSize", p.batchSize)

	go p.run(ctx)
	return nil
}

// Stop stops the outbox publisher
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return fmt.Errorf("publisher not running")
	}
	p.mu.Unlock()

	close(p.stopCh)
	<-p.stoppedCh

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	p.logger.Info("Outbox publisher stopped")
	return nil
}

func (p *Publisher) run(ctx context.Context) {
	defer close(p.stoppedCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.processEvents(ctx)
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (p *Publisher) processEvents(ctx context.Context) {
	events, err := p.repo.FindUnpublished(ctx, p.batchSize)
	if err != nil {
		p.logger.WithError(err).Error("Failed to fetch unpublished outbox events")
		return
	}

	for _, event := range events {
		if !event.ShouldRetry() {
			continue
		}

		if err := p.publishOne(ctx, event); err != nil {
			p.logger.WithError(err).Warn("Failed to publish outbox event",
				"eventId", event.ID, "eventType", event.EventType, "retryCount", event.RetryCount)

			if retryErr := p.repo.IncrementRetry(ctx, event.ID, err.Error()); retryErr != nil {
				p.logger.WithError(retryErr).Error("Failed to record outbox retry", "eventId", event.ID)
			}
			continue
		}

		if err := p.repo.MarkPublished(ctx, event.ID); err != nil {
			// The event will be re-delivered; consumers must tolerate duplicates.
			p.logger.WithError(err).Error("Failed to mark outbox event published", "eventId", event.ID)
		}
	}
}

func (p *Publisher) publishOne(ctx context.Context, event *OutboxEvent) error {
	cloudEvent, err := event.ToCloudEvent()
	if err != nil {
		return fmt.Errorf("failed to decode outbox payload: %w", err)
	}
	return p.producer.PublishEvent(ctx, event.Topic, cloudEvent)
}
