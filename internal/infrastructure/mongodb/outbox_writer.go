package mongodb

import (
	"context"
	"fmt"

	"github.com/HenryGill4/OpCentrix-sub007/internal/domain"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/cloudevents"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/kafka"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/outbox"
	outboxMongo "github.com/HenryGill4/OpCentrix-sub007/pkg/outbox/mongodb"
)

// eventWriter converts domain events into outbox rows. Repositories call it
// with the same context as the aggregate write, so inside a transaction the
// events commit or roll back with the state change.
type eventWriter struct {
	outboxRepo *outboxMongo.OutboxRepository
	factory    *cloudevents.EventFactory
}

func newEventWriter(outboxRepo *outboxMongo.OutboxRepository, factory *cloudevents.EventFactory) *eventWriter {
	return &eventWriter{outboxRepo: outboxRepo, factory: factory}
}

func (w *eventWriter) write(ctx context.Context, aggregateID, aggregateType string, events []domain.DomainEvent) error {
	for _, event := range events {
		cloudEvent, topic := w.toCloudEvent(ctx, event)
		if cloudEvent == nil {
			continue
		}

		outboxEvent, err := outbox.NewOutboxEventFromCloudEvent(aggregateID, aggregateType, topic, cloudEvent)
		if err != nil {
			return fmt.Errorf("failed to create outbox event: %w", err)
		}
		if err := w.outboxRepo.Save(ctx, outboxEvent); err != nil {
			return fmt.Errorf("failed to save outbox event: %w", err)
		}
	}
	return nil
}

func (w *eventWriter) toCloudEvent(ctx context.Context, event domain.DomainEvent) (*cloudevents.ProductionCloudEvent, string) {
	switch e := event.(type) {
	case *domain.StageCreatedEvent:
		return w.factory.CreateEvent(ctx, cloudevents.StageCreated, "stage/"+e.StageID, e), kafka.Topics.StageEvents
	case *domain.StageDeactivatedEvent:
		return w.factory.CreateEvent(ctx, cloudevents.StageDeactivated, "stage/"+e.StageID, e), kafka.Topics.StageEvents
	case *domain.ExecutionStartedEvent:
		return w.factory.CreateJobEvent(ctx, cloudevents.ExecutionStarted, "execution/"+e.ExecutionID, e.JobID, "", e), kafka.Topics.ExecutionEvents
	case *domain.ExecutionCompletedEvent:
		return w.factory.CreateJobEvent(ctx, cloudevents.ExecutionCompleted, "execution/"+e.ExecutionID, e.JobID, "", e), kafka.Topics.ExecutionEvents
	case *domain.ExecutionSkippedEvent:
		return w.factory.CreateJobEvent(ctx, cloudevents.ExecutionSkipped, "execution/"+e.ExecutionID, e.JobID, "", e), kafka.Topics.ExecutionEvents
	case *domain.ExecutionFailedEvent:
		return w.factory.CreateJobEvent(ctx, cloudevents.ExecutionFailed, "execution/"+e.ExecutionID, e.JobID, "", e), kafka.Topics.ExecutionEvents
	case *domain.ExecutionResetEvent:
		return w.factory.CreateJobEvent(ctx, cloudevents.ExecutionReset, "execution/"+e.ExecutionID, e.JobID, "", e), kafka.Topics.ExecutionEvents
	case *domain.ExecutionApprovedEvent:
		return w.factory.CreateJobEvent(ctx, cloudevents.ExecutionApproved, "execution/"+e.ExecutionID, e.JobID, "", e), kafka.Topics.ExecutionEvents
	case *domain.JobScheduledEvent:
		return w.factory.CreateJobEvent(ctx, cloudevents.JobScheduled, "job/"+e.JobID, e.JobID, e.CohortID, e), kafka.Topics.JobEvents
	case *domain.CohortCompletedEvent:
		return w.factory.CreateJobEvent(ctx, cloudevents.CohortCompleted, "cohort/"+e.CohortID, "", e.CohortID, e), kafka.Topics.CohortEvents
	case *domain.DownstreamJobsCreatedEvent:
		return w.factory.CreateJobEvent(ctx, cloudevents.DownstreamJobsCreated, "cohort/"+e.CohortID, "", e.CohortID, e), kafka.Topics.CohortEvents
	default:
		return nil, ""
	}
}
