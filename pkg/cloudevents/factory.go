package cloudevents

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventFactory creates CloudEvents for production workflow domain events
type EventFactory struct {
	source string
}

// NewEventFactory creates a new EventFactory for a specific source
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source}
}

// CreateEvent creates a new ProductionCloudEvent with the given parameters
func (f *EventFactory) CreateEvent(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
) *ProductionCloudEvent {
	return &ProductionCloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            data,
	}
}

// CreateJobEvent creates an event carrying the job extension attributes
func (f *EventFactory) CreateJobEvent(
	ctx context.Context,
	eventType string,
	subject string,
	jobID string,
	cohortID string,
	data interface{},
) *ProductionCloudEvent {
	event := f.CreateEvent(ctx, eventType, subject, data)
	event.JobID = jobID
	event.CohortID = cohortID
	return event
}
