package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HenryGill4/OpCentrix-sub007/internal/domain"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/cloudevents"
	outboxMongo "github.com/HenryGill4/OpCentrix-sub007/pkg/outbox/mongodb"
)

// ExecutionRepository implements domain.ExecutionRepository using MongoDB.
// Two partial unique indexes back up the concurrency invariants at the
// storage layer: one in-progress execution per operator, one execution row
// per job stage.
type ExecutionRepository struct {
	collection *mongo.Collection
	events     *eventWriter
}

// NewExecutionRepository creates a new ExecutionRepository
func NewExecutionRepository(db *mongo.Database, factory *cloudevents.EventFactory) *ExecutionRepository {
	collection := db.Collection("stage_executions")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "executionId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys:    bson.D{{Key: "jobId", Value: 1}, {Key: "stageId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "operatorId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": string(domain.ExecutionStatusInProgress)}),
		},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &ExecutionRepository{
		collection: collection,
		events:     newEventWriter(outboxMongo.NewOutboxRepository(db), factory),
	}
}

// Save inserts a new execution and its domain events
func (r *ExecutionRepository) Save(ctx context.Context, execution *domain.StageExecution) error {
	if _, err := r.collection.InsertOne(ctx, execution); err != nil {
		return fmt.Errorf("failed to insert execution: %w", err)
	}
	if err := r.events.write(ctx, execution.ExecutionID, "StageExecution", execution.DomainEvents); err != nil {
		return err
	}
	execution.ClearDomainEvents()
	return nil
}

// Update replaces an existing execution and writes its domain events
func (r *ExecutionRepository) Update(ctx context.Context, execution *domain.StageExecution) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"executionId": execution.ExecutionID}, execution)
	if err != nil {
		return fmt.Errorf("failed to update execution: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("execution %s not found", execution.ExecutionID)
	}
	if err := r.events.write(ctx, execution.ExecutionID, "StageExecution", execution.DomainEvents); err != nil {
		return err
	}
	execution.ClearDomainEvents()
	return nil
}

// FindByID retrieves an execution by its business ID
func (r *ExecutionRepository) FindByID(ctx context.Context, executionID string) (*domain.StageExecution, error) {
	var execution domain.StageExecution
	err := r.collection.FindOne(ctx, bson.M{"executionId": executionID}).Decode(&execution)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &execution, err
}

// FindByJobAndStage retrieves the execution row for a job stage
func (r *ExecutionRepository) FindByJobAndStage(ctx context.Context, jobID, stageID string) (*domain.StageExecution, error) {
	var execution domain.StageExecution
	err := r.collection.FindOne(ctx, bson.M{"jobId": jobID, "stageId": stageID}).Decode(&execution)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &execution, err
}

// FindByJob retrieves all execution rows for a job
func (r *ExecutionRepository) FindByJob(ctx context.Context, jobID string) ([]*domain.StageExecution, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"jobId": jobID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var executions []*domain.StageExecution
	err = cursor.All(ctx, &executions)
	return executions, err
}

// FindInProgressByOperator retrieves the operator's in-progress execution, if
// any
func (r *ExecutionRepository) FindInProgressByOperator(ctx context.Context, operatorID string) (*domain.StageExecution, error) {
	var execution domain.StageExecution
	err := r.collection.FindOne(ctx, bson.M{
		"operatorId": operatorID,
		"status":     string(domain.ExecutionStatusInProgress),
	}).Decode(&execution)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &execution, err
}

// FindInProgressByJobAndStage retrieves the in-progress execution for a job
// stage, if any
func (r *ExecutionRepository) FindInProgressByJobAndStage(ctx context.Context, jobID, stageID string) (*domain.StageExecution, error) {
	var execution domain.StageExecution
	err := r.collection.FindOne(ctx, bson.M{
		"jobId":   jobID,
		"stageId": stageID,
		"status":  string(domain.ExecutionStatusInProgress),
	}).Decode(&execution)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &execution, err
}
