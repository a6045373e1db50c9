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

// StageRepository implements domain.StageRepository using MongoDB. Domain
// events are written to the outbox in the caller's context, so wrapping the
// call in a transaction makes state change and event atomic.
type StageRepository struct {
	collection *mongo.Collection
	events     *eventWriter
}

// NewStageRepository creates a new StageRepository
func NewStageRepository(db *mongo.Database, factory *cloudevents.EventFactory) *StageRepository {
	collection := db.Collection("stages")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "stageId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "displayOrder", Value: 1}}},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &StageRepository{
		collection: collection,
		events:     newEventWriter(outboxMongo.NewOutboxRepository(db), factory),
	}
}

// Save inserts a new stage and its domain events
func (r *StageRepository) Save(ctx context.Context, stage *domain.Stage) error {
	if _, err := r.collection.InsertOne(ctx, stage); err != nil {
		return fmt.Errorf("failed to insert stage: %w", err)
	}
	if err := r.events.write(ctx, stage.StageID, "Stage", stage.DomainEvents); err != nil {
		return err
	}
	stage.ClearDomainEvents()
	return nil
}

// Update replaces an existing stage and writes its domain events
func (r *StageRepository) Update(ctx context.Context, stage *domain.Stage) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"stageId": stage.StageID}, stage)
	if err != nil {
		return fmt.Errorf("failed to update stage: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("stage %s not found", stage.StageID)
	}
	if err := r.events.write(ctx, stage.StageID, "Stage", stage.DomainEvents); err != nil {
		return err
	}
	stage.ClearDomainEvents()
	return nil
}

// FindByID retrieves a stage by its business ID, returning nil when absent
func (r *StageRepository) FindByID(ctx context.Context, stageID string) (*domain.Stage, error) {
	var stage domain.Stage
	err := r.collection.FindOne(ctx, bson.M{"stageId": stageID}).Decode(&stage)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &stage, err
}

// FindByName retrieves an active stage by name
func (r *StageRepository) FindByName(ctx context.Context, name string) (*domain.Stage, error) {
	var stage domain.Stage
	err := r.collection.FindOne(ctx, bson.M{"name": name, "isActive": true}).Decode(&stage)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &stage, err
}

// FindAllActive retrieves active stages in display order
func (r *StageRepository) FindAllActive(ctx context.Context) ([]*domain.Stage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "displayOrder", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var stages []*domain.Stage
	err = cursor.All(ctx, &stages)
	return stages, err
}

// FindByIDs retrieves stages by business IDs, active or not
func (r *StageRepository) FindByIDs(ctx context.Context, stageIDs []string) ([]*domain.Stage, error) {
	if len(stageIDs) == 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"stageId": bson.M{"$in": stageIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var stages []*domain.Stage
	err = cursor.All(ctx, &stages)
	return stages, err
}
