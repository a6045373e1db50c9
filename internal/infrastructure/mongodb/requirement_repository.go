package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HenryGill4/OpCentrix-sub007/internal/domain"
)

// RequirementRepository implements domain.RequirementRepository using MongoDB
type RequirementRepository struct {
	collection *mongo.Collection
}

// NewRequirementRepository creates a new RequirementRepository
func NewRequirementRepository(db *mongo.Database) *RequirementRepository {
	collection := db.Collection("part_stage_requirements")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "requirementId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "partId", Value: 1}, {Key: "isActive", Value: 1}}},
		{Keys: bson.D{{Key: "stageId", Value: 1}}},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &RequirementRepository{collection: collection}
}

// Save inserts a new requirement row
func (r *RequirementRepository) Save(ctx context.Context, requirement *domain.PartStageRequirement) error {
	if _, err := r.collection.InsertOne(ctx, requirement); err != nil {
		return fmt.Errorf("failed to insert requirement: %w", err)
	}
	return nil
}

// Update replaces an existing requirement row
func (r *RequirementRepository) Update(ctx context.Context, requirement *domain.PartStageRequirement) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"requirementId": requirement.RequirementID}, requirement)
	if err != nil {
		return fmt.Errorf("failed to update requirement: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("requirement %s not found", requirement.RequirementID)
	}
	return nil
}

// FindByID retrieves a requirement row by its business ID
func (r *RequirementRepository) FindByID(ctx context.Context, requirementID string) (*domain.PartStageRequirement, error) {
	var requirement domain.PartStageRequirement
	err := r.collection.FindOne(ctx, bson.M{"requirementId": requirementID}).Decode(&requirement)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &requirement, err
}

// FindActiveByPart retrieves the active requirement rows for a part in
// execution order
func (r *RequirementRepository) FindActiveByPart(ctx context.Context, partID string) ([]*domain.PartStageRequirement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "executionOrder", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"partId": partID, "isActive": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var requirements []*domain.PartStageRequirement
	err = cursor.All(ctx, &requirements)
	return requirements, err
}
