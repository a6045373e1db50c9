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

// DependencyEdgeRepository implements domain.DependencyEdgeRepository using
// MongoDB
type DependencyEdgeRepository struct {
	collection *mongo.Collection
}

// NewDependencyEdgeRepository creates a new DependencyEdgeRepository
func NewDependencyEdgeRepository(db *mongo.Database) *DependencyEdgeRepository {
	collection := db.Collection("stage_dependencies")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "edgeId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "dependentStageId", Value: 1}, {Key: "prerequisiteStageId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"isActive": true}),
		},
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &DependencyEdgeRepository{collection: collection}
}

// Save inserts a new dependency edge. The partial unique index backs up the
// duplicate-edge check for racing inserts.
func (r *DependencyEdgeRepository) Save(ctx context.Context, edge *domain.StageDependencyEdge) error {
	if _, err := r.collection.InsertOne(ctx, edge); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEdge
		}
		return fmt.Errorf("failed to insert dependency edge: %w", err)
	}
	return nil
}

// Update replaces an existing dependency edge
func (r *DependencyEdgeRepository) Update(ctx context.Context, edge *domain.StageDependencyEdge) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"edgeId": edge.EdgeID}, edge)
	if err != nil {
		return fmt.Errorf("failed to update dependency edge: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("dependency edge %s not found", edge.EdgeID)
	}
	return nil
}

// FindByID retrieves an edge by its business ID
func (r *DependencyEdgeRepository) FindByID(ctx context.Context, edgeID string) (*domain.StageDependencyEdge, error) {
	var edge domain.StageDependencyEdge
	err := r.collection.FindOne(ctx, bson.M{"edgeId": edgeID}).Decode(&edge)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &edge, err
}

// FindActiveEdge retrieves the active edge between a dependent and a
// prerequisite stage, if one exists
func (r *DependencyEdgeRepository) FindActiveEdge(ctx context.Context, dependentStageID, prerequisiteStageID string) (*domain.StageDependencyEdge, error) {
	var edge domain.StageDependencyEdge
	err := r.collection.FindOne(ctx, bson.M{
		"dependentStageId":    dependentStageID,
		"prerequisiteStageId": prerequisiteStageID,
		"isActive":            true,
	}).Decode(&edge)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &edge, err
}

// FindAllActive retrieves all active dependency edges
func (r *DependencyEdgeRepository) FindAllActive(ctx context.Context) ([]*domain.StageDependencyEdge, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"isActive": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var edges []*domain.StageDependencyEdge
	err = cursor.All(ctx, &edges)
	return edges, err
}
