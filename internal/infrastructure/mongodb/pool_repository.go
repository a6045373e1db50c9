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

// ResourcePoolRepository implements domain.ResourcePoolRepository using
// MongoDB
type ResourcePoolRepository struct {
	collection *mongo.Collection
}

// NewResourcePoolRepository creates a new ResourcePoolRepository
func NewResourcePoolRepository(db *mongo.Database) *ResourcePoolRepository {
	collection := db.Collection("resource_pools")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "poolId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "scope", Value: 1}, {Key: "targetId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"isActive": true}),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &ResourcePoolRepository{collection: collection}
}

// Save inserts a new resource pool
func (r *ResourcePoolRepository) Save(ctx context.Context, pool *domain.ResourcePool) error {
	if _, err := r.collection.InsertOne(ctx, pool); err != nil {
		return fmt.Errorf("failed to insert resource pool: %w", err)
	}
	return nil
}

// Update replaces an existing resource pool
func (r *ResourcePoolRepository) Update(ctx context.Context, pool *domain.ResourcePool) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"poolId": pool.PoolID}, pool)
	if err != nil {
		return fmt.Errorf("failed to update resource pool: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("resource pool %s not found", pool.PoolID)
	}
	return nil
}

// FindByID retrieves a pool by its business ID
func (r *ResourcePoolRepository) FindByID(ctx context.Context, poolID string) (*domain.ResourcePool, error) {
	var pool domain.ResourcePool
	err := r.collection.FindOne(ctx, bson.M{"poolId": poolID}).Decode(&pool)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &pool, err
}

// FindActiveByTarget retrieves the active pool covering a target, if any
func (r *ResourcePoolRepository) FindActiveByTarget(ctx context.Context, scope domain.PoolScope, targetID string) (*domain.ResourcePool, error) {
	var pool domain.ResourcePool
	err := r.collection.FindOne(ctx, bson.M{
		"scope":    string(scope),
		"targetId": targetID,
		"isActive": true,
	}).Decode(&pool)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &pool, err
}

// FindAllActive retrieves all active pools
func (r *ResourcePoolRepository) FindAllActive(ctx context.Context) ([]*domain.ResourcePool, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"isActive": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var pools []*domain.ResourcePool
	err = cursor.All(ctx, &pools)
	return pools, err
}
