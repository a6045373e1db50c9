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

// TemplateRepository implements domain.TemplateRepository using MongoDB
type TemplateRepository struct {
	collection *mongo.Collection
}

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(db *mongo.Database) *TemplateRepository {
	collection := db.Collection("workflow_templates")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "templateId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &TemplateRepository{collection: collection}
}

// Save inserts a new workflow template
func (r *TemplateRepository) Save(ctx context.Context, template *domain.WorkflowTemplate) error {
	if _, err := r.collection.InsertOne(ctx, template); err != nil {
		return fmt.Errorf("failed to insert template: %w", err)
	}
	return nil
}

// FindByID retrieves a template by its business ID
func (r *TemplateRepository) FindByID(ctx context.Context, templateID string) (*domain.WorkflowTemplate, error) {
	var template domain.WorkflowTemplate
	err := r.collection.FindOne(ctx, bson.M{"templateId": templateID}).Decode(&template)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &template, err
}

// FindAllActive retrieves all active templates
func (r *TemplateRepository) FindAllActive(ctx context.Context) ([]*domain.WorkflowTemplate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var templates []*domain.WorkflowTemplate
	err = cursor.All(ctx, &templates)
	return templates, err
}
