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

// CohortRepository implements domain.CohortRepository using MongoDB
type CohortRepository struct {
	collection *mongo.Collection
	events     *eventWriter
}

// NewCohortRepository creates a new CohortRepository
func NewCohortRepository(db *mongo.Database, factory *cloudevents.EventFactory) *CohortRepository {
	collection := db.Collection("build_cohorts")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "cohortId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "isActive", Value: 1}}},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &CohortRepository{
		collection: collection,
		events:     newEventWriter(outboxMongo.NewOutboxRepository(db), factory),
	}
}

// Save inserts a new cohort and its domain events
func (r *CohortRepository) Save(ctx context.Context, cohort *domain.BuildCohort) error {
	if _, err := r.collection.InsertOne(ctx, cohort); err != nil {
		return fmt.Errorf("failed to insert cohort: %w", err)
	}
	if err := r.events.write(ctx, cohort.CohortID, "BuildCohort", cohort.DomainEvents); err != nil {
		return err
	}
	cohort.ClearDomainEvents()
	return nil
}

// Update replaces an existing cohort and writes its domain events. The latch
// guard rejects a concurrent second completion: the filter requires the
// stored status to still be open when this update marks it complete.
func (r *CohortRepository) Update(ctx context.Context, cohort *domain.BuildCohort) error {
	filter := bson.M{"cohortId": cohort.CohortID}
	if cohort.Status == domain.CohortStatusComplete && len(cohort.DomainEvents) > 0 {
		filter["status"] = string(domain.CohortStatusOpen)
	}

	result, err := r.collection.ReplaceOne(ctx, filter, cohort)
	if err != nil {
		return fmt.Errorf("failed to update cohort: %w", err)
	}
	if result.MatchedCount == 0 {
		if cohort.Status == domain.CohortStatusComplete {
			return domain.ErrCohortAlreadyComplete
		}
		return fmt.Errorf("cohort %s not found", cohort.CohortID)
	}
	if err := r.events.write(ctx, cohort.CohortID, "BuildCohort", cohort.DomainEvents); err != nil {
		return err
	}
	cohort.ClearDomainEvents()
	return nil
}

// FindByID retrieves a cohort by its business ID
func (r *CohortRepository) FindByID(ctx context.Context, cohortID string) (*domain.BuildCohort, error) {
	var cohort domain.BuildCohort
	err := r.collection.FindOne(ctx, bson.M{"cohortId": cohortID}).Decode(&cohort)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &cohort, err
}

// FindAllActive retrieves all active cohorts, newest first
func (r *CohortRepository) FindAllActive(ctx context.Context) ([]*domain.BuildCohort, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var cohorts []*domain.BuildCohort
	err = cursor.All(ctx, &cohorts)
	return cohorts, err
}
