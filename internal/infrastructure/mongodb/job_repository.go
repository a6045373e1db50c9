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

// JobRepository implements domain.JobRepository using MongoDB
type JobRepository struct {
	collection *mongo.Collection
	events     *eventWriter
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(db *mongo.Database, factory *cloudevents.EventFactory) *JobRepository {
	collection := db.Collection("jobs")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "jobId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "cohortId", Value: 1}, {Key: "isActive", Value: 1}}},
		{Keys: bson.D{{Key: "partId", Value: 1}}},
		{Keys: bson.D{{Key: "workflowStage", Value: 1}}},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &JobRepository{
		collection: collection,
		events:     newEventWriter(outboxMongo.NewOutboxRepository(db), factory),
	}
}

// Save inserts a new job and its domain events
func (r *JobRepository) Save(ctx context.Context, job *domain.Job) error {
	if _, err := r.collection.InsertOne(ctx, job); err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	if err := r.events.write(ctx, job.JobID, "Job", job.DomainEvents); err != nil {
		return err
	}
	job.ClearDomainEvents()
	return nil
}

// Update replaces an existing job and writes its domain events
func (r *JobRepository) Update(ctx context.Context, job *domain.Job) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"jobId": job.JobID}, job)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("job %s not found", job.JobID)
	}
	if err := r.events.write(ctx, job.JobID, "Job", job.DomainEvents); err != nil {
		return err
	}
	job.ClearDomainEvents()
	return nil
}

// FindByID retrieves a job by its business ID
func (r *JobRepository) FindByID(ctx context.Context, jobID string) (*domain.Job, error) {
	var job domain.Job
	err := r.collection.FindOne(ctx, bson.M{"jobId": jobID}).Decode(&job)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &job, err
}

// FindActiveByCohort retrieves the active member jobs of a cohort
func (r *JobRepository) FindActiveByCohort(ctx context.Context, cohortID string) ([]*domain.Job, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"cohortId": cohortID, "isActive": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var jobs []*domain.Job
	err = cursor.All(ctx, &jobs)
	return jobs, err
}

// FindAllActive retrieves all active jobs, newest first
func (r *JobRepository) FindAllActive(ctx context.Context) ([]*domain.Job, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var jobs []*domain.Job
	err = cursor.All(ctx, &jobs)
	return jobs, err
}
