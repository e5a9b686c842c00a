package repository

import (
	"context"
	"time"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTaskRepository implements MonitoringTaskRepository
type MongoTaskRepository struct {
	collection *mongo.Collection
}

// NewMongoTaskRepository creates a new monitoring task repository
func NewMongoTaskRepository(db *mongo.Database) repository.MonitoringTaskRepository {
	collection := db.Collection("monitoring_tasks")

	// Index for the poll loop's enabled-task scan
	ctx := context.Background()
	enabledIndex := mongo.IndexModel{
		Keys: bson.M{"enabled": 1},
	}
	collection.Indexes().CreateOne(ctx, enabledIndex)

	// One task per flight per trip
	flightIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "tripId", Value: 1}, {Key: "flightNumber", Value: 1}, {Key: "flightDate", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	collection.Indexes().CreateOne(ctx, flightIndex)

	return &MongoTaskRepository{
		collection: collection,
	}
}

// Create inserts a new monitoring task
func (r *MongoTaskRepository) Create(ctx context.Context, task *entity.MonitoringTask) error {
	now := time.Now()
	if task.ID == "" {
		task.ID = primitive.NewObjectID().Hex()
	}
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, task)
	return err
}

// FindByID finds a monitoring task by id
func (r *MongoTaskRepository) FindByID(ctx context.Context, id string) (*entity.MonitoringTask, error) {
	var task entity.MonitoringTask
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListEnabled returns every task currently under watch
func (r *MongoTaskRepository) ListEnabled(ctx context.Context) ([]*entity.MonitoringTask, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"enabled": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []*entity.MonitoringTask
	for cursor.Next(ctx) {
		var task entity.MonitoringTask
		if err := cursor.Decode(&task); err != nil {
			return nil, err
		}
		tasks = append(tasks, &task)
	}

	return tasks, cursor.Err()
}

// SetEnabled pauses or resumes a task. The last-known status stays on the
// document so re-enabling resumes change detection where it left off.
func (r *MongoTaskRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"enabled":   enabled,
			"updatedAt": time.Now(),
		}},
	)
	return err
}

// UpdateLastStatus persists the freshly observed status snapshot
func (r *MongoTaskRepository) UpdateLastStatus(ctx context.Context, id string, status *entity.FlightStatus, polledAt time.Time) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"lastStatus":   status,
			"lastPolledAt": polledAt,
			"updatedAt":    time.Now(),
		}},
	)
	return err
}
