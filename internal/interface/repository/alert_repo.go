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

// MongoAlertRepository implements AlertRepository
type MongoAlertRepository struct {
	collection *mongo.Collection
}

// NewMongoAlertRepository creates a new alert repository
func NewMongoAlertRepository(db *mongo.Database) repository.AlertRepository {
	collection := db.Collection("monitoring_alerts")

	ctx := context.Background()
	tripIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "tripId", Value: 1}, {Key: "resolved", Value: 1}},
	}
	collection.Indexes().CreateOne(ctx, tripIndex)

	return &MongoAlertRepository{
		collection: collection,
	}
}

// Record inserts a new alert
func (r *MongoAlertRepository) Record(ctx context.Context, alert *entity.Alert) error {
	if alert.ID == "" {
		alert.ID = primitive.NewObjectID().Hex()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, alert)
	return err
}

// FindUnresolvedByTrip returns the open alerts for a trip, newest first
func (r *MongoAlertRepository) FindUnresolvedByTrip(ctx context.Context, tripID string) ([]*entity.Alert, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"tripId": tripID, "resolved": false},
		options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var alerts []*entity.Alert
	for cursor.Next(ctx) {
		var alert entity.Alert
		if err := cursor.Decode(&alert); err != nil {
			return nil, err
		}
		alerts = append(alerts, &alert)
	}

	return alerts, cursor.Err()
}

// Resolve marks an alert handled
func (r *MongoAlertRepository) Resolve(ctx context.Context, id string) error {
	now := time.Now()
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"resolved":   true,
			"resolvedAt": now,
		}},
	)
	return err
}
