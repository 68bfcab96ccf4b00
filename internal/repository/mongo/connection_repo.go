package mongo

import (
	"context"
	"errors"
	"time"

	"runcoach/coaching-app/internal/domain"
	"runcoach/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectionCollectionName = "connections"

// mongoConnectionRepository implements repository.ConnectionRepository
type mongoConnectionRepository struct {
	collection *mongo.Collection
}

// NewMongoConnectionRepository creates a new Connection repository backed by MongoDB.
func NewMongoConnectionRepository(db *mongo.Database) repository.ConnectionRepository {
	return &mongoConnectionRepository{
		collection: db.Collection(connectionCollectionName),
	}
}

// Create inserts a new coaching request. Status defaults to pending.
func (r *mongoConnectionRepository) Create(ctx context.Context, conn *domain.Connection) (primitive.ObjectID, error) {
	if conn.RunnerID == primitive.NilObjectID || conn.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, repository.ErrInvalid
	}
	conn.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	conn.CreatedAt = now
	conn.UpdatedAt = now
	if conn.Status == "" {
		conn.Status = domain.ConnectionPending
	}

	result, err := r.collection.InsertOne(ctx, conn)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a connection by its ID.
func (r *mongoConnectionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Connection, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// Find returns the most recent connection between runner and coach, whatever its status.
func (r *mongoConnectionRepository) Find(ctx context.Context, runnerID, coachID primitive.ObjectID) (*domain.Connection, error) {
	return r.findOne(ctx, bson.M{"runnerId": runnerID, "coachId": coachID})
}

// FindActive returns a pending or accepted connection between runner and coach.
func (r *mongoConnectionRepository) FindActive(ctx context.Context, runnerID, coachID primitive.ObjectID) (*domain.Connection, error) {
	return r.findOne(ctx, bson.M{
		"runnerId": runnerID,
		"coachId":  coachID,
		"status":   bson.M{"$in": []domain.ConnectionStatus{domain.ConnectionPending, domain.ConnectionAccepted}},
	})
}

func (r *mongoConnectionRepository) findOne(ctx context.Context, filter bson.M) (*domain.Connection, error) {
	var conn domain.Connection
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	err := r.collection.FindOne(ctx, filter, opts).Decode(&conn)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &conn, nil
}

// GetByCoachID retrieves every request addressed to a coach, newest first.
func (r *mongoConnectionRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Connection, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"coachId": coachID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var conns []domain.Connection
	if err = cursor.All(ctx, &conns); err != nil {
		return nil, err
	}
	if conns == nil {
		conns = []domain.Connection{}
	}
	return conns, nil
}

// UpdateStatus sets the status and returns the updated connection.
func (r *mongoConnectionRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.ConnectionStatus) (*domain.Connection, error) {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var conn domain.Connection
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&conn)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &conn, nil
}

// EnsureConnectionIndexes creates necessary indexes for the connections collection.
func EnsureConnectionIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "runnerId", Value: 1}, {Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
	})
}
