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

const savedWorkoutCollectionName = "saved_workouts"

// mongoSavedWorkoutRepository implements repository.SavedWorkoutRepository
type mongoSavedWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoSavedWorkoutRepository creates a new SavedWorkout repository.
func NewMongoSavedWorkoutRepository(db *mongo.Database) repository.SavedWorkoutRepository {
	return &mongoSavedWorkoutRepository{
		collection: db.Collection(savedWorkoutCollectionName),
	}
}

// Create inserts a new template.
func (r *mongoSavedWorkoutRepository) Create(ctx context.Context, saved *domain.SavedWorkout) (primitive.ObjectID, error) {
	if saved.CoachID == primitive.NilObjectID || saved.Title == "" {
		return primitive.NilObjectID, repository.ErrInvalid
	}
	saved.ID = primitive.NewObjectID()
	saved.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, saved)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted saved workout ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single template by its ID.
func (r *mongoSavedWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SavedWorkout, error) {
	var saved domain.SavedWorkout
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&saved)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &saved, nil
}

// GetByCoachID retrieves all templates of a coach, newest first.
func (r *mongoSavedWorkoutRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.SavedWorkout, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"coachId": coachID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var saved []domain.SavedWorkout
	if err = cursor.All(ctx, &saved); err != nil {
		return nil, err
	}
	if saved == nil {
		saved = []domain.SavedWorkout{}
	}
	return saved, nil
}

// Delete removes the template if it belongs to the coach.
func (r *mongoSavedWorkoutRepository) Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "coachId": coachID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureSavedWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureSavedWorkoutIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	})
}
