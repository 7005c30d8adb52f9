package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	usersCollection    = "users"
	listingsCollection = "listings"
)

type UserRepository struct {
	collection *mongo.Collection
	listings   *mongo.Collection
	logger     *logger.Logger
}

func NewUserRepository(db *mongo.Database, appLogger *logger.Logger) *UserRepository {
	return &UserRepository{
		collection: db.Collection(usersCollection),
		listings:   db.Collection(listingsCollection),
		logger:     appLogger.Named("MongoUserRepository"),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, err := r.collection.InsertOne(ctx, toUserDocument(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailAlreadyExists
		}
		r.logger.Error("Failed to insert user", zap.String("email", user.Email), zap.Error(err))
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toDomain())
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	res, err := r.collection.UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"role":          string(user.Role),
		"status":        string(user.Status),
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete refuses users that still own listings; there is no foreign key to enforce it.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	owned, err := r.listings.CountDocuments(ctx, bson.M{"owner_id": id})
	if err != nil {
		return fmt.Errorf("count listings: %w", err)
	}
	if owned > 0 {
		return domain.ErrUserHasListings
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index and the listing lookup indexes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users email index: %w", err)
	}
	if _, err := db.Collection(listingsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("listings indexes: %w", err)
	}
	return nil
}
