package repository

import (
	"context"
	"errors"
	"os"

	"notevault/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepo struct {
	MongoCollection *mongo.Collection
}

func GetUserRepo(client *mongo.Client) *UserRepo {
	return &UserRepo{
		MongoCollection: client.Database(os.Getenv("MONGO_DB")).Collection("users"),
	}
}

func (r *UserRepo) CreateUser(ctx context.Context, user *model.User) error {
	_, err := r.MongoCollection.InsertOne(ctx, user)
	return err
}

// FindUserByEmail returns nil without error when no account exists.
func (r *UserRepo) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.MongoCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByID returns nil without error when no account exists.
func (r *UserRepo) FindUserByID(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	err := r.MongoCollection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	result, err := r.MongoCollection.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"password": passwordHash}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("user not found")
	}
	return nil
}

func (r *UserRepo) SetTwoFactor(ctx context.Context, userID, secret string, enabled bool) error {
	result, err := r.MongoCollection.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{
			"two_factor_secret":  secret,
			"two_factor_enabled": enabled,
		}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("user not found")
	}
	return nil
}

// AddNoteRef appends a note id to the owner's notes array.
func (r *UserRepo) AddNoteRef(ctx context.Context, userID, noteID string) error {
	_, err := r.MongoCollection.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$push": bson.M{"notes": noteID}})
	return err
}

// RemoveNoteRefs pulls note ids from the owner's notes array. Ids the
// user never held are ignored.
func (r *UserRepo) RemoveNoteRefs(ctx context.Context, userID string, noteIDs []string) error {
	_, err := r.MongoCollection.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$pull": bson.M{"notes": bson.M{"$in": noteIDs}}})
	return err
}
