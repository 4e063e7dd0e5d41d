// Package tokenstore keeps the list of revoked bearer token ids.
//
// Entries carry the token's own expiry; a TTL index removes them once the
// token could no longer be used anyway.
package tokenstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type revokedToken struct {
	ID        primitive.ObjectID `bson:"_id"`
	JTI       string             `bson:"jti"`
	UserID    primitive.ObjectID `bson:"user_id"`
	ExpiresAt time.Time          `bson:"expires_at"`
	RevokedAt time.Time          `bson:"revoked_at"`
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("revoked_tokens")}
}

// Revoke records jti as revoked until expiresAt. Revoking twice is not an
// error.
func (s *Store) Revoke(ctx context.Context, jti string, userID primitive.ObjectID, expiresAt time.Time) error {
	doc := revokedToken{
		ID:        primitive.NewObjectID(),
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
		RevokedAt: time.Now().UTC(),
	}
	_, err := s.c.InsertOne(ctx, doc)
	if err != nil && (wafflemongo.IsDup(err) || mongo.IsDuplicateKeyError(err)) {
		return nil
	}
	return err
}

// IsRevoked reports whether jti has been revoked. Entries past their expiry
// that the TTL monitor has not yet removed still count.
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"jti": jti}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteByUser drops revocation entries of a deleted user; their tokens can
// no longer resolve to a user.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
