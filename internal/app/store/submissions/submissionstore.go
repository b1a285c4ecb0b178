// internal/app/store/submissions/submissionstore.go
package submissionstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/temahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("submissions")}
}

// ErrNotFound means no submission matched the lookup.
var ErrNotFound = errors.New("submission not found")

// Insert appends a new submission row. Earlier submissions by the same
// group are left in place; Current picks the newest.
func (s *Store) Insert(ctx context.Context, sub *models.Submission) error {
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, sub)
	return err
}

// GetByID fetches one submission.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Submission, error) {
	var sub models.Submission
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sub)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Current returns the group's newest submission, the one reviews and
// publication act on.
func (s *Store) Current(ctx context.Context, groupCode string) (*models.Submission, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	var sub models.Submission
	err := s.c.FindOne(ctx, bson.M{"group_code": groupCode}, opts).Decode(&sub)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByGroup returns the group's submissions, newest first.
func (s *Store) ListByGroup(ctx context.Context, groupCode string) ([]models.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"group_code": groupCode}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var subs []models.Submission
	if err := cur.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// ListCurrent returns each group's newest submission, for the review
// queue. Groups with several submissions contribute exactly one row.
func (s *Store) ListCurrent(ctx context.Context) ([]models.Submission, error) {
	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$sort": bson.M{"submitted_at": -1}},
		{"$group": bson.M{"_id": "$group_code", "doc": bson.M{"$first": "$$ROOT"}}},
		{"$replaceRoot": bson.M{"newRoot": "$doc"}},
		{"$sort": bson.M{"group_code": 1}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var subs []models.Submission
	if err := cur.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// ListPublished returns published submissions for the gallery, newest
// publication first. Only consented submissions can be published, so no
// consent filter is needed here.
func (s *Store) ListPublished(ctx context.Context) ([]models.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "published_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"published": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var subs []models.Submission
	if err := cur.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// Publish flips the one-way published flag. Publishing an already
// published submission keeps the original timestamp and publisher.
func (s *Store) Publish(ctx context.Context, id primitive.ObjectID, publishedBy string) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "published": false},
		bson.M{"$set": bson.M{
			"published":    true,
			"published_at": now,
			"published_by": publishedBy,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Already published, or missing entirely.
		n, cerr := s.c.CountDocuments(ctx, bson.M{"_id": id})
		if cerr != nil {
			return cerr
		}
		if n == 0 {
			return ErrNotFound
		}
	}
	return nil
}
