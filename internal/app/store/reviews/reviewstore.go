// internal/app/store/reviews/reviewstore.go
package reviewstore

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
	return &Store{c: db.Collection("reviews")}
}

// ErrScoreOutOfRange rejects scores outside the 0 to 10 scale before any
// write happens.
var ErrScoreOutOfRange = errors.New("score must be between 0 and 10")

// Summary is the aggregate a submission's reviews roll up to.
type Summary struct {
	SubmissionID primitive.ObjectID `bson:"_id"`
	ReviewCount  int64              `bson:"review_count"`
	MeanScore    float64            `bson:"mean_score"`
	LikeCount    int64              `bson:"like_count"`
}

// Upsert writes a reviewer's evaluation of a submission. The unique
// (submission_id, reviewer_id) index means the second call by the same
// reviewer overwrites score, liked, and comment rather than adding a row.
func (s *Store) Upsert(ctx context.Context, r *models.Review) error {
	if r.Score < 0 || r.Score > 10 {
		return ErrScoreOutOfRange
	}
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"reviewer_name": r.ReviewerName,
			"score":         r.Score,
			"liked":         r.Liked,
			"comment":       r.Comment,
			"updated_at":    now,
		},
		"$setOnInsert": bson.M{
			"_id":           primitive.NewObjectID(),
			"submission_id": r.SubmissionID,
			"reviewer_id":   r.ReviewerID,
			"created_at":    now,
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx,
		bson.M{"submission_id": r.SubmissionID, "reviewer_id": r.ReviewerID},
		update, opts)
	return err
}

// ByReviewer returns this reviewer's existing review of the submission,
// or nil when they have not reviewed it yet.
func (s *Store) ByReviewer(ctx context.Context, submissionID, reviewerID primitive.ObjectID) (*models.Review, error) {
	var r models.Review
	err := s.c.FindOne(ctx, bson.M{
		"submission_id": submissionID,
		"reviewer_id":   reviewerID,
	}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListBySubmission returns all reviews of a submission, newest first.
func (s *Store) ListBySubmission(ctx context.Context, submissionID primitive.ObjectID) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"submission_id": submissionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var reviews []models.Review
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// Summarize computes the review aggregate for one submission. A
// submission with no reviews yields a zero Summary, not an error.
func (s *Store) Summarize(ctx context.Context, submissionID primitive.ObjectID) (Summary, error) {
	sums, err := s.summarize(ctx, bson.M{"submission_id": submissionID})
	if err != nil {
		return Summary{}, err
	}
	if len(sums) == 0 {
		return Summary{SubmissionID: submissionID}, nil
	}
	return sums[0], nil
}

// SummarizeAll computes aggregates for every reviewed submission, keyed
// by submission id, for the review queue and threshold publication.
func (s *Store) SummarizeAll(ctx context.Context) (map[primitive.ObjectID]Summary, error) {
	sums, err := s.summarize(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]Summary, len(sums))
	for _, sum := range sums {
		out[sum.SubmissionID] = sum
	}
	return out, nil
}

func (s *Store) summarize(ctx context.Context, match bson.M) ([]Summary, error) {
	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": match},
		{"$group": bson.M{
			"_id":          "$submission_id",
			"review_count": bson.M{"$sum": 1},
			"mean_score":   bson.M{"$avg": "$score"},
			"like_count":   bson.M{"$sum": bson.M{"$cond": []interface{}{"$liked", 1, 0}}},
		}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var sums []Summary
	if err := cur.All(ctx, &sums); err != nil {
		return nil, err
	}
	return sums, nil
}
