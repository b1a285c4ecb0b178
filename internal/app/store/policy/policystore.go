// internal/app/store/policy/policystore.go
package policystore

import (
	"context"
	"time"

	"github.com/dalemusser/temahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const policyName = "default"

// Store provides access to the course_policy collection. A single document
// (name "default") holds the reservation and publication policy. Readers
// hit the database on every call, which is what makes the settings page
// hot-reloadable: the next reserve attempt sees the saved values.
type Store struct {
	c        *mongo.Collection
	defaults models.CoursePolicy
}

// New creates a policy store. The defaults (normally built from AppConfig)
// are returned whenever no policy document has been saved yet.
func New(db *mongo.Database, defaults models.CoursePolicy) *Store {
	defaults.Name = policyName
	return &Store{c: db.Collection("course_policy"), defaults: defaults}
}

// Get returns the current course policy, or the configured defaults if
// none has been saved.
func (s *Store) Get(ctx context.Context) (models.CoursePolicy, error) {
	var p models.CoursePolicy
	err := s.c.FindOne(ctx, bson.M{"name": policyName}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return s.defaults, nil
	}
	if err != nil {
		return models.CoursePolicy{}, err
	}
	return p, nil
}

// Save upserts the policy document. Values take effect on the next read;
// there is no restart or cache invalidation step.
func (s *Store) Save(ctx context.Context, p models.CoursePolicy, updatedBy string) error {
	now := time.Now().UTC()

	filter := bson.M{"name": policyName}
	update := bson.M{
		"$set": bson.M{
			"name":                      policyName,
			"reserve_cutoff":            p.ReserveCutoff,
			"min_members_before":        p.MinMembersBefore,
			"min_members_after":         p.MinMembersAfter,
			"publish_min_score":         p.PublishMinScore,
			"enforce_single_membership": p.EnforceSingleMembership,
			"updated_at":                now,
			"updated_by_name":           updatedBy,
		},
		"$setOnInsert": bson.M{
			"_id": primitive.NewObjectID(),
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, filter, update, opts)
	return err
}
