// internal/app/store/students/studentstore.go
package studentstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/temahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("students")}
}

// ErrNotFound means no student matched the lookup.
var ErrNotFound = errors.New("student not found")

// UpsertByRA creates or refreshes a roster row keyed by RA. A student who
// was deactivated and appears in a new import comes back active; name,
// email, and section are overwritten from the import. The boolean reports
// whether a new row was created.
func (s *Store) UpsertByRA(ctx context.Context, ra, fullName, email, section string) (bool, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"full_name":    fullName,
			"full_name_ci": text.Fold(fullName),
			"email":        email,
			"section":      section,
			"active":       true,
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"ra":         ra,
			"created_at": now,
		},
	}
	opts := options.Update().SetUpsert(true)
	res, err := s.c.UpdateOne(ctx, bson.M{"ra": ra}, update, opts)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

// GetByRA fetches one student by registration number.
func (s *Store) GetByRA(ctx context.Context, ra string) (*models.Student, error) {
	var st models.Student
	err := s.c.FindOne(ctx, bson.M{"ra": ra}).Decode(&st)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// GetByID fetches one student by id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Student, error) {
	var st models.Student
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&st)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// ListBySection returns the active roster for one section, sorted by name.
func (s *Store) ListBySection(ctx context.Context, section string) ([]models.Student, error) {
	opts := options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"section": section, "active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var students []models.Student
	if err := cur.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// Deactivate marks a student inactive without deleting the row, keeping
// historical memberships resolvable.
func (s *Store) Deactivate(ctx context.Context, ra string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"ra": ra}, bson.M{
		"$set": bson.M{"active": false, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountBySection returns active roster sizes keyed by section.
func (s *Store) CountBySection(ctx context.Context) (map[string]int64, error) {
	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"active": true}},
		{"$group": bson.M{"_id": "$section", "n": bson.M{"$sum": 1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	counts := make(map[string]int64)
	for cur.Next(ctx) {
		var row struct {
			Section string `bson:"_id"`
			N       int64  `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.Section] = row.N
	}
	return counts, cur.Err()
}
