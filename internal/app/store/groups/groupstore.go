// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/temahub/internal/app/system/normalize"
	"github.com/dalemusser/temahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	// ErrNotFound means no group matched the lookup.
	ErrNotFound = errors.New("group not found")

	// ErrDuplicateGroupCode is returned when code allocation lost the race
	// for the same sequence number too many times in a row.
	ErrDuplicateGroupCode = errors.New("a group with this code already exists")
)

// allocAttempts bounds the re-scan-and-retry loop in CreateWithNextCode.
const allocAttempts = 3

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return models.Group{}, ErrNotFound
	}
	if err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// GetByCode loads a group by its unique code ("MA6G3").
func (s *Store) GetByCode(ctx context.Context, code string) (models.Group, error) {
	var g models.Group
	err := s.c.FindOne(ctx, bson.M{"code": normalize.GroupCode(code)}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return models.Group{}, ErrNotFound
	}
	if err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// CreateWithNextCode allocates the next free code for the section and
// inserts the group. The code is "<SECTION>G<n>" where n is one past the
// highest sequence currently used in the section.
//
// Two racing creators can compute the same n; the unique index on code
// turns the loser's insert into a duplicate-key error, which we answer by
// re-scanning and retrying a bounded number of times.
func (s *Store) CreateWithNextCode(ctx context.Context, section, createdByName string, createdByID *primitive.ObjectID) (models.Group, error) {
	section = normalize.Section(section)

	for attempt := 0; attempt < allocAttempts; attempt++ {
		seq, err := s.nextSequence(ctx, section)
		if err != nil {
			return models.Group{}, err
		}

		now := time.Now().UTC()
		g := models.Group{
			ID:            primitive.NewObjectID(),
			Code:          fmt.Sprintf("%sG%d", section, seq),
			Section:       section,
			CreatedByID:   createdByID,
			CreatedByName: createdByName,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		_, err = s.c.InsertOne(ctx, g)
		if err == nil {
			return g, nil
		}
		if !wafflemongo.IsDup(err) {
			return models.Group{}, err
		}
		// Lost the race for this sequence number; re-scan and try again.
	}
	return models.Group{}, ErrDuplicateGroupCode
}

// nextSequence scans existing codes for the section and returns the next
// unused sequence number (starting at 1). Codes that do not match the
// "<SECTION>G<digits>" shape are ignored rather than rejected, so manually
// seeded groups cannot wedge the allocator.
func (s *Store) nextSequence(ctx context.Context, section string) (int, error) {
	cur, err := s.c.Find(ctx, bson.M{"section": section},
		options.Find().SetProjection(bson.M{"code": 1}))
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	prefix := section + "G"
	max := 0
	for cur.Next(ctx) {
		var row struct {
			Code string `bson:"code"`
		}
		if err := cur.Decode(&row); err != nil {
			continue
		}
		if !strings.HasPrefix(row.Code, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(row.Code, prefix))
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	if err := cur.Err(); err != nil {
		return 0, err
	}
	return max + 1, nil
}

// ListBySection returns all groups in a section ordered by code. An empty
// section lists every group.
func (s *Store) ListBySection(ctx context.Context, section string) ([]models.Group, error) {
	filter := bson.M{}
	if section != "" {
		filter["section"] = normalize.Section(section)
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{
		{Key: "section", Value: 1},
		{Key: "code", Value: 1},
	}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// CountBySection returns the number of groups in a section.
func (s *Store) CountBySection(ctx context.Context, section string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"section": normalize.Section(section)})
}
