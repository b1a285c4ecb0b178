// internal/app/store/queries/gallery/gallery.go
package gallery

import (
	"context"

	"github.com/dalemusser/temahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Entry is one published project in the public gallery: the submission
// itself plus the group's section and member names.
type Entry struct {
	Submission models.Submission `bson:"submission" json:"submission"`
	Section    string            `bson:"section" json:"section"`
	Members    []string          `bson:"members" json:"members"`
}

// ListPublished returns every published submission, newest publication
// first, with member names sorted for display.
func ListPublished(ctx context.Context, db *mongo.Database) ([]Entry, error) {
	pipe := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"published": true}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "published_at", Value: -1},
			{Key: "_id", Value: -1},
		}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "group_memberships",
			"localField":   "group_code",
			"foreignField": "group_code",
			"as":           "memberships",
		}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from": "students",
			"let":  bson.M{"sids": "$memberships.student_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{
					"$in": bson.A{"$_id", bson.M{"$ifNull": bson.A{"$$sids", bson.A{}}}},
				}}},
				bson.M{"$sort": bson.D{
					{Key: "full_name_ci", Value: 1},
					{Key: "_id", Value: 1},
				}},
				bson.M{"$project": bson.M{"full_name": 1}},
			},
			"as": "member_docs",
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"submission": "$$ROOT",
			"section": bson.M{"$ifNull": bson.A{
				bson.M{"$first": "$memberships.section"}, "",
			}},
			"members": "$member_docs.full_name",
		}}},
	}

	cur, err := db.Collection("submissions").Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Entry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
