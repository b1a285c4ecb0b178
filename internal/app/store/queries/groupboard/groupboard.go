// internal/app/store/queries/groupboard/groupboard.go
package groupboard

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Item is one row of the group board: the group plus its live member
// count and the theme it currently holds, if any.
type Item struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	Code          string             `bson:"code" json:"code"`
	Section       string             `bson:"section" json:"section"`
	MemberCount   int64              `bson:"member_count" json:"member_count"`
	ThemeTitle    string             `bson:"theme_title" json:"theme_title"`
	CreatedByName string             `bson:"created_by_name" json:"created_by_name"`
}

// List returns the board for one section, or for all sections when
// section is blank. Rows are ordered by section then code.
func List(ctx context.Context, db *mongo.Database, section string) ([]Item, error) {
	match := bson.M{}
	if section != "" {
		match["section"] = section
	}

	pipe := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "section", Value: 1},
			{Key: "code", Value: 1},
		}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "group_memberships",
			"localField":   "_id",
			"foreignField": "group_id",
			"as":           "memberships",
		}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from": "themes",
			"let":  bson.M{"code": "$code"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{
					"status": "reserved",
					"$expr":  bson.M{"$eq": bson.A{"$reserved_by", "$$code"}},
				}},
				bson.M{"$project": bson.M{"title": 1}},
			},
			"as": "theme_docs",
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"code":         1,
			"section":      1,
			"member_count": bson.M{"$size": "$memberships"},
			"theme_title": bson.M{"$ifNull": bson.A{
				bson.M{"$first": "$theme_docs.title"}, "",
			}},
			"created_by_name": bson.M{"$ifNull": bson.A{"$created_by_name", ""}},
		}}},
	}

	cur, err := db.Collection("groups").Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Item
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
