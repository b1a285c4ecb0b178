// internal/domain/models/groupmembership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupMembership is the authoritative join between students and groups.
// Exactly one document per (group_id, student_id); the unique index on that
// pair makes duplicate adds a no-op at the store level.
//
// GroupCode and Section are denormalized from the group so membership
// listings and the gallery export do not need a join.
type GroupMembership struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID   primitive.ObjectID `bson:"group_id" json:"group_id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`
	GroupCode string             `bson:"group_code" json:"group_code"`
	Section   string             `bson:"section" json:"section"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
