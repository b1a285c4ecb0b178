// internal/domain/models/review.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is one reviewer's evaluation of one submission. The unique index
// on (submission_id, reviewer_id) makes Upsert idempotent: re-reviewing
// overwrites score, liked, and comment in place.
type Review struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SubmissionID primitive.ObjectID `bson:"submission_id" json:"submission_id"`
	ReviewerID   primitive.ObjectID `bson:"reviewer_id" json:"reviewer_id"`
	ReviewerName string             `bson:"reviewer_name,omitempty" json:"reviewer_name,omitempty"`

	Score   int    `bson:"score" json:"score"` // 0–10
	Liked   bool   `bson:"liked" json:"liked"`
	Comment string `bson:"comment,omitempty" json:"comment,omitempty"` // sanitized HTML

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
