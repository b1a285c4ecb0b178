// internal/domain/models/submission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Submission is one deliverable upload by a group.
//
// The collection is append-only: a group re-submitting creates a new
// document, and "current" is the newest by submitted_at. Publication is a
// one-way flag flipped by an instructor (manually or by review score).
//
// The *Path fields are opaque storage references (local path or S3 key);
// the engine never interprets the bytes behind them.
type Submission struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupCode  string             `bson:"group_code" json:"group_code"`
	ThemeTitle string             `bson:"theme_title" json:"theme_title"`

	ReportPath string `bson:"report_path,omitempty" json:"report_path,omitempty"`
	SlidesPath string `bson:"slides_path,omitempty" json:"slides_path,omitempty"`
	BundlePath string `bson:"bundle_path,omitempty" json:"bundle_path,omitempty"`
	VideoLink  string `bson:"video_link,omitempty" json:"video_link,omitempty"`

	Consent       bool                `bson:"consent" json:"consent"`
	SubmittedByID *primitive.ObjectID `bson:"submitted_by_id,omitempty" json:"submitted_by_id,omitempty"`
	SubmittedBy   string              `bson:"submitted_by" json:"submitted_by"`
	SubmittedAt   time.Time           `bson:"submitted_at" json:"submitted_at"`

	Published   bool       `bson:"published" json:"published"`
	PublishedAt *time.Time `bson:"published_at,omitempty" json:"published_at,omitempty"`
	PublishedBy string     `bson:"published_by,omitempty" json:"published_by,omitempty"`
}
