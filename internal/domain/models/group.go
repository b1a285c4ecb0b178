// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a project group inside a section.
//
// NOTE:
//   - Code is unique across the collection and is derived from the
//     owning section plus a per-section sequence number ("MA6G3").
//     Allocation scans existing codes and relies on the unique index
//     to catch racing inserts (see groupstore.CreateWithNextCode).
//   - Member lists are not embedded here; membership lives in the
//     group_memberships collection.
type Group struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Code    string             `bson:"code" json:"code"`
	Section string             `bson:"section" json:"section"`

	CreatedByID   *primitive.ObjectID `bson:"created_by_id,omitempty" json:"created_by_id,omitempty"`
	CreatedByName string              `bson:"created_by_name,omitempty" json:"created_by_name,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
