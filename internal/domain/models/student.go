// internal/domain/models/student.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Student is one row of the imported course roster.
//
// NOTE:
//   - RA is the institutional registration number ("RA12345678") and is
//     unique across the collection. Roster imports upsert by RA.
//   - Students are never deleted; re-importing a roster reactivates
//     anyone who was previously deactivated.
type Student struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RA         string             `bson:"ra" json:"ra"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email,omitempty" json:"email,omitempty"`
	Section    string             `bson:"section" json:"section"` // e.g. "MA6", "MB6", "NA6"
	Active     bool               `bson:"active" json:"active"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
