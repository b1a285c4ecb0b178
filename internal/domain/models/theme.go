// internal/domain/models/theme.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Theme status values. A theme is either free or reserved; there is no
// terminal state, so a released theme can be reserved again.
const (
	ThemeFree     = "free"
	ThemeReserved = "reserved"
)

// Theme is one reservable topic in the catalog.
//
// NOTE:
//   - Title is unique; catalog imports merge by title.
//   - ReservedBy holds the reserving group's code, not an ObjectID.
//     It is a back-reference for display and gating, the catalog does
//     not own the group.
//   - The free→reserved transition happens only through the reservation
//     engine's conditional update; handlers never write Status directly.
type Theme struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"title_ci"` // lowercase, diacritics-stripped
	Ordinal     int                `bson:"ordinal,omitempty" json:"ordinal,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	Status     string     `bson:"status" json:"status"` // "free" | "reserved"
	ReservedBy string     `bson:"reserved_by,omitempty" json:"reserved_by,omitempty"`
	ReservedAt *time.Time `bson:"reserved_at,omitempty" json:"reserved_at,omitempty"`
	ReleasedBy string     `bson:"released_by,omitempty" json:"released_by,omitempty"`
	ReleasedAt *time.Time `bson:"released_at,omitempty" json:"released_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
