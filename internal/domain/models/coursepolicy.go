// internal/domain/models/coursepolicy.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Default policy values used when no course_policy document has been saved.
// They mirror the course rule the system was built for: groups of five or
// six form until the cutoff, smaller groups are tolerated afterwards.
const (
	DefaultMinMembersBefore = 5
	DefaultMinMembersAfter  = 3
	DefaultPublishMinScore  = 7.0
)

// CoursePolicy is the hot-reloadable reservation and publication policy.
// A single document (keyed by name "default") lives in the course_policy
// collection; handlers read it per request, so saving from the settings
// page takes effect without a restart.
type CoursePolicy struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"` // "default"

	// ReserveCutoff is the instant the minimum-membership rule relaxes.
	// The stricter MinMembersBefore applies while now <= ReserveCutoff.
	ReserveCutoff    time.Time `bson:"reserve_cutoff" json:"reserve_cutoff"`
	MinMembersBefore int       `bson:"min_members_before" json:"min_members_before"`
	MinMembersAfter  int       `bson:"min_members_after" json:"min_members_after"`

	PublishMinScore float64 `bson:"publish_min_score" json:"publish_min_score"`

	// EnforceSingleMembership rejects adding a student who already belongs
	// to another group. Off by default.
	EnforceSingleMembership bool `bson:"enforce_single_membership" json:"enforce_single_membership"`

	UpdatedAt     *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	UpdatedByName string     `bson:"updated_by_name,omitempty" json:"updated_by_name,omitempty"`
}
