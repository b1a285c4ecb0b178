// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents login accounts: admins, instructors, and students.
//
// NOTE:
//   - The engine receives an already-authenticated identity; a User is
//     only the thing the session layer resolves before calling in.
//   - Student accounts carry the roster RA so handlers can find the
//     student's group without a second lookup table.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"full_name" json:"full_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	LoginID      string             `bson:"login_id" json:"login_id"`         // email or institutional login
	AuthMethod   string             `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // "internal" | "google"
	PasswordHash []byte             `bson:"password_hash,omitempty" json:"-"`
	Role         string             `bson:"role" json:"role"` // admin | instructor | student
	Status       string             `bson:"status,omitempty" json:"status,omitempty"`
	StudentRA    string             `bson:"student_ra,omitempty" json:"student_ra,omitempty"`
	Section      string             `bson:"section,omitempty" json:"section,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
