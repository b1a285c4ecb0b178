// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/temahub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a
// found flag. If no user is present in context or the user ID is malformed,
// it returns "visitor", "", NilObjectID, false, so ok=true always means a
// valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	return HasAnyRole(r, RoleAdmin)
}

// IsInstructor reports whether the current request's user is an instructor.
func IsInstructor(r *http.Request) bool {
	return HasAnyRole(r, RoleInstructor)
}

// IsStudent reports whether the current request's user is a student.
func IsStudent(r *http.Request) bool {
	return HasAnyRole(r, RoleStudent)
}

// IsStaff reports whether the user may perform administrative actions:
// releasing any theme, importing catalogs and rosters, publishing
// submissions, editing the course policy.
func IsStaff(r *http.Request) bool {
	return HasAnyRole(r, RoleAdmin, RoleInstructor)
}

// StudentRA returns the roster RA for student accounts, or "".
func StudentRA(r *http.Request) string {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return ""
	}
	return user.StudentRA
}

// UserSection returns the student's section, or "".
func UserSection(r *http.Request) string {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return ""
	}
	return user.Section
}
