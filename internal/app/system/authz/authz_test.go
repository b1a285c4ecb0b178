package authz

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/temahub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	role, name, id, ok := UserCtx(req)
	if ok {
		t.Error("expected ok=false for unauthenticated request")
	}
	if role != "visitor" || name != "" || id != primitive.NilObjectID {
		t.Errorf("unexpected values: role=%q name=%q id=%v", role, name, id)
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "not-a-hex-id", Role: "admin"})

	_, _, _, ok := UserCtx(req)
	if ok {
		t.Error("expected ok=false for malformed user ID")
	}
}

func TestUserCtx_Valid(t *testing.T) {
	oid := primitive.NewObjectID()
	req := httptest.NewRequest("GET", "/", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   oid.Hex(),
		Name: "Prof. Silva",
		Role: "Instructor", // mixed case normalizes
	})

	role, name, id, ok := UserCtx(req)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if role != "instructor" {
		t.Errorf("role: got %q, want %q", role, "instructor")
	}
	if name != "Prof. Silva" {
		t.Errorf("name: got %q", name)
	}
	if id != oid {
		t.Errorf("id: got %v, want %v", id, oid)
	}
}

func TestRoleHelpers(t *testing.T) {
	adminReq := auth.WithTestUser(httptest.NewRequest("GET", "/", nil),
		&auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: "admin"})
	instrReq := auth.WithTestUser(httptest.NewRequest("GET", "/", nil),
		&auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: "instructor"})
	studentReq := auth.WithTestUser(httptest.NewRequest("GET", "/", nil),
		&auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: "student", StudentRA: "RA12345678", Section: "MA6"})

	if !IsAdmin(adminReq) || IsAdmin(instrReq) || IsAdmin(studentReq) {
		t.Error("IsAdmin misclassified")
	}
	if !IsInstructor(instrReq) || IsInstructor(adminReq) {
		t.Error("IsInstructor misclassified")
	}
	if !IsStudent(studentReq) || IsStudent(adminReq) {
		t.Error("IsStudent misclassified")
	}
	if !IsStaff(adminReq) || !IsStaff(instrReq) || IsStaff(studentReq) {
		t.Error("IsStaff misclassified")
	}
	if got := StudentRA(studentReq); got != "RA12345678" {
		t.Errorf("StudentRA: got %q", got)
	}
	if got := UserSection(studentReq); got != "MA6" {
		t.Errorf("UserSection: got %q", got)
	}
}

func TestHasAnyRole(t *testing.T) {
	instrReq := auth.WithTestUser(httptest.NewRequest("GET", "/", nil),
		&auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: "Instructor"})
	anonReq := httptest.NewRequest("GET", "/", nil)

	if !HasAnyRole(instrReq, RoleAdmin, RoleInstructor) {
		t.Error("expected instructor to match staff roles")
	}
	if HasAnyRole(instrReq, RoleStudent) {
		t.Error("instructor should not match student")
	}
	if HasAnyRole(anonReq, RoleAdmin, RoleInstructor, RoleStudent) {
		t.Error("anonymous request should match no role")
	}
	if role, ok := Role(instrReq); !ok || role != RoleInstructor {
		t.Errorf("Role: got %q ok=%v", role, ok)
	}
	if _, ok := Role(anonReq); ok {
		t.Error("Role should report no user for anonymous request")
	}
}
