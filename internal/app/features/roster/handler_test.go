package roster_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	"github.com/dalemusser/temahub/internal/app/features/roster"
	"github.com/dalemusser/temahub/internal/app/system/auth"
	"github.com/dalemusser/temahub/internal/domain/models"
	"github.com/dalemusser/temahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*roster.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	handler := roster.NewHandler(db, uierrors.NewErrorLogger(logger), logger)
	return handler, testutil.NewFixtures(t, db)
}

func adminUser() *auth.SessionUser {
	return &auth.SessionUser{
		ID:      primitive.NewObjectID().Hex(),
		Name:    "Test Admin",
		LoginID: "admin@test.com",
		Role:    "admin",
	}
}

func studentUser() *auth.SessionUser {
	return &auth.SessionUser{
		ID:        primitive.NewObjectID().Hex(),
		Name:      "Test Student",
		LoginID:   "student@test.com",
		Role:      "student",
		StudentRA: "RA00000009",
		Section:   "MA6",
	}
}

func postForm(target string, form url.Values, u *auth.SessionUser) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return auth.WithTestUser(req, u)
}

// call tolerates the template panic error pages hit when the template
// set is not initialized in tests.
func call(fn http.HandlerFunc, rec *httptest.ResponseRecorder, req *http.Request) {
	func() {
		defer func() { _ = recover() }()
		fn(rec, req)
	}()
}

func TestHandleImport_AddsAndUpdates(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Already on the roster under an older spelling.
	fixtures.CreateStudent(ctx, "RA00000001", "Ana Silva", "MA6")

	form := url.Values{
		"ra":      {"RA00000001", "RA00000002"},
		"name":    {"Ana de Souza Silva", "Bruno Costa"},
		"email":   {"ana@test.com", "bruno@test.com"},
		"section": {"MA6", "MA6"},
	}

	rec := httptest.NewRecorder()
	handler.HandleImport(rec, postForm("/roster/import", form, adminUser()))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/roster?added=1&updated=1" {
		t.Errorf("unexpected redirect %q", loc)
	}

	var ana models.Student
	if err := fixtures.DB().Collection("students").FindOne(ctx, bson.M{"ra": "RA00000001"}).Decode(&ana); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if ana.FullName != "Ana de Souza Silva" {
		t.Errorf("expected name updated in place, got %q", ana.FullName)
	}

	count, err := fixtures.DB().Collection("students").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 students, got %d", count)
	}
}

func TestHandleImport_SkipsInvalidRows(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	form := url.Values{
		"ra":      {"RA00000001", "not-an-ra", "RA00000003"},
		"name":    {"Ana Silva", "Bogus Row", ""},
		"email":   {"", "", ""},
		"section": {"MA6", "MA6", "MA6"},
	}

	rec := httptest.NewRecorder()
	handler.HandleImport(rec, postForm("/roster/import", form, adminUser()))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/roster?added=1&updated=0" {
		t.Errorf("unexpected redirect %q", loc)
	}

	count, err := fixtures.DB().Collection("students").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected only the valid row imported, got %d students", count)
	}
}

func TestHandleImport_StudentForbidden(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	form := url.Values{
		"ra":      {"RA00000001"},
		"name":    {"Ana Silva"},
		"email":   {""},
		"section": {"MA6"},
	}

	rec := httptest.NewRecorder()
	call(handler.HandleImport, rec, postForm("/roster/import", form, studentUser()))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}

	count, err := fixtures.DB().Collection("students").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no students imported, got %d", count)
	}
}

func TestHandleImport_MismatchedArraysRejected(t *testing.T) {
	handler, _ := newTestHandler(t)

	form := url.Values{
		"ra":      {"RA00000001", "RA00000002"},
		"name":    {"Ana Silva"},
		"email":   {"", ""},
		"section": {"MA6", "MA6"},
	}

	rec := httptest.NewRecorder()
	call(handler.HandleImport, rec, postForm("/roster/import", form, adminUser()))

	if rec.Code == http.StatusSeeOther {
		t.Fatal("expected mismatched preview data to be rejected, got redirect")
	}
}

func TestHandlePreview_RequiresFile(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest("POST", "/roster/preview", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=empty")
	req = auth.WithTestUser(req, adminUser())

	rec := httptest.NewRecorder()
	call(handler.HandlePreview, rec, req)

	if rec.Code == http.StatusOK || rec.Code == http.StatusSeeOther {
		t.Fatalf("expected a missing file to be rejected, got status %d", rec.Code)
	}
}
