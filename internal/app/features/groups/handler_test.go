package groups_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	"github.com/dalemusser/temahub/internal/app/features/groups"
	policystore "github.com/dalemusser/temahub/internal/app/store/policy"
	"github.com/dalemusser/temahub/internal/app/system/auth"
	"github.com/dalemusser/temahub/internal/domain/models"
	"github.com/dalemusser/temahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func defaultPolicy() models.CoursePolicy {
	return models.CoursePolicy{
		ReserveCutoff:    time.Now().Add(30 * 24 * time.Hour).UTC(),
		MinMembersBefore: models.DefaultMinMembersBefore,
		MinMembersAfter:  models.DefaultMinMembersAfter,
		PublishMinScore:  models.DefaultPublishMinScore,
	}
}

func newTestHandler(t *testing.T) (*groups.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)
	policy := policystore.New(db, defaultPolicy())
	handler := groups.NewHandler(db, errLog, policy, logger)
	fixtures := testutil.NewFixtures(t, db)
	return handler, fixtures
}

func staffUser() *auth.SessionUser {
	return &auth.SessionUser{
		ID:      primitive.NewObjectID().Hex(),
		Name:    "Test Instructor",
		LoginID: "instructor@test.com",
		Role:    "instructor",
	}
}

func studentUser(ra, section string) *auth.SessionUser {
	return &auth.SessionUser{
		ID:        primitive.NewObjectID().Hex(),
		Name:      "Test Student",
		LoginID:   "student@test.com",
		Role:      "student",
		StudentRA: ra,
		Section:   section,
	}
}

func postForm(target string, form url.Values, u *auth.SessionUser) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return auth.WithTestUser(req, u)
}

func TestHandleCreateGroup_Staff_Success(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	form := url.Values{"section": {"MA6"}}
	req := postForm("/groups", form, staffUser())

	rec := httptest.NewRecorder()
	handler.HandleCreateGroup(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	count, err := fixtures.DB().Collection("groups").CountDocuments(ctx, bson.M{"code": "MA6G1"})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected group MA6G1 to exist, got %d", count)
	}
}

func TestHandleCreateGroup_Student_Forbidden(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	form := url.Values{"section": {"MA6"}}
	req := postForm("/groups", form, studentUser("RA00000001", "MA6"))

	rec := httptest.NewRecorder()
	func() {
		defer func() { recover() }() // forbidden page renders a template
		handler.HandleCreateGroup(rec, req)
	}()

	count, err := fixtures.DB().Collection("groups").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Errorf("student should not be able to create groups, found %d", count)
	}
}

func TestHandleAddMember_Success(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "MA6G1", "MA6")
	st := fixtures.CreateStudent(ctx, "RA00000001", "Ana Silva", "MA6")

	form := url.Values{"ra": {st.RA}}
	req := postForm("/groups/"+g.ID.Hex()+"/members/add", form, staffUser())
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())

	rec := httptest.NewRecorder()
	handler.HandleAddMember(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	count, err := fixtures.DB().Collection("group_memberships").CountDocuments(ctx, bson.M{
		"group_id":   g.ID,
		"student_id": st.ID,
	})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 membership, got %d", count)
	}
}

func TestHandleAddMember_NormalizesRA(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "MA6G1", "MA6")
	fixtures.CreateStudent(ctx, "RA00000001", "Ana Silva", "MA6")

	form := url.Values{"ra": {"  ra00000001  "}}
	req := postForm("/groups/"+g.ID.Hex()+"/members/add", form, staffUser())
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())

	rec := httptest.NewRecorder()
	handler.HandleAddMember(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
}

func TestHandleAddMember_SectionMismatch(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "MA6G1", "MA6")
	st := fixtures.CreateStudent(ctx, "RA00000002", "Bruno Costa", "NB1")

	form := url.Values{"ra": {st.RA}}
	req := postForm("/groups/"+g.ID.Hex()+"/members/add", form, staffUser())
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())

	rec := httptest.NewRecorder()
	func() {
		defer func() { recover() }() // error page renders a template
		handler.HandleAddMember(rec, req)
	}()

	count, err := fixtures.DB().Collection("group_memberships").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Errorf("cross-section add should be rejected, found %d memberships", count)
	}
}

func TestHandleRemoveMember_Success(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "MA6G1", "MA6")
	st := fixtures.CreateStudent(ctx, "RA00000001", "Ana Silva", "MA6")
	fixtures.AddMember(ctx, g, st)

	form := url.Values{"student_id": {st.ID.Hex()}}
	req := postForm("/groups/"+g.ID.Hex()+"/members/remove", form, staffUser())
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())

	rec := httptest.NewRecorder()
	handler.HandleRemoveMember(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	count, err := fixtures.DB().Collection("group_memberships").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected membership removed, found %d", count)
	}
}

func TestServeGroupView_UnknownGroup(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/groups/"+primitive.NewObjectID().Hex()+"/view", nil)
	req = auth.WithTestUser(req, staffUser())
	req = testutil.WithChiURLParam(req, "id", primitive.NewObjectID().Hex())

	rec := httptest.NewRecorder()
	func() {
		defer func() { recover() }() // not-found page renders a template
		handler.ServeGroupView(rec, req)
	}()

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestHandleAddMember_MalformedGroupID(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	st := fixtures.CreateStudent(ctx, "RA00000001", "Ana Silva", "MA6")

	form := url.Values{"ra": {st.RA}}
	req := postForm("/groups/not-an-id/members/add", form, staffUser())
	req = testutil.WithChiURLParam(req, "id", "not-an-id")

	rec := httptest.NewRecorder()
	func() {
		defer func() { recover() }() // not-found page renders a template
		handler.HandleAddMember(rec, req)
	}()

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
