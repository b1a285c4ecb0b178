package themes_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	"github.com/dalemusser/temahub/internal/app/features/themes"
	membershipstore "github.com/dalemusser/temahub/internal/app/store/memberships"
	policystore "github.com/dalemusser/temahub/internal/app/store/policy"
	themestore "github.com/dalemusser/temahub/internal/app/store/themes"
	"github.com/dalemusser/temahub/internal/app/system/auth"
	"github.com/dalemusser/temahub/internal/app/system/reservation"
	"github.com/dalemusser/temahub/internal/domain/models"
	"github.com/dalemusser/temahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*themes.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)

	policy := policystore.New(db, models.CoursePolicy{
		ReserveCutoff:    time.Now().Add(30 * 24 * time.Hour).UTC(),
		MinMembersBefore: 2, // small minimum keeps fixtures manageable
		MinMembersAfter:  1,
		PublishMinScore:  models.DefaultPublishMinScore,
	})
	engine := reservation.New(themestore.New(db), membershipstore.New(db), policy, logger)

	handler := themes.NewHandler(db, engine, errLog, logger)
	return handler, testutil.NewFixtures(t, db)
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

func instructorUser() *auth.SessionUser {
	return &auth.SessionUser{
		ID:      primitive.NewObjectID().Hex(),
		Name:    "Test Instructor",
		LoginID: "instructor@test.com",
		Role:    "instructor",
	}
}

func postForm(target string, form url.Values, u *auth.SessionUser) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return auth.WithTestUser(req, u)
}

func TestHandleReserve_StudentForOwnGroup(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "MA6G1", "MA6")
	s1 := fixtures.CreateStudent(ctx, "RA00000001", "Ana Silva", "MA6")
	s2 := fixtures.CreateStudent(ctx, "RA00000002", "Bruno Costa", "MA6")
	fixtures.AddMember(ctx, g, s1)
	fixtures.AddMember(ctx, g, s2)
	fixtures.CreateTheme(ctx, "Food delivery platform", 1)

	form := url.Values{"title": {"Food delivery platform"}}
	req := postForm("/themes/reserve", form, studentUser(s1.RA, "MA6"))

	rec := httptest.NewRecorder()
	handler.HandleReserve(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	count, err := fixtures.DB().Collection("themes").CountDocuments(ctx, bson.M{
		"title":       "Food delivery platform",
		"status":      "reserved",
		"reserved_by": "MA6G1",
	})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected theme reserved by MA6G1, got %d matching docs", count)
	}
}

func TestHandleReserve_BelowMinimumRejected(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "MA6G1", "MA6")
	s1 := fixtures.CreateStudent(ctx, "RA00000001", "Ana Silva", "MA6")
	fixtures.AddMember(ctx, g, s1) // one member, minimum is two
	fixtures.CreateTheme(ctx, "Food delivery platform", 1)

	form := url.Values{"title": {"Food delivery platform"}}
	req := postForm("/themes/reserve", form, studentUser(s1.RA, "MA6"))

	rec := httptest.NewRecorder()
	func() {
		defer func() { recover() }() // error page renders a template
		handler.HandleReserve(rec, req)
	}()

	count, err := fixtures.DB().Collection("themes").CountDocuments(ctx, bson.M{"status": "reserved"})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Errorf("undersized group should not reserve, found %d reserved", count)
	}
}

func TestHandleReserve_StaffOnBehalf(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "MA6G1", "MA6")
	s1 := fixtures.CreateStudent(ctx, "RA00000001", "Ana Silva", "MA6")
	s2 := fixtures.CreateStudent(ctx, "RA00000002", "Bruno Costa", "MA6")
	fixtures.AddMember(ctx, g, s1)
	fixtures.AddMember(ctx, g, s2)
	fixtures.CreateTheme(ctx, "Library loan manager", 1)

	form := url.Values{
		"title": {"Library loan manager"},
		"group": {"ma6g1"}, // staff name the group; code is normalized
	}
	req := postForm("/themes/reserve", form, instructorUser())

	rec := httptest.NewRecorder()
	handler.HandleReserve(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	th, err := themestore.New(fixtures.DB()).GetByTitle(ctx, "Library loan manager")
	if err != nil {
		t.Fatalf("GetByTitle failed: %v", err)
	}
	if th.ReservedBy != "MA6G1" {
		t.Errorf("reserved_by: got %q, want MA6G1", th.ReservedBy)
	}
}

func TestHandleRelease_MemberReleasesOwnTheme(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "MA6G1", "MA6")
	s1 := fixtures.CreateStudent(ctx, "RA00000001", "Ana Silva", "MA6")
	fixtures.AddMember(ctx, g, s1)
	th := fixtures.CreateTheme(ctx, "Food delivery platform", 1)
	fixtures.ReserveTheme(ctx, th, g.Code)

	form := url.Values{"title": {th.Title}}
	req := postForm("/themes/release", form, studentUser(s1.RA, "MA6"))

	rec := httptest.NewRecorder()
	handler.HandleRelease(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	got, err := themestore.New(fixtures.DB()).GetByTitle(ctx, th.Title)
	if err != nil {
		t.Fatalf("GetByTitle failed: %v", err)
	}
	if got.Status != models.ThemeFree {
		t.Errorf("status: got %q, want free", got.Status)
	}
}

func TestHandleRelease_OtherGroupRejected(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	holder := fixtures.CreateGroup(ctx, "MA6G1", "MA6")
	other := fixtures.CreateGroup(ctx, "MA6G2", "MA6")
	s1 := fixtures.CreateStudent(ctx, "RA00000001", "Ana Silva", "MA6")
	fixtures.AddMember(ctx, other, s1)
	th := fixtures.CreateTheme(ctx, "Food delivery platform", 1)
	fixtures.ReserveTheme(ctx, th, holder.Code)

	form := url.Values{"title": {th.Title}}
	req := postForm("/themes/release", form, studentUser(s1.RA, "MA6"))

	rec := httptest.NewRecorder()
	func() {
		defer func() { recover() }()
		handler.HandleRelease(rec, req)
	}()

	got, err := themestore.New(fixtures.DB()).GetByTitle(ctx, th.Title)
	if err != nil {
		t.Fatalf("GetByTitle failed: %v", err)
	}
	if got.Status != models.ThemeReserved || got.ReservedBy != holder.Code {
		t.Errorf("reservation should survive a foreign release, got %q/%q", got.Status, got.ReservedBy)
	}
}

func TestHandleRelease_StaffForceReleases(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "MA6G1", "MA6")
	th := fixtures.CreateTheme(ctx, "Food delivery platform", 1)
	fixtures.ReserveTheme(ctx, th, g.Code)

	form := url.Values{"title": {th.Title}}
	req := postForm("/themes/release", form, instructorUser())

	rec := httptest.NewRecorder()
	handler.HandleRelease(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	got, err := themestore.New(fixtures.DB()).GetByTitle(ctx, th.Title)
	if err != nil {
		t.Fatalf("GetByTitle failed: %v", err)
	}
	if got.Status != models.ThemeFree {
		t.Errorf("status: got %q, want free", got.Status)
	}
}

func TestHandleImport_InsertsAndMerges(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	form := url.Values{"titles": {"Alpha project\nBeta project\nAlpha project\n"}}
	req := postForm("/themes/import", form, instructorUser())

	rec := httptest.NewRecorder()
	func() {
		defer func() { recover() }() // result page renders a template
		handler.HandleImport(rec, req)
	}()

	count, err := fixtures.DB().Collection("themes").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 themes after import, got %d", count)
	}
}

func TestHandleImport_StudentForbidden(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	form := url.Values{"titles": {"Alpha project"}}
	req := postForm("/themes/import", form, studentUser("RA00000001", "MA6"))

	rec := httptest.NewRecorder()
	func() {
		defer func() { recover() }()
		handler.HandleImport(rec, req)
	}()

	count, err := fixtures.DB().Collection("themes").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Errorf("student import should be rejected, found %d themes", count)
	}
}

func TestServeImportForm_Staff(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/themes/import", nil)
	req = auth.WithTestUser(req, instructorUser())

	rec := httptest.NewRecorder()
	func() {
		defer func() { recover() }() // form page renders a template
		handler.ServeImportForm(rec, req)
	}()

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}
