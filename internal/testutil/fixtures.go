package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/temahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateStudent inserts an active roster row.
func (f *Fixtures) CreateStudent(ctx context.Context, ra, fullName, section string) models.Student {
	f.t.Helper()

	now := time.Now().UTC()
	st := models.Student{
		ID:         primitive.NewObjectID(),
		RA:         ra,
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Section:    section,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("students").InsertOne(ctx, st); err != nil {
		f.t.Fatalf("failed to create test student: %v", err)
	}
	return st
}

// CreateGroup inserts a group with an explicit code, e.g. "MA6G1".
func (f *Fixtures) CreateGroup(ctx context.Context, code, section string) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Group{
		ID:        primitive.NewObjectID(),
		Code:      code,
		Section:   section,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return g
}

// AddMember joins a student to a group directly, bypassing store checks.
func (f *Fixtures) AddMember(ctx context.Context, g models.Group, st models.Student) models.GroupMembership {
	f.t.Helper()

	m := models.GroupMembership{
		ID:        primitive.NewObjectID(),
		GroupID:   g.ID,
		StudentID: st.ID,
		GroupCode: g.Code,
		Section:   g.Section,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("group_memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateTheme inserts a free theme.
func (f *Fixtures) CreateTheme(ctx context.Context, title string, ordinal int) models.Theme {
	f.t.Helper()

	now := time.Now().UTC()
	th := models.Theme{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		Ordinal:   ordinal,
		Status:    models.ThemeFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("themes").InsertOne(ctx, th); err != nil {
		f.t.Fatalf("failed to create test theme: %v", err)
	}
	return th
}

// ReserveTheme marks an already inserted theme as held by the group.
func (f *Fixtures) ReserveTheme(ctx context.Context, th models.Theme, groupCode string) {
	f.t.Helper()

	now := time.Now().UTC()
	_, err := f.db.Collection("themes").UpdateByID(ctx, th.ID, bson.M{
		"$set": bson.M{
			"status":      models.ThemeReserved,
			"reserved_by": groupCode,
			"reserved_at": now,
			"updated_at":  now,
		},
	})
	if err != nil {
		f.t.Fatalf("failed to reserve test theme: %v", err)
	}
}

// CreateUser inserts a login account with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, loginID, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		LoginID:    loginID,
		AuthMethod: "internal",
		Role:       role,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateSubmission inserts a submission for a group.
func (f *Fixtures) CreateSubmission(ctx context.Context, groupCode, themeTitle string, consent bool) models.Submission {
	f.t.Helper()

	sub := models.Submission{
		ID:          primitive.NewObjectID(),
		GroupCode:   groupCode,
		ThemeTitle:  themeTitle,
		ReportPath:  "reports/" + groupCode + ".pdf",
		Consent:     consent,
		SubmittedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("submissions").InsertOne(ctx, sub); err != nil {
		f.t.Fatalf("failed to create test submission: %v", err)
	}
	return sub
}

// CreatePolicy writes the course policy document tests read back.
func (f *Fixtures) CreatePolicy(ctx context.Context, p models.CoursePolicy) models.CoursePolicy {
	f.t.Helper()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Name == "" {
		p.Name = "default"
	}
	if _, err := f.db.Collection("course_policy").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test policy: %v", err)
	}
	return p
}
