package policystore_test

import (
	"testing"
	"time"

	policystore "github.com/dalemusser/temahub/internal/app/store/policy"
	"github.com/dalemusser/temahub/internal/domain/models"
	"github.com/dalemusser/temahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func defaults() models.CoursePolicy {
	return models.CoursePolicy{
		Name:             "default",
		ReserveCutoff:    time.Date(2026, 4, 10, 23, 59, 59, 0, time.UTC),
		MinMembersBefore: models.DefaultMinMembersBefore,
		MinMembersAfter:  models.DefaultMinMembersAfter,
		PublishMinScore:  models.DefaultPublishMinScore,
	}
}

func TestStore_Get_ReturnsDefaultsWhenUnset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := policystore.New(db, defaults())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p.MinMembersBefore != models.DefaultMinMembersBefore {
		t.Errorf("MinMembersBefore: got %d, want %d", p.MinMembersBefore, models.DefaultMinMembersBefore)
	}
	if p.MinMembersAfter != models.DefaultMinMembersAfter {
		t.Errorf("MinMembersAfter: got %d, want %d", p.MinMembersAfter, models.DefaultMinMembersAfter)
	}
}

func TestStore_SaveThenGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := policystore.New(db, defaults())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := defaults()
	p.MinMembersBefore = 6
	p.EnforceSingleMembership = true
	if err := store.Save(ctx, p, "Test Admin"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.MinMembersBefore != 6 {
		t.Errorf("MinMembersBefore: got %d, want 6", got.MinMembersBefore)
	}
	if !got.EnforceSingleMembership {
		t.Error("expected EnforceSingleMembership to be true")
	}
	if got.UpdatedByName != "Test Admin" {
		t.Errorf("UpdatedByName: got %q, want %q", got.UpdatedByName, "Test Admin")
	}
}

func TestStore_Save_IsUpsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := policystore.New(db, defaults())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := defaults()
	if err := store.Save(ctx, p, "a"); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	p.MinMembersAfter = 2
	if err := store.Save(ctx, p, "b"); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	n, err := db.Collection("course_policy").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected a single policy document, got %d", n)
	}

	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.MinMembersAfter != 2 {
		t.Errorf("MinMembersAfter: got %d, want 2", got.MinMembersAfter)
	}
}
