package userstore_test

import (
	"testing"

	userstore "github.com/dalemusser/temahub/internal/app/store/users"
	"github.com/dalemusser/temahub/internal/domain/models"
	"github.com/dalemusser/temahub/internal/testutil"
)

func TestStore_CreateAndAuthenticate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := &models.User{
		FullName:   "Prof. Silva",
		LoginID:    "Silva@Test.com",
		AuthMethod: "internal",
		Role:       "Instructor",
	}
	if err := store.Create(ctx, u, "s3cret-pass"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if u.LoginID != "silva@test.com" {
		t.Errorf("login id not normalized: %q", u.LoginID)
	}
	if u.Role != "instructor" {
		t.Errorf("role not normalized: %q", u.Role)
	}
	if len(u.PasswordHash) == 0 {
		t.Error("expected password hash to be set")
	}

	got, err := store.Authenticate(ctx, "SILVA@test.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != u.ID {
		t.Error("Authenticate returned a different user")
	}

	if _, err := store.Authenticate(ctx, "silva@test.com", "wrong"); err != userstore.ErrBadCredentials {
		t.Errorf("expected ErrBadCredentials for wrong password, got %v", err)
	}
	if _, err := store.Authenticate(ctx, "nobody@test.com", "s3cret-pass"); err != userstore.ErrBadCredentials {
		t.Errorf("expected ErrBadCredentials for unknown login, got %v", err)
	}
}

func TestStore_Create_DuplicateLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := &models.User{FullName: "A", LoginID: "dup@test.com", Role: "admin"}
	if err := store.Create(ctx, u, "pw-one-two"); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	dup := &models.User{FullName: "B", LoginID: "DUP@test.com", Role: "admin"}
	if err := store.Create(ctx, dup, "pw-three-four"); err != userstore.ErrDuplicateLogin {
		t.Errorf("expected ErrDuplicateLogin, got %v", err)
	}
}

func TestStore_Authenticate_GoogleOnlyAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := &models.User{
		FullName:   "G User",
		LoginID:    "guser@test.com",
		AuthMethod: "google",
		Role:       "student",
	}
	if err := store.Create(ctx, u, ""); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// No hash stored, so password login must fail closed.
	if _, err := store.Authenticate(ctx, "guser@test.com", "anything"); err != userstore.ErrBadCredentials {
		t.Errorf("expected ErrBadCredentials for google-only account, got %v", err)
	}
}

func TestFetcher_FetchUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := &models.User{
		FullName:  "Ana Souza",
		LoginID:   "ana@test.com",
		Role:      "student",
		StudentRA: "RA00000001",
		Section:   "MA6",
	}
	if err := store.Create(ctx, u, "passw0rd!!"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	f := &userstore.Fetcher{Store: store}

	su := f.FetchUser(ctx, u.ID.Hex())
	if su == nil {
		t.Fatal("expected a session user")
	}
	if su.Role != "student" || su.StudentRA != "RA00000001" || su.Section != "MA6" {
		t.Errorf("session user fields wrong: %+v", su)
	}

	if f.FetchUser(ctx, "not-a-hex-id") != nil {
		t.Error("malformed id should resolve to nil")
	}
}
