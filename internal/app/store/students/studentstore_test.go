package studentstore_test

import (
	"testing"

	studentstore "github.com/dalemusser/temahub/internal/app/store/students"
	"github.com/dalemusser/temahub/internal/testutil"
)

func TestStore_UpsertByRA(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.UpsertByRA(ctx, "RA00000001", "Ana Souza", "ana@test.com", "MA6")
	if err != nil {
		t.Fatalf("UpsertByRA failed: %v", err)
	}
	if !created {
		t.Error("expected first upsert to create the student")
	}

	st, err := store.GetByRA(ctx, "RA00000001")
	if err != nil {
		t.Fatalf("GetByRA failed: %v", err)
	}
	if st.FullName != "Ana Souza" {
		t.Errorf("full name: got %q", st.FullName)
	}
	if st.FullNameCI == "" {
		t.Error("expected FullNameCI to be set")
	}
	if !st.Active {
		t.Error("expected new student to be active")
	}

	// Re-import with a corrected name and different section updates in place.
	created, err = store.UpsertByRA(ctx, "RA00000001", "Ana de Souza", "ana@test.com", "MB6")
	if err != nil {
		t.Fatalf("second UpsertByRA failed: %v", err)
	}
	if created {
		t.Error("expected second upsert to update in place")
	}
	st2, err := store.GetByRA(ctx, "RA00000001")
	if err != nil {
		t.Fatalf("GetByRA failed: %v", err)
	}
	if st2.ID != st.ID {
		t.Error("upsert created a second document for the same RA")
	}
	if st2.FullName != "Ana de Souza" || st2.Section != "MB6" {
		t.Errorf("update not applied: name=%q section=%q", st2.FullName, st2.Section)
	}
}

func TestStore_DeactivateAndReactivate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.UpsertByRA(ctx, "RA00000001", "Ana Souza", "", "MA6"); err != nil {
		t.Fatalf("UpsertByRA failed: %v", err)
	}
	if err := store.Deactivate(ctx, "RA00000001"); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	st, err := store.GetByRA(ctx, "RA00000001")
	if err != nil {
		t.Fatalf("GetByRA failed: %v", err)
	}
	if st.Active {
		t.Error("expected student to be inactive")
	}

	// A fresh roster import brings them back.
	if _, err := store.UpsertByRA(ctx, "RA00000001", "Ana Souza", "", "MA6"); err != nil {
		t.Fatalf("re-import failed: %v", err)
	}
	st, err = store.GetByRA(ctx, "RA00000001")
	if err != nil {
		t.Fatalf("GetByRA failed: %v", err)
	}
	if !st.Active {
		t.Error("expected re-imported student to be active again")
	}

	if err := store.Deactivate(ctx, "RA99999999"); err != studentstore.ErrNotFound {
		t.Errorf("expected ErrNotFound for unknown RA, got %v", err)
	}
}

func TestStore_ListBySection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seed := []struct{ ra, name, section string }{
		{"RA00000001", "Carla Nunes", "MA6"},
		{"RA00000002", "Bruno Lima", "MA6"},
		{"RA00000003", "Diego Alves", "NA6"},
	}
	for _, s := range seed {
		if _, err := store.UpsertByRA(ctx, s.ra, s.name, "", s.section); err != nil {
			t.Fatalf("UpsertByRA failed: %v", err)
		}
	}
	if err := store.Deactivate(ctx, "RA00000002"); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	students, err := store.ListBySection(ctx, "MA6")
	if err != nil {
		t.Fatalf("ListBySection failed: %v", err)
	}
	if len(students) != 1 {
		t.Fatalf("expected 1 active student in MA6, got %d", len(students))
	}
	if students[0].FullName != "Carla Nunes" {
		t.Errorf("unexpected student: %q", students[0].FullName)
	}

	counts, err := store.CountBySection(ctx)
	if err != nil {
		t.Fatalf("CountBySection failed: %v", err)
	}
	if counts["MA6"] != 1 || counts["NA6"] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}
