package groupboard_test

import (
	"testing"

	"github.com/dalemusser/temahub/internal/app/store/queries/groupboard"
	"github.com/dalemusser/temahub/internal/testutil"
)

func TestList_AllSections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g1 := fixtures.CreateGroup(ctx, "MA6G1", "MA6")
	g2 := fixtures.CreateGroup(ctx, "MB6G1", "MB6")
	fixtures.CreateGroup(ctx, "MA6G2", "MA6")

	ana := fixtures.CreateStudent(ctx, "RA00000001", "Ana Silva", "MA6")
	bruno := fixtures.CreateStudent(ctx, "RA00000002", "Bruno Costa", "MA6")
	fixtures.AddMember(ctx, g1, ana)
	fixtures.AddMember(ctx, g1, bruno)

	th := fixtures.CreateTheme(ctx, "Green Hydrogen", 1)
	fixtures.ReserveTheme(ctx, th, g2.Code)

	items, err := groupboard.List(ctx, db, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(items))
	}

	// Ordered by section then code.
	wantCodes := []string{"MA6G1", "MA6G2", "MB6G1"}
	for i, want := range wantCodes {
		if items[i].Code != want {
			t.Errorf("row %d: expected code %s, got %s", i, want, items[i].Code)
		}
	}

	if items[0].MemberCount != 2 {
		t.Errorf("expected MA6G1 member count 2, got %d", items[0].MemberCount)
	}
	if items[1].MemberCount != 0 {
		t.Errorf("expected MA6G2 member count 0, got %d", items[1].MemberCount)
	}
	if items[2].ThemeTitle != "Green Hydrogen" {
		t.Errorf("expected MB6G1 to hold Green Hydrogen, got %q", items[2].ThemeTitle)
	}
	if items[0].ThemeTitle != "" {
		t.Errorf("expected MA6G1 to hold no theme, got %q", items[0].ThemeTitle)
	}
}

func TestList_SectionFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateGroup(ctx, "MA6G1", "MA6")
	fixtures.CreateGroup(ctx, "NA6G1", "NA6")

	items, err := groupboard.List(ctx, db, "NA6")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 || items[0].Code != "NA6G1" {
		t.Fatalf("expected only NA6G1, got %+v", items)
	}
}
