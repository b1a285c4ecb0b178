package reservation_test

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	membershipstore "github.com/dalemusser/temahub/internal/app/store/memberships"
	policystore "github.com/dalemusser/temahub/internal/app/store/policy"
	themestore "github.com/dalemusser/temahub/internal/app/store/themes"
	"github.com/dalemusser/temahub/internal/app/system/reservation"
	"github.com/dalemusser/temahub/internal/domain/models"
	"github.com/dalemusser/temahub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var cutoff = time.Date(2026, 4, 10, 23, 59, 59, 0, time.UTC)

func newEngine(db *mongo.Database, now time.Time) *reservation.Engine {
	defaults := models.CoursePolicy{
		Name:             "default",
		ReserveCutoff:    cutoff,
		MinMembersBefore: 5,
		MinMembersAfter:  3,
	}
	e := reservation.New(
		themestore.New(db),
		membershipstore.New(db),
		policystore.New(db, defaults),
		zap.NewNop(),
	)
	e.Now = func() time.Time { return now }
	return e
}

var raSeq atomic.Int64

// seedGroup creates a group with n members and returns its code.
func seedGroup(t *testing.T, f *testutil.Fixtures, code string, n int) string {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, code, "MA6")
	for i := 0; i < n; i++ {
		ra := fmt.Sprintf("RA%08d", raSeq.Add(1))
		st := f.CreateStudent(ctx, ra, fmt.Sprintf("Student %s %d", code, i), "MA6")
		f.AddMember(ctx, g, st)
	}
	return g.Code
}

func TestEngine_Reserve_PolicyBeforeCutoff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateTheme(ctx, "Green Hydrogen", 1)
	code := seedGroup(t, fixtures, "MA6G1", 4)

	// One second before the cutoff the strict minimum of 5 applies.
	e := newEngine(db, cutoff.Add(-time.Second))
	_, err := e.Reserve(ctx, "Green Hydrogen", code)

	var insufficient *reservation.InsufficientMembersError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientMembersError, got %v", err)
	}
	if insufficient.Required != 5 || insufficient.Have != 4 {
		t.Errorf("got required=%d have=%d, want 5 and 4", insufficient.Required, insufficient.Have)
	}
}

func TestEngine_Reserve_CutoffBoundary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateTheme(ctx, "Green Hydrogen", 1)
	fixtures.CreateTheme(ctx, "Carbon Markets", 2)
	code := seedGroup(t, fixtures, "MA6G1", 4)

	// Exactly at the cutoff instant the strict rule still applies.
	e := newEngine(db, cutoff)
	if _, err := e.Reserve(ctx, "Green Hydrogen", code); err == nil {
		t.Fatal("expected rejection at the cutoff instant")
	}

	// One second past the cutoff the relaxed minimum of 3 lets 4 through.
	e = newEngine(db, cutoff.Add(time.Second))
	if _, err := e.Reserve(ctx, "Green Hydrogen", code); err != nil {
		t.Fatalf("expected success after cutoff, got %v", err)
	}
}

func TestEngine_Reserve_MutualExclusion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateTheme(ctx, "Green Hydrogen", 1)

	const n = 6
	codes := make([]string, n)
	for i := 0; i < n; i++ {
		codes[i] = seedGroup(t, fixtures, fmt.Sprintf("MA6G%d", i+1), 5)
	}

	e := newEngine(db, cutoff.Add(-time.Hour))
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.Reserve(ctx, "Green Hydrogen", codes[i])
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, reservation.ErrThemeAlreadyReserved):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly one group to win, got %d", wins)
	}
}

func TestEngine_Reserve_OneThemePerGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateTheme(ctx, "Green Hydrogen", 1)
	fixtures.CreateTheme(ctx, "Carbon Markets", 2)
	code := seedGroup(t, fixtures, "MA6G1", 5)

	e := newEngine(db, cutoff.Add(-time.Hour))
	if _, err := e.Reserve(ctx, "Green Hydrogen", code); err != nil {
		t.Fatalf("first Reserve failed: %v", err)
	}

	_, err := e.Reserve(ctx, "Carbon Markets", code)
	if !errors.Is(err, reservation.ErrGroupHasTheme) {
		t.Errorf("expected ErrGroupHasTheme, got %v", err)
	}
}

func TestEngine_ReserveReleaseRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateTheme(ctx, "Green Hydrogen", 1)
	g1 := seedGroup(t, fixtures, "MA6G1", 5)
	g2 := seedGroup(t, fixtures, "MA6G2", 5)

	e := newEngine(db, cutoff.Add(-time.Hour))
	if _, err := e.Reserve(ctx, "Green Hydrogen", g1); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}

	// The other group cannot release a theme it does not hold.
	if _, err := e.Release(ctx, "Green Hydrogen", g2, "intruder"); !errors.Is(err, reservation.ErrThemeNotReserved) {
		t.Errorf("expected ErrThemeNotReserved, got %v", err)
	}

	th, err := e.Release(ctx, "Green Hydrogen", g1, "Ana Souza")
	if err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if th.Status != models.ThemeFree {
		t.Errorf("status after release: got %q, want free", th.Status)
	}

	// Freed theme is immediately reservable by the other group.
	if _, err := e.Reserve(ctx, "Green Hydrogen", g2); err != nil {
		t.Errorf("re-reserve after release failed: %v", err)
	}
}

func TestEngine_ForceRelease(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	th := fixtures.CreateTheme(ctx, "Green Hydrogen", 1)
	fixtures.ReserveTheme(ctx, th, "MA6G1")

	e := newEngine(db, cutoff)
	got, err := e.ForceRelease(ctx, "Green Hydrogen", "Prof. Silva")
	if err != nil {
		t.Fatalf("ForceRelease failed: %v", err)
	}
	if got.Status != models.ThemeFree {
		t.Errorf("status: got %q, want free", got.Status)
	}
	if got.ReleasedBy != "Prof. Silva" {
		t.Errorf("released_by: got %q", got.ReleasedBy)
	}
}
