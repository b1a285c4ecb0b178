package reservepolicy

import (
	"testing"
	"time"

	"github.com/dalemusser/temahub/internal/domain/models"
)

func coursePolicy(t *testing.T) models.CoursePolicy {
	t.Helper()
	cutoff, err := time.Parse(time.RFC3339, "2025-10-15T23:59:59Z")
	if err != nil {
		t.Fatalf("parse cutoff: %v", err)
	}
	return models.CoursePolicy{
		ReserveCutoff:    cutoff,
		MinMembersBefore: 5,
		MinMembersAfter:  3,
	}
}

func TestRequiredMembers_Boundary(t *testing.T) {
	p := coursePolicy(t)

	tests := []struct {
		name string
		now  string
		want int
	}{
		{"one second before cutoff", "2025-10-15T23:59:58Z", 5},
		{"exactly at cutoff (inclusive, strict rule)", "2025-10-15T23:59:59Z", 5},
		{"one second after cutoff", "2025-10-16T00:00:00Z", 3},
		{"well before", "2025-09-01T12:00:00Z", 5},
		{"well after", "2025-11-20T08:30:00Z", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now, err := time.Parse(time.RFC3339, tt.now)
			if err != nil {
				t.Fatalf("parse now: %v", err)
			}
			got := RequiredMembers(now, p)
			if got != tt.want {
				t.Errorf("RequiredMembers(%s) = %d, want %d", tt.now, got, tt.want)
			}
		})
	}
}

func TestEligible(t *testing.T) {
	p := coursePolicy(t)
	before, _ := time.Parse(time.RFC3339, "2025-10-15T23:59:58Z")
	after, _ := time.Parse(time.RFC3339, "2025-10-16T00:00:00Z")

	// Four members are not enough before the cutoff...
	ok, required := Eligible(before, 4, p)
	if ok {
		t.Error("4 members before cutoff should not be eligible")
	}
	if required != 5 {
		t.Errorf("required: got %d, want 5", required)
	}

	// ...but the same group passes once the cutoff is behind us.
	ok, required = Eligible(after, 4, p)
	if !ok {
		t.Error("4 members after cutoff should be eligible")
	}
	if required != 3 {
		t.Errorf("required: got %d, want 3", required)
	}
}
