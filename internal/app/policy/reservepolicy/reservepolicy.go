// internal/app/policy/reservepolicy.go
package reservepolicy

import (
	"time"

	"github.com/dalemusser/temahub/internal/domain/models"
)

// RequiredMembers returns the minimum group size required to reserve a
// theme at the given instant. The cutoff instant itself still belongs to
// the strict window: the relaxed minimum applies only strictly after the
// cutoff.
func RequiredMembers(now time.Time, p models.CoursePolicy) int {
	if !now.After(p.ReserveCutoff) {
		return p.MinMembersBefore
	}
	return p.MinMembersAfter
}

// Eligible reports whether a group with the given member count may reserve
// at the given instant, and the count that was required.
func Eligible(now time.Time, memberCount int, p models.CoursePolicy) (ok bool, required int) {
	required = RequiredMembers(now, p)
	return memberCount >= required, required
}
