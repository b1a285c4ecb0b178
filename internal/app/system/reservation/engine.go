// internal/app/system/reservation/engine.go
//
// Package reservation is the single entry point for the free⇄reserved
// theme transitions. Handlers never touch theme status directly; they go
// through Engine, which layers the membership policy and the
// one-theme-per-group rule on top of the store's conditional update.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/temahub/internal/app/policy/reservepolicy"
	membershipstore "github.com/dalemusser/temahub/internal/app/store/memberships"
	policystore "github.com/dalemusser/temahub/internal/app/store/policy"
	themestore "github.com/dalemusser/temahub/internal/app/store/themes"
	"github.com/dalemusser/temahub/internal/app/system/txn"
	"github.com/dalemusser/temahub/internal/domain/models"
	"go.uber.org/zap"
)

var (
	// ErrThemeNotFound means the title does not exist in the catalog.
	ErrThemeNotFound = themestore.ErrNotFound

	// ErrThemeAlreadyReserved means another group holds the theme.
	ErrThemeAlreadyReserved = themestore.ErrAlreadyReserved

	// ErrThemeNotReserved means a release targeted a free theme, or one
	// the releasing group does not hold.
	ErrThemeNotReserved = themestore.ErrNotReserved

	// ErrGroupHasTheme means the group already holds a reservation and
	// must release it before taking another.
	ErrGroupHasTheme = errors.New("group already holds a reserved theme")
)

// InsufficientMembersError reports a reservation rejected by the
// membership policy, carrying the numbers the page shows the student.
type InsufficientMembersError struct {
	Required int
	Have     int
}

func (e *InsufficientMembersError) Error() string {
	return fmt.Sprintf("group has %d member(s), needs %d to reserve a theme", e.Have, e.Required)
}

// Engine coordinates policy, membership counts, and the theme store.
// Now is injectable so tests can pin the clock around the cutoff.
type Engine struct {
	Themes      *themestore.Store
	Memberships *membershipstore.Store
	Policy      *policystore.Store
	Log         *zap.Logger
	Now         func() time.Time
}

func New(themes *themestore.Store, memberships *membershipstore.Store, policy *policystore.Store, log *zap.Logger) *Engine {
	return &Engine{
		Themes:      themes,
		Memberships: memberships,
		Policy:      policy,
		Log:         log,
		Now:         time.Now,
	}
}

// Reserve attempts to take the titled theme for the group.
//
// The policy check reads the live course policy and the current member
// count; passing it does not hold a lock, so the store's conditional
// update remains the authority on exclusivity. Transient Mongo errors are
// retried; policy rejections and lost races are returned as-is.
func (e *Engine) Reserve(ctx context.Context, title, groupCode string) (*models.Theme, error) {
	p, err := e.Policy.Get(ctx)
	if err != nil {
		return nil, err
	}

	count, err := e.Memberships.CountByGroupCode(ctx, groupCode)
	if err != nil {
		return nil, err
	}
	now := e.Now().UTC()
	if ok, required := reservepolicy.Eligible(now, int(count), p); !ok {
		return nil, &InsufficientMembersError{Required: required, Have: int(count)}
	}

	// One reservation per group.
	if _, err := e.Themes.ReservedByGroup(ctx, groupCode); err == nil {
		return nil, ErrGroupHasTheme
	} else if err != themestore.ErrNotFound {
		return nil, err
	}

	var reserved *models.Theme
	err = txn.WithRetry(ctx, func(ctx context.Context) error {
		th, err := e.Themes.Reserve(ctx, title, groupCode)
		if err != nil {
			return err
		}
		reserved = th
		return nil
	})
	if err != nil {
		if errors.Is(err, txn.ErrExhausted) && e.Log != nil {
			e.Log.Error("theme reserve retries exhausted",
				zap.String("title", title),
				zap.String("group", groupCode),
				zap.Error(err))
		}
		return nil, err
	}

	if e.Log != nil {
		e.Log.Info("theme reserved",
			zap.String("title", title),
			zap.String("group", groupCode),
			zap.Int64("members", count),
			zap.Int("required", reservepolicy.RequiredMembers(now, p)))
	}
	return reserved, nil
}

// Release frees the group's reservation of the titled theme. releasedBy
// is recorded on the theme for the audit trail.
func (e *Engine) Release(ctx context.Context, title, groupCode, releasedBy string) (*models.Theme, error) {
	var released *models.Theme
	err := txn.WithRetry(ctx, func(ctx context.Context) error {
		th, err := e.Themes.ReleaseByGroup(ctx, title, groupCode, releasedBy)
		if err != nil {
			return err
		}
		released = th
		return nil
	})
	if err != nil {
		return nil, err
	}

	if e.Log != nil {
		e.Log.Info("theme released",
			zap.String("title", title),
			zap.String("group", groupCode),
			zap.String("by", releasedBy))
	}
	return released, nil
}

// ForceRelease frees a theme no matter which group holds it. Reserved for
// staff tooling.
func (e *Engine) ForceRelease(ctx context.Context, title, releasedBy string) (*models.Theme, error) {
	th, err := e.Themes.ForceRelease(ctx, title, releasedBy)
	if err != nil {
		return nil, err
	}
	if e.Log != nil {
		e.Log.Warn("theme force-released",
			zap.String("title", title),
			zap.String("by", releasedBy))
	}
	return th, nil
}
