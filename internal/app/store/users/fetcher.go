// internal/app/store/users/fetcher.go
package userstore

import (
	"context"

	"github.com/dalemusser/temahub/internal/app/system/auth"
	"github.com/dalemusser/temahub/internal/app/system/status"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Fetcher adapts the user store to the session middleware, resolving the
// session's user id into the identity handlers read from context.
type Fetcher struct {
	Store *Store
	Log   *zap.Logger
}

// FetchUser returns nil for malformed ids, unknown accounts, and disabled
// accounts, which the session layer treats as signed out.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}
	u, err := f.Store.GetByID(ctx, oid)
	if err != nil {
		if err != ErrNotFound && f.Log != nil {
			f.Log.Warn("session user lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
		return nil
	}
	if u.Status == status.Disabled {
		return nil
	}
	return &auth.SessionUser{
		ID:        u.ID.Hex(),
		Name:      u.FullName,
		LoginID:   u.LoginID,
		Role:      u.Role,
		StudentRA: u.StudentRA,
		Section:   u.Section,
	}
}
