// internal/app/features/groups/handler.go
package groups

import (
	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	policystore "github.com/dalemusser/temahub/internal/app/store/policy"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the groups feature.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
	Policy *policystore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, policy *policystore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: errLog,
		Policy: policy,
	}
}
