// internal/app/features/reviews/handler.go
package reviews

import (
	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	policystore "github.com/dalemusser/temahub/internal/app/store/policy"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the staff review
// workflow. The policy store supplies the publication score threshold.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
	Policy *policystore.Store
}

func NewHandler(db *mongo.Database, policy *policystore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: errLog,
		Policy: policy,
	}
}
