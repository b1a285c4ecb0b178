// internal/app/features/submissions/handler.go
package submissions

import (
	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	"github.com/dalemusser/temahub/internal/app/system/mirror"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the submission ledger:
// the Mongo database, file storage for the uploaded artifacts, and the
// best-effort mirror that copies accepted files to a secondary endpoint.
type Handler struct {
	DB      *mongo.Database
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
	Storage storage.Store
	Mirror  *mirror.Mirror
}

func NewHandler(db *mongo.Database, store storage.Store, mir *mirror.Mirror, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Log:     logger,
		ErrLog:  errLog,
		Storage: store,
		Mirror:  mir,
	}
}
