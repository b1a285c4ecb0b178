// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/temahub/internal/app/system/mirror"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
// Extend this struct as your app evolves.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Storage holds submission artifacts (reports, slides, bundles).
	Storage storage.Store

	// Mirror pushes published artifacts to the course mirror.
	// Always non-nil; a blank mirror_base_url makes it a no-op.
	Mirror *mirror.Mirror
}
