// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/studyplanet/internal/app/media"
	"github.com/dalemusser/studyplanet/internal/app/payments"
	"github.com/dalemusser/studyplanet/internal/app/system/mailer"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// Services is allocated in ConnectDB and filled by Startup; lifecycle hooks
// receive DBDeps by value, so the provider clients travel behind a pointer.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Services      *Services
}

// Services are the provider clients built once at startup and shared
// read-only by every request.
type Services struct {
	Media    *media.Ingestor
	Payments payments.Adapter
	Mailer   mailer.Sender

	closers []func() error
}
