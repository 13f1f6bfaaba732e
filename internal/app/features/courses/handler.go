// internal/app/features/courses/handler.go
package courses

import (
	uierrors "github.com/dalemusser/studyplanet/internal/app/features/errors"
	"github.com/dalemusser/studyplanet/internal/app/media"
	"github.com/dalemusser/studyplanet/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the /course endpoints on top of a Manager.
type Handler struct {
	Manager *Manager
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
	Audit   *auditlog.Logger // optional
}

// NewHandler constructs a courses Handler. It is called from BuildHandler
// once the database and the media ingestor are ready.
func NewHandler(db *mongo.Database, ing *media.Ingestor, folder string, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Manager: NewManager(db, ing, folder, logger),
		ErrLog:  errLog,
		Log:     logger,
	}
}
