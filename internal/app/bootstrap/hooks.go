// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks wires the marketplace API into WAFFLE's lifecycle. cmd/studyplanet
// hands it to app.Run; cmd/createadmin reuses the individual stages.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "studyplanet",
	LoadConfig:     LoadConfig,
	ValidateConfig: ValidateConfig,
	ConnectDB:      ConnectDB,
	EnsureSchema:   EnsureSchema,
	Startup:        Startup,
	BuildHandler:   BuildHandler,
	Shutdown:       Shutdown,
}
