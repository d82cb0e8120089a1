// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// NewHooks wires the app into WAFFLE's lifecycle. The services Startup
// builds are captured here and handed to BuildHandler and Shutdown, so each
// call returns an independent app.
func NewHooks() app.Hooks[AppConfig, DBDeps] {
	svc := &services{}
	return app.Hooks[AppConfig, DBDeps]{
		Name:           "eventdesk",
		LoadConfig:     LoadConfig,
		ValidateConfig: ValidateConfig,
		ConnectDB:      ConnectDB,
		EnsureSchema:   EnsureSchema,
		Startup:        svc.startup,
		BuildHandler:   svc.buildHandler,
		Shutdown:       svc.shutdown,
	}
}
