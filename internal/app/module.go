package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/otpgate/internal/totp"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.totp.enabled") {
		if err := totp.New(totp.Dependency{
			Goroutine:  a.goroutine,
			Router:     a.router,
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			Clock:      a.clock,
			Totp:       a.totp,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module totp", "error", err)
			os.Exit(1)
		}
	}
}
