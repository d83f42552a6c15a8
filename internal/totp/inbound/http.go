package inbound

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/pkg/router"
	"github.com/shandysiswandi/otpgate/internal/totp/usecase"
)

type uc interface {
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)
	Generate(ctx context.Context, in usecase.GenerateInput) (*usecase.GenerateOutput, error)
}

// RegisterHTTPEndpoint mounts the validation endpoint and, when
// generatorEnabled, the code generator.
func RegisterHTTPEndpoint(r *router.Router, uc uc, generatorEnabled bool) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/validate-2fa", end.Validate)

	if generatorEnabled {
		r.GET("/api/generate-2fa-code/*secret", end.Generate)
	}
}
