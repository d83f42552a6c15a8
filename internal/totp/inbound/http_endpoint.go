package inbound

import (
	"strings"

	"github.com/shandysiswandi/otpgate/internal/pkg/router"
	"github.com/shandysiswandi/otpgate/internal/totp/usecase"
)

// HTTPEndpoint exposes the TOTP validation and generation handlers.
type HTTPEndpoint struct {
	uc uc
}

// Validate checks a code against a secret.
// @Summary Validate a 2FA code
// @Description Normalizes the secret to Base32 and checks the code against the current time step with one step of skew. Invalid codes are reported with valid=false, not as an error.
// @Tags TOTP
// @Accept json
// @Produce json
// @Param request body ValidateRequest true "Secret and code"
// @Success 200 {object} ValidateResponse "Validation result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 413 {object} router.errorResponse "Request body too large"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/validate-2fa [post]
func (h *HTTPEndpoint) Validate(r *router.Request) (any, error) {
	var req ValidateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		Secret: req.Secret,
		Code:   req.Code,
	})
	if err != nil {
		return nil, err
	}

	return ValidateResponse{
		Valid:            resp.Valid,
		Message:          resp.Message,
		Reason:           resp.Reason,
		Drift:            resp.Drift,
		NormalizedSecret: resp.NormalizedSecret,
	}, nil
}

// Generate returns the current code for a secret.
// @Summary Generate the current 2FA code
// @Description Returns the code for the current time step. The secret is read from the URL-escaped path, or from the secret query parameter when the path is empty.
// @Tags TOTP
// @Produce json
// @Param secret path string true "Secret, URL-escaped"
// @Success 200 {object} GenerateResponse "Current code"
// @Failure 404 {object} router.errorResponse "Generator disabled"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/generate-2fa-code/{secret} [get]
func (h *HTTPEndpoint) Generate(r *router.Request) (any, error) {
	secret := strings.TrimPrefix(r.GetParam("secret"), "/")
	if secret == "" {
		secret = r.URL.Query().Get("secret")
	}

	resp, err := h.uc.Generate(r.Context(), usecase.GenerateInput{Secret: secret})
	if err != nil {
		return nil, err
	}

	return GenerateResponse{
		Code:             resp.Code,
		NormalizedSecret: resp.NormalizedSecret,
		Coerced:          resp.Coerced,
		ExpiresIn:        resp.ExpiresIn,
	}, nil
}
