package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/totp/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

type VerifyInput struct {
	Secret string `validate:"max=1024"`
	Code   string
}

type VerifyOutput struct {
	Valid   bool
	Reason  string
	Message string
	// NormalizedSecret is set only when Valid.
	NormalizedSecret string
	Drift            int
}

func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	res, err := s.totp.Verify(in.Secret, in.Code, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "failed to verify totp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	reason := res.Reason.String()
	if res.Secret.Coerced {
		slog.WarnContext(ctx, "secret is not base32, verifying against its base32 encoding")
	}
	slog.InfoContext(ctx, "totp code verified", "valid", res.Valid, "reason", reason, "drift", res.Drift)

	span.SetAttributes(
		attribute.String("totp.reason", reason),
		attribute.Bool("totp.coerced", res.Secret.Coerced),
	)
	if s.verifications != nil {
		s.verifications.Add(ctx, 1, metric.WithAttributes(
			attribute.String("reason", reason),
			attribute.Bool("coerced", res.Secret.Coerced),
		))
	}

	s.publishVerification(ctx, VerificationEvent{
		Valid:         res.Valid,
		Reason:        reason,
		Drift:         res.Drift,
		CoercedSecret: res.Secret.Coerced,
		VerifiedAt:    now,
	})

	out := &VerifyOutput{
		Valid:   res.Valid,
		Reason:  reason,
		Message: entity.VerificationMessage(res.Reason),
		Drift:   res.Drift,
	}
	if res.Valid {
		out.NormalizedSecret = res.Secret.Canonical
	}

	return out, nil
}
