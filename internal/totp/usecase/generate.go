package usecase

import (
	"context"
	"log/slog"
	"math"

	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

type GenerateInput struct {
	Secret string `validate:"max=1024"`
}

type GenerateOutput struct {
	Code             string
	NormalizedSecret string
	Coerced          bool
	// ExpiresIn is the number of seconds until the code rolls over.
	ExpiresIn int64
}

func (s *Usecase) Generate(ctx context.Context, in GenerateInput) (*GenerateOutput, error) {
	ctx, span := s.startSpan(ctx, "Generate")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	gen, err := s.totp.GenerateCode(in.Secret, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "failed to generate totp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	if gen.Secret.Coerced {
		slog.WarnContext(ctx, "secret is not base32, generating from its base32 encoding")
	}

	if s.generations != nil {
		s.generations.Add(ctx, 1, metric.WithAttributes(attribute.Bool("coerced", gen.Secret.Coerced)))
	}

	return &GenerateOutput{
		Code:             gen.Code,
		NormalizedSecret: gen.Secret.Canonical,
		Coerced:          gen.Secret.Coerced,
		ExpiresIn:        int64(math.Ceil(gen.ExpiresAt.Sub(now).Seconds())),
	}, nil
}
