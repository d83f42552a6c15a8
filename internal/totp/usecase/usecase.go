package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/otp"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// VerificationEvent is what gets published after every verification.
type VerificationEvent struct {
	Valid         bool
	Reason        string
	Drift         int
	CoercedSecret bool
	VerifiedAt    time.Time
}

type repoMessaging interface {
	PublishVerification(ctx context.Context, msg VerificationEvent) error
}

type Usecase struct {
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	totp          otp.OTP
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager

	verifications metric.Int64Counter
	generations   metric.Int64Counter
}

type Dependency struct {
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	Totp          otp.OTP
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	meter := dep.Instrument.Meter("totp.usecase")

	verifications, err := meter.Int64Counter("totp.verifications",
		metric.WithDescription("Number of TOTP verifications by reason"))
	if err != nil {
		slog.Error("failed to create totp verification counter", "error", err)
	}

	generations, err := meter.Int64Counter("totp.generations",
		metric.WithDescription("Number of TOTP codes generated"))
	if err != nil {
		slog.Error("failed to create totp generation counter", "error", err)
	}

	return &Usecase{
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		cfg:           dep.Config,
		totp:          dep.Totp,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
		verifications: verifications,
		generations:   generations,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("totp.usecase").Start(ctx, name)
}

// publishVerification hands the event to the goroutine manager so the caller
// never waits on the broker. Failures are logged and otherwise ignored.
func (s *Usecase) publishVerification(ctx context.Context, ev VerificationEvent) {
	if s.repoMessaging == nil || !s.cfg.GetBool("modules.totp.events.enabled") {
		return
	}

	err := s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishVerification(ctx, ev); err != nil {
			slog.ErrorContext(ctx, "failed to publish totp verification event", "reason", ev.Reason, "error", err)
		}
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "totp verification event dropped", "reason", ev.Reason, "error", err)
	}
}
