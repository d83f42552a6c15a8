package mq

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/shared/event"
	"github.com/shandysiswandi/otpgate/internal/totp/usecase"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

const (
	defaultRetryBase = 100 * time.Millisecond
	maxRetries       = 3
)

type Messaging struct {
	client    messaging.Messaging
	ins       instrument.Instrumentation
	uid       uid.NumberID
	retryBase time.Duration
}

// NewMessaging builds the verification publisher. A non-positive retryBase
// falls back to 100ms.
func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation, id uid.NumberID, retryBase time.Duration) *Messaging {
	if retryBase <= 0 {
		retryBase = defaultRetryBase
	}
	return &Messaging{client: client, ins: ins, uid: id, retryBase: retryBase}
}

func (m *Messaging) PublishVerification(ctx context.Context, msg usecase.VerificationEvent) error {
	ctx, span := m.ins.Tracer("totp.outbound.mq").Start(ctx, "PublishVerification")
	defer span.End()

	cID := instrument.GetCorrelationID(ctx)
	body, err := json.Marshal(event.TOTPVerificationMessage{
		EventID:       m.uid.Generate(),
		Valid:         msg.Valid,
		Reason:        msg.Reason,
		Drift:         msg.Drift,
		CoercedSecret: msg.CoercedSecret,
		VerifiedAt:    msg.VerifiedAt.Unix(),
		CorrelationID: cID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	out := messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(msg.Reason),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}

	attempts := 0
	b := retry.WithMaxRetries(maxRetries, retry.NewExponential(m.retryBase))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		attempts++
		_, err := m.client.Publish(ctx, event.TOTPVerificationDestination, out)
		if err == nil || errors.Is(err, messaging.ErrClosed) || errors.Is(err, messaging.ErrDestinationRequired) {
			return err
		}
		return retry.RetryableError(err)
	})

	span.SetAttributes(attribute.Int("messaging.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
