package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/otp"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"github.com/shandysiswandi/otpgate/internal/totp/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "JBSWY3DPEHPK3PXP"

var testNow = time.Unix(1700000000, 0)

type fakeMessaging struct {
	mu     sync.Mutex
	events []VerificationEvent
	err    error
}

func (f *fakeMessaging) PublishVerification(_ context.Context, msg VerificationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, msg)
	return f.err
}

func (f *fakeMessaging) published() []VerificationEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]VerificationEvent(nil), f.events...)
}

type failingOTP struct{}

func (failingOTP) GenerateCode(string, time.Time) (otp.Generated, error) {
	return otp.Generated{}, errors.New("engine broken")
}

func (failingOTP) Verify(string, string, time.Time) (otp.Result, error) {
	return otp.Result{}, errors.New("engine broken")
}

type fixture struct {
	uc    *Usecase
	repo  *fakeMessaging
	gm    *goroutine.Manager
	clock *clock.Fixed
}

func newFixture(t *testing.T, eventsEnabled bool, engine otp.OTP) *fixture {
	t.Helper()

	yaml := "modules:\n  totp:\n    events:\n      enabled: false\n"
	if eventsEnabled {
		yaml = "modules:\n  totp:\n    events:\n      enabled: true\n"
	}
	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml), nil)
	require.NoError(t, err)

	val, err := validator.NewV10Validator()
	require.NoError(t, err)

	if engine == nil {
		engine, err = otp.NewTOTP(otp.DefaultConfig())
		require.NoError(t, err)
	}

	f := &fixture{
		repo:  &fakeMessaging{},
		gm:    goroutine.NewManager(4),
		clock: clock.NewFixed(testNow),
	}
	f.uc = New(Dependency{
		RepoMessaging: f.repo,
		Validator:     val,
		Config:        cfg,
		Totp:          engine,
		Clock:         f.clock,
		Instrument:    instrument.NewNoop(),
		Goroutine:     f.gm,
	})
	return f
}

func TestUsecase_Verify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      VerifyInput
		want    *VerifyOutput
		coerced bool
	}{
		{
			name: "current step",
			in:   VerifyInput{Secret: testSecret, Code: "324550"},
			want: &VerifyOutput{Valid: true, Reason: "MATCH", Message: entity.MessageValid, NormalizedSecret: testSecret},
		},
		{
			name: "lowercase spaced secret is canonicalized",
			in:   VerifyInput{Secret: " jbsw y3dp ehpk 3pxp ", Code: "324550"},
			want: &VerifyOutput{Valid: true, Reason: "MATCH", Message: entity.MessageValid, NormalizedSecret: testSecret},
		},
		{
			name: "previous step",
			in:   VerifyInput{Secret: testSecret, Code: "822542"},
			want: &VerifyOutput{Valid: true, Reason: "MATCH", Message: entity.MessageValid, NormalizedSecret: testSecret, Drift: -1},
		},
		{
			name: "next step",
			in:   VerifyInput{Secret: testSecret, Code: "367665"},
			want: &VerifyOutput{Valid: true, Reason: "MATCH", Message: entity.MessageValid, NormalizedSecret: testSecret, Drift: 1},
		},
		{
			name: "outside window",
			in:   VerifyInput{Secret: testSecret, Code: "968785"},
			want: &VerifyOutput{Valid: false, Reason: "MISMATCH", Message: entity.MessageInvalid},
		},
		{
			name: "letters in code",
			in:   VerifyInput{Secret: testSecret, Code: "12a45"},
			want: &VerifyOutput{Valid: false, Reason: "MALFORMED_INPUT", Message: entity.MessageMalformed},
		},
		{
			name: "empty code",
			in:   VerifyInput{Secret: testSecret},
			want: &VerifyOutput{Valid: false, Reason: "MALFORMED_INPUT", Message: entity.MessageMalformed},
		},
		{
			name:    "non base32 secret",
			in:      VerifyInput{Secret: "my secret!", Code: "000000"},
			want:    &VerifyOutput{Valid: false, Reason: "MISMATCH", Message: entity.MessageInvalid},
			coerced: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, true, nil)
			got, err := f.uc.Verify(context.Background(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			require.NoError(t, f.gm.Wait())
			events := f.repo.published()
			require.Len(t, events, 1)
			assert.Equal(t, VerificationEvent{
				Valid:         tt.want.Valid,
				Reason:        tt.want.Reason,
				Drift:         tt.want.Drift,
				CoercedSecret: tt.coerced,
				VerifiedAt:    testNow,
			}, events[0])
		})
	}
}

func TestUsecase_Verify_CoercedRoundTrip(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false, nil)

	gen, err := f.uc.Generate(context.Background(), GenerateInput{Secret: "my secret!"})
	require.NoError(t, err)
	assert.True(t, gen.Coerced)
	assert.Equal(t, "NV4SA43FMNZGK5BB", gen.NormalizedSecret)

	got, err := f.uc.Verify(context.Background(), VerifyInput{Secret: "my secret!", Code: gen.Code})
	require.NoError(t, err)
	assert.True(t, got.Valid)
	assert.Equal(t, "NV4SA43FMNZGK5BB", got.NormalizedSecret)
}

func TestUsecase_Verify_EventsDisabled(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false, nil)
	_, err := f.uc.Verify(context.Background(), VerifyInput{Secret: testSecret, Code: "324550"})
	require.NoError(t, err)

	require.NoError(t, f.gm.Wait())
	assert.Empty(t, f.repo.published())
}

func TestUsecase_Verify_PublishFailureIsHidden(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true, nil)
	f.repo.err = errors.New("broker down")

	got, err := f.uc.Verify(context.Background(), VerifyInput{Secret: testSecret, Code: "324550"})
	require.NoError(t, err)
	assert.True(t, got.Valid)

	assert.NoError(t, f.gm.Wait())
	assert.Len(t, f.repo.published(), 1)
}

func TestUsecase_Verify_ManagerClosed(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true, nil)
	require.NoError(t, f.gm.Wait())

	got, err := f.uc.Verify(context.Background(), VerifyInput{Secret: testSecret, Code: "324550"})
	require.NoError(t, err)
	assert.True(t, got.Valid)
	assert.Empty(t, f.repo.published())
}

func TestUsecase_Verify_CanceledRequestStillPublishes(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.uc.Verify(ctx, VerifyInput{Secret: testSecret, Code: "324550"})
	require.NoError(t, err)

	require.NoError(t, f.gm.Wait())
	assert.Len(t, f.repo.published(), 1)
}

func TestUsecase_Verify_ClockMovesWindow(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false, nil)
	f.clock.Advance(61 * time.Second)

	got, err := f.uc.Verify(context.Background(), VerifyInput{Secret: testSecret, Code: "324550"})
	require.NoError(t, err)
	assert.False(t, got.Valid)
	assert.Equal(t, "MISMATCH", got.Reason)
}

func TestUsecase_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true, nil)
	long := strings.Repeat("A", 1025)

	_, err := f.uc.Verify(context.Background(), VerifyInput{Secret: long, Code: "324550"})
	assertValidationKey(t, err, "secret")

	_, err = f.uc.Generate(context.Background(), GenerateInput{Secret: long})
	assertValidationKey(t, err, "secret")

	require.NoError(t, f.gm.Wait())
	assert.Empty(t, f.repo.published())
}

func TestUsecase_Verify_OversizedCodeIsMalformed(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false, nil)

	got, err := f.uc.Verify(context.Background(), VerifyInput{Secret: testSecret, Code: strings.Repeat("1", 65)})
	require.NoError(t, err)
	assert.False(t, got.Valid)
	assert.Equal(t, "MALFORMED_INPUT", got.Reason)
	assert.Equal(t, "Invalid 2FA code format", got.Message)
	assert.Empty(t, got.NormalizedSecret)
}

func assertValidationKey(t *testing.T, err error, key string) {
	t.Helper()

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, http.StatusUnprocessableEntity, gerr.StatusCode())

	var verr validator.V10ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Values(), key)
}

func TestUsecase_Generate(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false, nil)

	got, err := f.uc.Generate(context.Background(), GenerateInput{Secret: "jbswy3dpehpk3pxp"})
	require.NoError(t, err)
	assert.Equal(t, &GenerateOutput{Code: "324550", NormalizedSecret: testSecret, ExpiresIn: 10}, got)

	f.clock.Set(testNow.Add(500 * time.Millisecond))
	got, err = f.uc.Generate(context.Background(), GenerateInput{Secret: testSecret})
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.ExpiresIn)

	f.clock.Set(time.Unix(1700000010, 0))
	got, err = f.uc.Generate(context.Background(), GenerateInput{Secret: testSecret})
	require.NoError(t, err)
	assert.Equal(t, "367665", got.Code)
	assert.Equal(t, int64(30), got.ExpiresIn)
}

func TestUsecase_EngineError(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true, failingOTP{})

	_, err := f.uc.Verify(context.Background(), VerifyInput{Secret: testSecret, Code: "324550"})
	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, http.StatusInternalServerError, gerr.StatusCode())

	_, err = f.uc.Generate(context.Background(), GenerateInput{Secret: testSecret})
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, goerror.TypeServer, gerr.Type())

	require.NoError(t, f.gm.Wait())
	assert.Empty(t, f.repo.published())
}
