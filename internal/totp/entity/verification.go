package entity

import "github.com/shandysiswandi/otpgate/internal/pkg/otp"

// Messages returned to callers for each verification reason.
const (
	MessageValid     = "2FA code validated successfully"
	MessageInvalid   = "Invalid 2FA code"
	MessageMalformed = "Invalid 2FA code format"
)

// VerificationMessage maps an engine reason to the user-facing message.
func VerificationMessage(r otp.Reason) string {
	switch r {
	case otp.ReasonMatch:
		return MessageValid
	case otp.ReasonMalformedInput:
		return MessageMalformed
	default:
		return MessageInvalid
	}
}
