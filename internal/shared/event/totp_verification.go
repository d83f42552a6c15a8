package event

// TOTPVerificationDestination is the topic verification outcomes are published to.
const TOTPVerificationDestination string = "totp_verification"

// TOTPVerificationMessage is the audit record of one verification. It never
// carries the secret or the submitted code.
type TOTPVerificationMessage struct {
	EventID       int64  `json:"event_id"`
	Valid         bool   `json:"valid"`
	Reason        string `json:"reason"`
	Drift         int    `json:"drift"`
	CoercedSecret bool   `json:"coerced_secret"`
	VerifiedAt    int64  `json:"verified_at"`
	CorrelationID string `json:"correlation_id,omitempty"`
}
