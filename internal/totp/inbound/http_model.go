package inbound

type ValidateRequest struct {
	Secret string `json:"secret"`
	Code   string `json:"code"`
}

// ValidateResponse is written without the success envelope so existing
// clients reading "valid" at the top level keep working.
type ValidateResponse struct {
	Valid            bool   `json:"valid"`
	Message          string `json:"message"`
	Reason           string `json:"reason"`
	Drift            int    `json:"drift"`
	NormalizedSecret string `json:"normalized_secret,omitempty"`
}

func (ValidateResponse) Bare() bool { return true }

type GenerateResponse struct {
	Code             string `json:"code"`
	NormalizedSecret string `json:"normalized_secret"`
	Coerced          bool   `json:"coerced"`
	ExpiresIn        int64  `json:"expires_in"`
}

func (GenerateResponse) Bare() bool { return true }
