package otp

import (
	"encoding/base32"
	"strings"
	"unicode"
)

// Secret is a shared key in canonical Base32 form.
type Secret struct {
	// Canonical is uppercase Base32 text; it always decodes to the HMAC key.
	Canonical string
	// Coerced reports that the input was not Base32 and was re-encoded.
	Coerced bool
}

// Key returns the raw key bytes of the secret, or nil when Canonical is not
// valid Base32.
func (s Secret) Key() []byte {
	key, err := decodeBase32(s.Canonical)
	if err != nil {
		return nil
	}
	return key
}

// NormalizeSecret canonicalizes input into Base32 key material.
//
// Whitespace is removed and letters are uppercased. If the result decodes as
// Base32 (padding optional, but validated when present) it is returned as is.
// Otherwise the original input bytes, untouched, are Base32-encoded and the
// returned Secret is marked Coerced.
//
// An empty (or all-whitespace) input yields an empty canonical secret and an
// empty HMAC key. RFC 2104 allows that, but such a key has no strength.
//
// Uppercasing is Unicode-aware, so a few non-ASCII letters fold into the
// alphabet: "ſ" (U+017F) becomes "S" and "ı" (U+0131) becomes "I". Such input
// is accepted as Base32 and not coerced, so its key is not the raw bytes.
func NormalizeSecret(input string) Secret {
	cleaned := strings.ToUpper(stripSpace(input))
	if _, err := decodeBase32(cleaned); err == nil {
		return Secret{Canonical: cleaned}
	}

	return Secret{
		Canonical: base32.StdEncoding.EncodeToString([]byte(input)),
		Coerced:   true,
	}
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// decodeBase32 decodes s with the standard alphabet. Unpadded input is padded
// to a full quantum first; padded input must already be well formed.
func decodeBase32(s string) ([]byte, error) {
	if !strings.Contains(s, "=") {
		if n := len(s) % 8; n != 0 {
			s += strings.Repeat("=", 8-n)
		}
	}

	return base32.StdEncoding.DecodeString(s)
}
