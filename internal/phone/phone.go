// Package phone canonicalizes raw phone numbers into the identity strings
// used to deduplicate the global contact directory.
package phone

import "strings"

// DefaultCountryCode is prepended to numbers that carry no country code.
const DefaultCountryCode = "+880"

// minIdentityDigits is the minimum digit count for a usable identity.
const minIdentityDigits = 10

// Normalizer rewrites raw phone strings into canonical identities. The
// zero value uses DefaultCountryCode.
type Normalizer struct {
	countryCode string
}

// NewNormalizer returns a Normalizer with the given default country code.
// An empty or malformed code falls back to DefaultCountryCode.
func NewNormalizer(countryCode string) Normalizer {
	countryCode = strings.TrimSpace(countryCode)
	if countryCode == "" || !strings.HasPrefix(countryCode, "+") {
		countryCode = DefaultCountryCode
	}
	return Normalizer{countryCode: countryCode}
}

// Normalize rewrites raw into its canonical identity: every rune that is
// not a digit or a leading "+" is dropped; numbers without a country code
// lose their leading zeros and gain the default prefix. Numbers that
// already carry a "+" are preserved verbatim; no cross-country
// canonicalization is attempted.
func (n Normalizer) Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	hasPlus := strings.HasPrefix(trimmed, "+")

	var digits strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	if hasPlus {
		return "+" + digits.String()
	}

	code := n.countryCode
	if code == "" {
		code = DefaultCountryCode
	}
	return code + strings.TrimLeft(digits.String(), "0")
}

// IsValid reports whether raw normalizes to a usable identity: at least
// ten digits once the "+" is removed.
func (n Normalizer) IsValid(raw string) bool {
	normalized := n.Normalize(raw)
	digits := strings.ReplaceAll(normalized, "+", "")
	return len(digits) >= minIdentityDigits
}
