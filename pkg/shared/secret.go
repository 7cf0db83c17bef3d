package shared

import "strings"

const redacted = "[REDACTED]"

// Secret is a configuration value that must never be printed. fmt, JSON and
// text encoders all see a placeholder; Reveal returns the real value.
type Secret string

func (s Secret) Reveal() string {
	return string(s)
}

func (s Secret) IsEmpty() bool {
	return strings.TrimSpace(string(s)) == ""
}

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

func (s Secret) GoString() string {
	return s.String()
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Secret) UnmarshalText(text []byte) error {
	*s = Secret(strings.TrimSpace(string(text)))
	return nil
}
