package models

// secretRedacted is shown instead of a secret's value when it is printed or serialized.
const secretRedacted = "[REDACTED]"

// Secret is a string that redacts itself in String, GoString and MarshalText so that
// credential material cannot leak through logs or JSON output. Use Value to read it.
type Secret string

func (s Secret) String() string { return secretRedacted }

func (s Secret) GoString() string { return secretRedacted }

// Value returns the underlying secret.
func (s Secret) Value() string { return string(s) }

// IsZero reports whether the secret is empty.
func (s Secret) IsZero() bool { return s == "" }

func (s Secret) MarshalText() ([]byte, error) { return []byte(secretRedacted), nil }
