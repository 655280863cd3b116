package domain

import (
	"bytes"
	"fmt"
)

// Flag a yes/no field exchanged as 0/1. Decoding also accepts true/false.
type Flag bool

// MarshalJSON writes 0 or 1
func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// UnmarshalJSON reads 0, 1, true, false or null (false)
func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "1", "true":
		*f = true
	case "0", "false", "null":
		*f = false
	default:
		return fmt.Errorf("flag must be 0 or 1, got %s", data)
	}
	return nil
}
