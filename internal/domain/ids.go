package domain

import "github.com/google/uuid"

// IsValidID reports whether s is a canonical 36-character RFC 4122 UUID
// (versions 1 through 5), the identifier format of every stored entity.
func IsValidID(s string) bool {
	if len(s) != 36 {
		return false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	if v := id.Version(); v < 1 || v > 5 {
		return false
	}
	return id.Variant() == uuid.RFC4122
}
