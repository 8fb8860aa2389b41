package models

import (
	"strings"

	"github.com/google/uuid"
)

func NewID() string {
	return uuid.NewString()
}

// NormalizeName is the matching key for inventory names: trimmed, lower-cased,
// with inner whitespace runs collapsed to one space.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
