package util

import (
	"github.com/google/uuid"
)

// GenerateID returns a random unique identifier for stored records
func GenerateID() string {
	return uuid.NewString()
}
