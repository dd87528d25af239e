package utils

import "github.com/google/uuid"

// GetToken returns a random unique identifier.
func GetToken() string {
	return uuid.NewString()
}
